package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/client"
)

// JWKSKeySource verifies ES256 tokens with keys published at a JWKS URL.
// Responses go through an RFC 7234 cache, and parsed keys are kept for
// keyTTL. An unknown kid forces a refetch at most once per minRefresh.
type JWKSKeySource struct {
	url        string
	httpClient *http.Client
	keyTTL     time.Duration
	minRefresh time.Duration

	mu        sync.RWMutex
	keys      map[string]*ecdsa.PublicKey // kid -> public key
	fetchedAt time.Time
}

// NewJWKSKeySource creates a key source for jwksURL. A nil client uses an
// in-memory caching client.
func NewJWKSKeySource(jwksURL string, httpClient *http.Client) *JWKSKeySource {
	if httpClient == nil {
		httpClient = client.NewCachingHTTPClient("", 0)
	}

	return &JWKSKeySource{
		url:        jwksURL,
		httpClient: httpClient,
		keyTTL:     time.Hour,
		minRefresh: 30 * time.Second,
		keys:       make(map[string]*ecdsa.PublicKey),
	}
}

// Methods implements KeySource.
func (s *JWKSKeySource) Methods() []string {
	return []string{jwt.SigningMethodES256.Alg()}
}

// Key implements KeySource by looking up the token's kid.
func (s *JWKSKeySource) Key(ctx context.Context, token *jwt.Token) (any, error) {
	kid, ok := token.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("missing kid")
	}

	s.mu.RLock()
	key, found := s.keys[kid]
	fresh := time.Since(s.fetchedAt) < s.keyTTL
	recent := time.Since(s.fetchedAt) < s.minRefresh
	s.mu.RUnlock()

	if found && fresh {
		return key, nil
	}
	if !found && recent {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}

	if err := s.refresh(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	key, found = s.keys[kid]
	s.mu.RUnlock()

	if !found {
		return nil, fmt.Errorf("kid not found in JWKS: %s", kid)
	}

	return key, nil
}

func (s *JWKSKeySource) refresh(ctx context.Context) error {
	log.Debug().Str("jwks_url", s.url).Msg("Fetching JWKS")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS request failed: %s", resp.Status)
	}

	var jwks struct {
		Keys []map[string]any `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*ecdsa.PublicKey)
	for _, jwk := range jwks.Keys {
		kid, ok := jwk["kid"].(string)
		if !ok {
			log.Warn().Msg("JWK missing kid")
			continue
		}

		key, err := parseJWK(jwk)
		if err != nil {
			log.Warn().Err(err).Str("kid", kid).Msg("Failed to parse JWK")
			continue
		}

		keys[kid] = key
	}

	s.mu.Lock()
	s.keys = keys
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	log.Info().Int("total_keys", len(keys)).Bool("from_cache", client.FromCache(resp)).Msg("Loaded JWKS")
	return nil
}

// parseJWK parses a P-256 JSON Web Key into an ECDSA public key.
func parseJWK(jwk map[string]any) (*ecdsa.PublicKey, error) {
	kty, ok := jwk["kty"].(string)
	if !ok || kty != "EC" {
		return nil, fmt.Errorf("unsupported key type: %v", jwk["kty"])
	}

	crv, ok := jwk["crv"].(string)
	if !ok || crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve: %v", jwk["crv"])
	}

	xStr, ok := jwk["x"].(string)
	if !ok {
		return nil, fmt.Errorf("missing x coordinate")
	}

	yStr, ok := jwk["y"].(string)
	if !ok {
		return nil, fmt.Errorf("missing y coordinate")
	}

	xBytes, err := decodeBase64URL(xStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode x: %w", err)
	}

	yBytes, err := decodeBase64URL(yStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode y: %w", err)
	}

	key := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xBytes),
		Y:     new(big.Int).SetBytes(yBytes),
	}

	if _, err := key.ECDH(); err != nil {
		return nil, fmt.Errorf("invalid P-256 point: %w", err)
	}

	return key, nil
}

// decodeBase64URL decodes base64url with or without padding.
func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
