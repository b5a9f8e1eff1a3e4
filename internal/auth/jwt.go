package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the token claims read by the verifier. Hosted auth providers put
// the user id in the subject and add the email as a private claim.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// KeySource resolves the verification key of a parsed, not yet verified token.
type KeySource interface {
	Key(ctx context.Context, token *jwt.Token) (any, error)
	Methods() []string
}

// SecretKeySource verifies HS256 tokens signed with a shared secret.
type SecretKeySource struct {
	secret []byte
}

// NewSecretKeySource returns a key source for a shared HMAC secret.
func NewSecretKeySource(secret []byte) (*SecretKeySource, error) {
	if len(secret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 bytes")
	}
	return &SecretKeySource{secret: secret}, nil
}

// Key implements KeySource.
func (s *SecretKeySource) Key(ctx context.Context, token *jwt.Token) (any, error) {
	return s.secret, nil
}

// Methods implements KeySource.
func (s *SecretKeySource) Methods() []string {
	return []string{jwt.SigningMethodHS256.Alg()}
}

// VerifierConfig configures token verification.
type VerifierConfig struct {
	// Issuer, when set, must match the iss claim.
	Issuer string

	// Audience, when set, must be present in the aud claim.
	Audience string
}

// JWTVerifier verifies bearer tokens and maps them to principals.
type JWTVerifier struct {
	keys KeySource
	cfg  VerifierConfig
}

// NewJWTVerifier creates a new JWT verifier.
func NewJWTVerifier(keys KeySource, cfg VerifierConfig) *JWTVerifier {
	return &JWTVerifier{
		keys: keys,
		cfg:  cfg,
	}
}

// Verify checks the signature and registered claims of tokenString and
// returns the principal it names.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.keys.Methods()),
		jwt.WithExpirationRequired(),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return v.keys.Key(ctx, t)
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject: %w", ErrUnauthorized, err)
	}

	return &Principal{
		UserID: userID,
		Email:  claims.Email,
	}, nil
}

// extractBearerToken extracts the JWT from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
