package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func jwkFor(kid string, pub *ecdsa.PublicKey) map[string]any {
	return map[string]any{
		"kty": "EC",
		"crv": "P-256",
		"kid": kid,
		"use": "sig",
		"x":   base64.RawURLEncoding.EncodeToString(pub.X.FillBytes(make([]byte, 32))),
		"y":   base64.RawURLEncoding.EncodeToString(pub.Y.FillBytes(make([]byte, 32))),
	}
}

func newJWKSServer(t *testing.T, keys ...map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=600")
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": keys})
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func signES256(t *testing.T, key *ecdsa.PrivateKey, kid string, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token.Header["kid"] = kid
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestJWKSKeySource(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	srv, hits := newJWKSServer(t, jwkFor("key-1", &key.PublicKey))
	v := NewJWTVerifier(NewJWKSKeySource(srv.URL, nil), VerifierConfig{})
	ctx := context.Background()
	userID := uuid.New()

	t.Run("verifies ES256 token", func(t *testing.T) {
		p, err := v.Verify(ctx, signES256(t, key, "key-1", userID.String()))
		require.NoError(t, err)
		require.Equal(t, userID, p.UserID)
	})

	t.Run("keys are cached", func(t *testing.T) {
		_, err := v.Verify(ctx, signES256(t, key, "key-1", userID.String()))
		require.NoError(t, err)
		require.Equal(t, int32(1), hits.Load())
	})

	t.Run("unknown kid", func(t *testing.T) {
		_, err := v.Verify(ctx, signES256(t, key, "key-2", userID.String()))
		require.ErrorIs(t, err, ErrUnauthorized)
		require.ErrorContains(t, err, "kid not found")
	})

	t.Run("HS256 rejected", func(t *testing.T) {
		token, err := IssueToken(testSecret, TokenRequest{Subject: userID.String(), TTL: time.Hour})
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestParseJWK(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		pub, err := parseJWK(jwkFor("k", &key.PublicKey))
		require.NoError(t, err)
		require.True(t, pub.Equal(&key.PublicKey))
	})

	t.Run("padded coordinates", func(t *testing.T) {
		jwk := jwkFor("k", &key.PublicKey)
		jwk["x"] = base64.URLEncoding.EncodeToString(key.X.FillBytes(make([]byte, 32)))
		_, err := parseJWK(jwk)
		require.NoError(t, err)
	})

	t.Run("rsa key", func(t *testing.T) {
		_, err := parseJWK(map[string]any{"kty": "RSA"})
		require.Error(t, err)
	})

	t.Run("point off curve", func(t *testing.T) {
		jwk := jwkFor("k", &key.PublicKey)
		jwk["y"] = base64.RawURLEncoding.EncodeToString(make([]byte, 32))
		_, err := parseJWK(jwk)
		require.Error(t, err)
	})
}
