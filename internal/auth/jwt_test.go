package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newSecretVerifier(t *testing.T, cfg VerifierConfig) *JWTVerifier {
	t.Helper()
	keys, err := NewSecretKeySource(testSecret)
	require.NoError(t, err)
	return NewJWTVerifier(keys, cfg)
}

func TestNewSecretKeySource(t *testing.T) {
	_, err := NewSecretKeySource([]byte("short"))
	require.Error(t, err)
}

func TestJWTVerifier_Verify(t *testing.T) {
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		v := newSecretVerifier(t, VerifierConfig{Issuer: "gestor", Audience: "authenticated"})

		token, err := IssueToken(testSecret, TokenRequest{
			Subject:  userID.String(),
			Email:    "suporte@example.com",
			Issuer:   "gestor",
			Audience: "authenticated",
			TTL:      time.Hour,
		})
		require.NoError(t, err)

		p, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, userID, p.UserID)
		require.Equal(t, "suporte@example.com", p.Email)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name: "expired",
			token: func(t *testing.T) string {
				tok, err := IssueToken(testSecret, TokenRequest{Subject: userID.String(), TTL: -time.Minute})
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := IssueToken([]byte("ffffffffffffffffffffffffffffffff"), TokenRequest{Subject: userID.String(), TTL: time.Hour})
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "subject is not a uuid",
			token: func(t *testing.T) string {
				tok, err := IssueToken(testSecret, TokenRequest{Subject: "service_role", TTL: time.Hour})
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
					RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
				}).SignedString(testSecret)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name: "unexpected signing method",
			token: func(t *testing.T) string {
				key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
				require.NoError(t, err)
				tok, err := jwt.NewWithClaims(jwt.SigningMethodES256, &Claims{
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   userID.String(),
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
					},
				}).SignedString(key)
				require.NoError(t, err)
				return tok
			},
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not.a.jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newSecretVerifier(t, VerifierConfig{})
			_, err := v.Verify(context.Background(), tt.token(t))
			require.ErrorIs(t, err, ErrUnauthorized)
		})
	}

	t.Run("issuer mismatch", func(t *testing.T) {
		v := newSecretVerifier(t, VerifierConfig{Issuer: "gestor"})
		token, err := IssueToken(testSecret, TokenRequest{Subject: userID.String(), Issuer: "someone-else", TTL: time.Hour})
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("audience mismatch", func(t *testing.T) {
		v := newSecretVerifier(t, VerifierConfig{Audience: "authenticated"})
		token, err := IssueToken(testSecret, TokenRequest{Subject: userID.String(), Audience: "anon", TTL: time.Hour})
		require.NoError(t, err)

		_, err = v.Verify(context.Background(), token)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}
