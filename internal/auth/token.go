package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenRequest describes a development token.
type TokenRequest struct {
	Subject  string
	Email    string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// IssueToken creates an HS256 token signed with secret.
func IssueToken(secret []byte, req TokenRequest) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			Issuer:    req.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(req.TTL)),
		},
		Email: req.Email,
	}
	if req.Audience != "" {
		claims.Audience = jwt.ClaimStrings{req.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
