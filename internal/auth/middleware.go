package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
)

// TokenVerifier turns a bearer token into a principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ErrorWriter writes err to the client.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware returns an HTTP middleware that verifies the bearer token and
// adds the principal to the request context. Failures are passed to onError
// wrapping ErrUnauthorized.
func Middleware(verifier TokenVerifier, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString := extractBearerToken(r)
			if tokenString == "" {
				zerolog.Ctx(ctx).Warn().Msg("Missing Authorization header")
				onError(w, r, ErrUnauthorized)
				return
			}

			principal, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to verify JWT")
				onError(w, r, ErrUnauthorized)
				return
			}

			logger := zerolog.Ctx(ctx).With().Str("user_id", principal.UserID.String()).Logger()
			ctx = logger.WithContext(WithPrincipal(ctx, principal))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
