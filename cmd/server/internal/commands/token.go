package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/auth"
)

// TokenCmd prints an HS256 bearer token for development and support scripts.
type TokenCmd struct {
	Subject  string        `help:"user id the token is issued for" required:""`
	Email    string        `help:"email claim" default:""`
	TTL      time.Duration `help:"Token lifetime" default:"1h"`
	Secret   string        `help:"HS256 signing secret" required:"" env:"GESTOR_AUTH_SECRET"`
	Issuer   string        `help:"issuer claim" default:"" env:"GESTOR_AUTH_ISSUER"`
	Audience string        `help:"audience claim" default:"authenticated" env:"GESTOR_AUTH_AUDIENCE"`
}

func (t *TokenCmd) Validate() error {
	if _, err := uuid.Parse(t.Subject); err != nil {
		return fmt.Errorf("--subject must be a UUID: %w", err)
	}
	if len(t.Secret) < 32 {
		return errors.New("secret must be at least 32 bytes (256 bits) for HMAC-SHA256")
	}
	return nil
}

func (t *TokenCmd) Run(ctx context.Context) error {
	return t.write(os.Stdout)
}

func (t *TokenCmd) write(w io.Writer) error {
	token, err := auth.IssueToken([]byte(t.Secret), auth.TokenRequest{
		Subject:  t.Subject,
		Email:    t.Email,
		Issuer:   t.Issuer,
		Audience: t.Audience,
		TTL:      t.TTL,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, token)
	return err
}
