package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gestor/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RoleChecker reports whether a user holds a role.
type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// Authorizer checks role grants for the principal in the context.
type Authorizer struct {
	roles RoleChecker
}

// NewAuthorizer creates an authorizer backed by roles.
func NewAuthorizer(roles RoleChecker) *Authorizer {
	return &Authorizer{roles: roles}
}

// Require returns the caller if it holds role. It returns ErrUnauthorized when
// ctx carries no principal and ErrForbidden when the role is missing.
func (a *Authorizer) Require(ctx context.Context, role string) (*Principal, error) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		a.denied(ctx, "unauthenticated")
		return nil, ErrUnauthorized
	}

	ok, err := a.roles.HasRole(ctx, p.UserID, role)
	if err != nil {
		return nil, fmt.Errorf("failed to check role: %w", err)
	}

	if !ok {
		a.denied(ctx, "missing_role")
		zerolog.Ctx(ctx).Warn().
			Str("user_id", p.UserID.String()).
			Str("role", role).
			Msg("Permission denied")
		return nil, fmt.Errorf("%w: requires role %s", ErrForbidden, role)
	}

	return p, nil
}

func (a *Authorizer) denied(ctx context.Context, reason string) {
	telemetry.GetMetrics().AuthzDeniedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}
