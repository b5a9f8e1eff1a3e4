package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/models"
)

// ProfileStore manages user profiles.
type ProfileStore interface {
	// Create creates a profile.
	// Returns ErrProfileAlreadyExists if the user already has one.
	Create(ctx context.Context, profile *models.Profile) error

	// GetByUserID returns the profile of an identity provider user.
	// Returns ErrProfileNotFound if there is none.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)

	// SetOrganization changes the active organization of a user.
	// Returns ErrProfileNotFound if the user has no profile.
	SetOrganization(ctx context.Context, userID, orgID uuid.UUID) error
}

// RoleStore manages role grants.
type RoleStore interface {
	// HasRole reports whether the user holds role in any organization.
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)

	// Assign grants a role.
	// Returns ErrRoleAlreadyAssigned for a duplicate grant.
	Assign(ctx context.Context, role *models.UserRole) error
}

// HoursBalanceStore manages hours balances.
type HoursBalanceStore interface {
	// Create creates the balance row of a user.
	Create(ctx context.Context, balance *models.HoursBalance) error
}
