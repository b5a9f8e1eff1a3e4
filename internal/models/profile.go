package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleSupport is the role allowed to administer every organization.
const RoleSupport = "suporte"

// Profile is the application level record of an identity provider user.
type Profile struct {
	ID             uuid.UUID
	UserID         uuid.UUID // identity provider user id
	FullName       string
	Email          string
	OrganizationID *uuid.UUID // active organization
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserRole grants a role to a user.
type UserRole struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Role           string
	OrganizationID *uuid.UUID
	CreatedAt      time.Time
}

// HoursBalance tracks the accumulated overtime of a user in minutes.
type HoursBalance struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	BalanceMinutes int
	UpdatedAt      time.Time
}
