// Package store defines the persistence interfaces of the admin service.
package store

import (
	"errors"
)

// Sentinel errors for common error conditions
var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrgCodeTaken         = errors.New("organization code already in use")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrRoleAlreadyAssigned  = errors.New("role already assigned")
)
