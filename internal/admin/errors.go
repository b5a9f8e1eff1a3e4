package admin

import (
	"errors"

	"github.com/wolfeidau/gestor/internal/auth"
)

// Error categories returned by Service. Transports map them to status codes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = auth.ErrUnauthorized
	ErrForbidden    = auth.ErrForbidden
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
)

// Steps of a multi step creation.
const (
	StepOrganization = "organization"
	StepIdentity     = "identity"
	StepProfile      = "profile"
	StepRole         = "role"
	StepHoursBalance = "hours_balance"
)

// StepError reports which step of a creation failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
