package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/orgcode"
)

// Defaults of the support organization.
const (
	DefaultSupportOrgName  = "Gestão do Sistema"
	DefaultSupportOrgCode  = "55555"
	DefaultSupportFullName = "Gestor do Sistema"
)

// SeedRequest describes the support account to create.
type SeedRequest struct {
	OrganizationName string `yaml:"organization_name"`
	OrgCode          string `yaml:"org_code"`
	FullName         string `yaml:"full_name"`
	Email            string `yaml:"email"`
	Password         string `yaml:"password"`
}

// ApplyDefaults fills the organization and profile names.
func (r *SeedRequest) ApplyDefaults() {
	if r.OrganizationName == "" {
		r.OrganizationName = DefaultSupportOrgName
	}
	if r.OrgCode == "" {
		r.OrgCode = DefaultSupportOrgCode
	}
	if r.FullName == "" {
		r.FullName = DefaultSupportFullName
	}
}

// Validate checks that the request can be seeded.
func (r *SeedRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if !orgcode.Valid(r.OrgCode) {
		return fmt.Errorf("%w: org_code must be %d digits", ErrInvalidInput, orgcode.CodeLength)
	}
	return nil
}

// SeedResult identifies what SeedSupportAccount created.
type SeedResult struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
}

// SeedSupportAccount bootstraps a support organization and its first user:
// the organization, the identity provider user, the profile, the support role
// and an empty hours balance, in that order. It is an operator action and does
// not check the caller. A failure is returned as a *StepError; earlier steps
// are not undone.
func (s *Service) SeedSupportAccount(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.identity == nil {
		return nil, &StepError{Step: StepIdentity, Err: errors.New("no identity provider configured")}
	}

	logger := zerolog.Ctx(ctx)

	org := &models.Organization{Name: req.OrganizationName, OrgCode: &req.OrgCode}
	if err := s.orgs.Create(ctx, org, nil, nil); err != nil {
		return nil, &StepError{Step: StepOrganization, Err: err}
	}
	logger.Info().Str("org_id", org.ID.String()).Msg("Seed: organization created")

	userID, err := s.identity.CreateUser(ctx, req.Email, req.Password)
	if err != nil {
		return nil, &StepError{Step: StepIdentity, Err: err}
	}
	logger.Info().Str("user_id", userID.String()).Msg("Seed: identity created")

	profile := &models.Profile{
		UserID:         userID,
		FullName:       req.FullName,
		Email:          req.Email,
		OrganizationID: &org.ID,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, &StepError{Step: StepProfile, Err: err}
	}

	role := &models.UserRole{
		UserID:         userID,
		Role:           models.RoleSupport,
		OrganizationID: &org.ID,
	}
	if err := s.roles.Assign(ctx, role); err != nil {
		return nil, &StepError{Step: StepRole, Err: err}
	}

	balance := &models.HoursBalance{
		UserID:         userID,
		OrganizationID: org.ID,
		BalanceMinutes: 0,
	}
	if err := s.balances.Create(ctx, balance); err != nil {
		return nil, &StepError{Step: StepHoursBalance, Err: err}
	}

	logger.Info().
		Str("org_id", org.ID.String()).
		Str("user_id", userID.String()).
		Msg("Seed: support account ready")

	return &SeedResult{OrganizationID: org.ID, UserID: userID}, nil
}
