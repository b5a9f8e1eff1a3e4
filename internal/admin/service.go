// Package admin implements the support operations over every organization.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gestor/internal/auth"
	"github.com/wolfeidau/gestor/internal/export"
	"github.com/wolfeidau/gestor/internal/identity"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/orgcode"
	"github.com/wolfeidau/gestor/internal/store"
	"github.com/wolfeidau/gestor/internal/telemetry"
)

// Authorizer checks that the caller holds a role.
type Authorizer interface {
	Require(ctx context.Context, role string) (*auth.Principal, error)
}

// Deps are the collaborators of Service.
type Deps struct {
	Organizations store.OrganizationStore
	Profiles      store.ProfileStore
	Roles         store.RoleStore
	HoursBalances store.HoursBalanceStore
	Identity      identity.Provider
	Exporter      *export.Exporter
	Authorizer    Authorizer
}

// Config holds service settings.
type Config struct {
	// MaxCreateAttempts bounds the attempts to insert an organization whose
	// allocated code was claimed concurrently.
	// Default: 5
	MaxCreateAttempts uint

	// RetryInitialInterval is the first wait between attempts.
	// Default: 25ms
	RetryInitialInterval time.Duration
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.MaxCreateAttempts == 0 {
		c.MaxCreateAttempts = 5
	}
	if c.RetryInitialInterval == 0 {
		c.RetryInitialInterval = 25 * time.Millisecond
	}
}

// Service implements the support operations. Every method except
// SeedSupportAccount requires the caller to hold models.RoleSupport.
type Service struct {
	orgs     store.OrganizationStore
	profiles store.ProfileStore
	roles    store.RoleStore
	balances store.HoursBalanceStore
	identity identity.Provider
	exporter *export.Exporter
	authz    Authorizer
	cfg      Config
}

// NewService creates a Service.
func NewService(deps Deps, cfg Config) (*Service, error) {
	switch {
	case deps.Organizations == nil:
		return nil, errors.New("organization store is required")
	case deps.Profiles == nil:
		return nil, errors.New("profile store is required")
	case deps.Roles == nil:
		return nil, errors.New("role store is required")
	case deps.HoursBalances == nil:
		return nil, errors.New("hours balance store is required")
	case deps.Exporter == nil:
		return nil, errors.New("exporter is required")
	case deps.Authorizer == nil:
		return nil, errors.New("authorizer is required")
	}

	cfg.ApplyDefaults()

	return &Service{
		orgs:     deps.Organizations,
		profiles: deps.Profiles,
		roles:    deps.Roles,
		balances: deps.HoursBalances,
		identity: deps.Identity,
		exporter: deps.Exporter,
		authz:    deps.Authorizer,
		cfg:      cfg,
	}, nil
}

// ListOrganizations returns every organization, newest first. A non-empty
// query keeps organizations whose name, code, CNPJ or trade name contains it,
// ignoring case.
func (s *Service) ListOrganizations(ctx context.Context, query string) ([]*models.Organization, error) {
	if _, err := s.authz.Require(ctx, models.RoleSupport); err != nil {
		return nil, err
	}

	orgs, err := s.orgs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return orgs, nil
	}

	filtered := make([]*models.Organization, 0, len(orgs))
	for _, org := range orgs {
		if matches(org, query) {
			filtered = append(filtered, org)
		}
	}

	return filtered, nil
}

func matches(org *models.Organization, query string) bool {
	fields := []string{org.Name, org.Code()}
	if org.Company != nil {
		fields = append(fields, org.Company.TaxID, org.Company.TradeName)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}

	// formatted CNPJ search, e.g. "12.345.678"
	if org.Company != nil {
		if digits := orgcode.Digits(query); digits != "" && digits != query {
			return strings.Contains(org.Company.TaxID, digits)
		}
	}

	return false
}

// NewOrganization is the input of CreateOrganization.
type NewOrganization struct {
	Name      string
	TaxID     string // CNPJ, punctuation allowed
	TradeName string
	OrgCode   string // explicit code, used only without TaxID
}

// CreateOrganization creates an organization. With a CNPJ the code is
// allocated from it; without one an explicit five digit code is required.
func (s *Service) CreateOrganization(ctx context.Context, in NewOrganization) (*models.Organization, error) {
	if _, err := s.authz.Require(ctx, models.RoleSupport); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var (
		org *models.Organization
		err error
	)

	switch {
	case strings.TrimSpace(in.TaxID) != "":
		org, err = s.createWithAllocatedCode(ctx, name, in.TaxID, strings.TrimSpace(in.TradeName))
	case strings.TrimSpace(in.OrgCode) != "":
		org, err = s.createWithCode(ctx, name, strings.TrimSpace(in.OrgCode))
	default:
		err = fmt.Errorf("%w: cnpj or org_code is required", ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}

	telemetry.GetMetrics().OrganizationsCreatedTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Str("org_id", org.ID.String()).
		Str("org_code", org.Code()).
		Str("name", org.Name).
		Msg("Organization created")

	return org, nil
}

func (s *Service) createWithAllocatedCode(ctx context.Context, name, rawTaxID, tradeName string) (*models.Organization, error) {
	taxID := orgcode.Digits(rawTaxID)
	if len(taxID) != orgcode.TaxIDLength {
		return nil, fmt.Errorf("%w: cnpj must have %d digits", ErrInvalidInput, orgcode.TaxIDLength)
	}

	metrics := telemetry.GetMetrics()

	allocate := func(taken map[string]struct{}) (string, error) {
		return orgcode.Allocate(taxID, taken)
	}

	operation := func() (*models.Organization, error) {
		org := &models.Organization{Name: name}
		company := &models.CompanyInfo{TaxID: taxID, TradeName: tradeName}

		err := s.orgs.Create(ctx, org, company, allocate)
		switch {
		case err == nil:
			return org, nil
		case errors.Is(err, store.ErrOrgCodeTaken):
			metrics.OrgCodeConflictsTotal.Add(ctx, 1)
			return nil, err
		default:
			return nil, backoff.Permanent(err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryInitialInterval

	org, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.cfg.MaxCreateAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			zerolog.Ctx(ctx).Warn().Err(err).Dur("next_retry", next).Msg("Organization code conflict, retrying")
		}),
	)
	if err != nil {
		switch {
		case errors.Is(err, orgcode.ErrInvalidInput):
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		case errors.Is(err, orgcode.ErrCodeSpaceExhausted):
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		case errors.Is(err, store.ErrOrgCodeTaken):
			return nil, fmt.Errorf("%w: could not allocate an organization code after %d attempts", ErrConflict, s.cfg.MaxCreateAttempts)
		}
		return nil, &StepError{Step: StepOrganization, Err: err}
	}

	metrics.OrgCodeAllocationsTotal.Add(ctx, 1)

	return org, nil
}

func (s *Service) createWithCode(ctx context.Context, name, code string) (*models.Organization, error) {
	if !orgcode.Valid(code) {
		return nil, fmt.Errorf("%w: org_code must be %d digits", ErrInvalidInput, orgcode.CodeLength)
	}

	org := &models.Organization{Name: name, OrgCode: &code}
	if err := s.orgs.Create(ctx, org, nil, nil); err != nil {
		if errors.Is(err, store.ErrOrgCodeTaken) {
			return nil, fmt.Errorf("%w: organization code already in use", ErrInvalidInput)
		}
		return nil, &StepError{Step: StepOrganization, Err: err}
	}

	return org, nil
}

// SwitchOrganization makes orgID the caller's active organization.
func (s *Service) SwitchOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	caller, err := s.authz.Require(ctx, models.RoleSupport)
	if err != nil {
		return nil, err
	}

	org, err := s.getOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.SetOrganization(ctx, caller.UserID, org.ID); err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: caller has no profile", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	telemetry.GetMetrics().OrganizationSwitchesTotal.Add(ctx, 1)

	zerolog.Ctx(ctx).Info().
		Str("org_id", org.ID.String()).
		Msg("Switched active organization")

	return org, nil
}

// ExportOrganization renders every row of an organization in format.
func (s *Service) ExportOrganization(ctx context.Context, orgID, format string) (*export.Result, error) {
	if _, err := s.authz.Require(ctx, models.RoleSupport); err != nil {
		return nil, err
	}

	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, fmt.Errorf("%w: organization_id required", ErrInvalidInput)
	}

	id, err := uuid.Parse(orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: organization_id must be a UUID", ErrInvalidInput)
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if _, err := s.getOrganization(ctx, id); err != nil {
		return nil, err
	}

	res, err := s.exporter.Export(ctx, id.String(), f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return res, nil
}

func (s *Service) getOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			return nil, fmt.Errorf("%w: organization %s", ErrNotFound, orgID)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return org, nil
}
