package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type OrganizationStore struct {
	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // id -> Organization
	companies     map[uuid.UUID]*models.CompanyInfo  // organization_id -> CompanyInfo
	codes         map[string]uuid.UUID               // org_code -> id
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		organizations: make(map[uuid.UUID]*models.Organization),
		companies:     make(map[uuid.UUID]*models.CompanyInfo),
		codes:         make(map[string]uuid.UUID),
	}
}

// List returns all organizations, newest first.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Organization, 0, len(s.organizations))
	for _, org := range s.organizations {
		result = append(result, s.cloneWithCompany(org))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return s.cloneWithCompany(org), nil
}

// ListCodes returns every organization code in use.
func (s *OrganizationStore) ListCodes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make([]string, 0, len(s.codes))
	for code := range s.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	return codes, nil
}

// Create inserts an organization and its company info under a single lock.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization, company *models.CompanyInfo, allocate store.CodeAllocator) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if allocate != nil {
		taken := make(map[string]struct{}, len(s.codes))
		for code := range s.codes {
			taken[code] = struct{}{}
		}

		code, err := allocate(taken)
		if err != nil {
			return err
		}
		org.OrgCode = &code
	}

	if org.OrgCode != nil {
		if _, exists := s.codes[*org.OrgCode]; exists {
			return store.ErrOrgCodeTaken
		}
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.Must(uuid.NewV7())
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	clone := *org
	clone.Company = nil
	s.organizations[org.ID] = &clone
	if org.OrgCode != nil {
		s.codes[*org.OrgCode] = org.ID
	}

	if company != nil {
		if company.ID == uuid.Nil {
			company.ID = uuid.Must(uuid.NewV7())
		}
		company.OrganizationID = org.ID
		if company.CreatedAt.IsZero() {
			company.CreatedAt = org.CreatedAt
		}
		c := *company
		s.companies[org.ID] = &c
		org.Company = company
	}

	return nil
}

func (s *OrganizationStore) cloneWithCompany(org *models.Organization) *models.Organization {
	clone := *org
	if c, ok := s.companies[org.ID]; ok {
		cc := *c
		clone.Company = &cc
	}
	return &clone
}

func (s *OrganizationStore) snapshot() ([]models.Organization, []models.CompanyInfo) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]models.Organization, 0, len(s.organizations))
	for _, o := range s.organizations {
		orgs = append(orgs, *o)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].CreatedAt.Before(orgs[j].CreatedAt) })

	companies := make([]models.CompanyInfo, 0, len(s.companies))
	for _, c := range s.companies {
		companies = append(companies, *c)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].CreatedAt.Before(companies[j].CreatedAt) })

	return orgs, companies
}
