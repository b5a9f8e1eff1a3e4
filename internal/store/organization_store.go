package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/gestor/internal/models"
)

// CodeAllocator picks an organization code given the set of codes already in use.
type CodeAllocator func(taken map[string]struct{}) (string, error)

// OrganizationStore defines the interface for organization storage operations.
type OrganizationStore interface {
	// List returns every organization, newest first, with company info attached
	// where present.
	List(ctx context.Context) ([]*models.Organization, error)

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// ListCodes returns every organization code in use.
	ListCodes(ctx context.Context) ([]string, error)

	// Create inserts org, and company when not nil, atomically. When allocate is
	// not nil it is called with the codes in use inside the same transaction and
	// its result becomes org.OrgCode. Returns ErrOrgCodeTaken when the code was
	// claimed concurrently.
	Create(ctx context.Context, org *models.Organization, company *models.CompanyInfo, allocate CodeAllocator) error
}
