package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/store"
)

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

const selectOrganizations = `
	SELECT o.id, o.name, o.org_code, o.created_at,
	       ci.id, ci.cnpj, ci.nome_fantasia, ci.created_at
	FROM organizations o
	LEFT JOIN company_info ci ON ci.organization_id = o.id
`

// List returns every organization, newest first.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := s.pool.Query(ctx, selectOrganizations+` ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	org, err := scanOrganization(s.pool.QueryRow(ctx, selectOrganizations+` WHERE o.id = $1`, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}

	return org, nil
}

// ListCodes returns every organization code in use.
func (s *OrganizationStore) ListCodes(ctx context.Context) ([]string, error) {
	return listCodes(ctx, s.pool)
}

// Create inserts the organization and its company info in one transaction.
// The allocator sees the codes committed before the transaction started; a
// concurrent insert of the same code fails on organizations_org_code_key and
// is reported as store.ErrOrgCodeTaken.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization, company *models.CompanyInfo, allocate store.CodeAllocator) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if allocate != nil {
		codes, err := listCodes(ctx, tx)
		if err != nil {
			return err
		}

		taken := make(map[string]struct{}, len(codes))
		for _, c := range codes {
			taken[c] = struct{}{}
		}

		code, err := allocate(taken)
		if err != nil {
			return err
		}
		org.OrgCode = &code
	}

	if org.ID == uuid.Nil {
		org.ID = uuid.Must(uuid.NewV7())
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO organizations (id, name, org_code)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, org.ID, org.Name, org.OrgCode).Scan(&org.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", mapPostgresError(err))
	}

	if company != nil {
		if company.ID == uuid.Nil {
			company.ID = uuid.Must(uuid.NewV7())
		}
		company.OrganizationID = org.ID

		err = tx.QueryRow(ctx, `
			INSERT INTO company_info (id, organization_id, cnpj, nome_fantasia)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, company.ID, company.OrganizationID, company.TaxID, company.TradeName).Scan(&company.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create company info: %w", mapPostgresError(err))
		}
		org.Company = company
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.ID.String()).
		Str("org_code", org.Code()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func listCodes(ctx context.Context, q queryer) ([]string, error) {
	rows, err := q.Query(ctx, `SELECT org_code FROM organizations WHERE org_code IS NOT NULL ORDER BY org_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization codes: %w", mapPostgresError(err))
	}

	codes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan organization codes: %w", err)
	}

	return codes, nil
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var (
		org              models.Organization
		companyID        *uuid.UUID
		taxID, tradeName *string
		companyCreatedAt *time.Time
	)

	err := row.Scan(
		&org.ID,
		&org.Name,
		&org.OrgCode,
		&org.CreatedAt,
		&companyID,
		&taxID,
		&tradeName,
		&companyCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if companyID != nil {
		org.Company = &models.CompanyInfo{
			ID:             *companyID,
			OrganizationID: org.ID,
			TaxID:          deref(taxID),
			TradeName:      deref(tradeName),
		}
		if companyCreatedAt != nil {
			org.Company.CreatedAt = *companyCreatedAt
		}
	}

	return &org, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
