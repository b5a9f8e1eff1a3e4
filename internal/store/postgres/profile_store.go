package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/store"
)

// ProfileStore implements store.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore creates a new PostgreSQL-backed profile store.
func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Create creates a profile.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == uuid.Nil {
		profile.ID = uuid.Must(uuid.NewV7())
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, user_id, full_name, email, organization_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, profile.ID, profile.UserID, profile.FullName, profile.Email, profile.OrganizationID,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", profile.UserID.String()).
		Msg("Created profile")

	return nil
}

// GetByUserID returns the profile of a user.
func (s *ProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, full_name, email, organization_id, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.FullName,
		&p.Email,
		&p.OrganizationID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", mapPostgresError(err))
	}

	return &p, nil
}

// SetOrganization changes the active organization of a user.
func (s *ProfileStore) SetOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE profiles SET
			organization_id = $2,
			updated_at = now()
		WHERE user_id = $1
	`, userID, orgID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.ErrProfileNotFound
	}

	log.Debug().
		Str("user_id", userID.String()).
		Str("org_id", orgID.String()).
		Msg("Switched organization")

	return nil
}

// RoleStore implements store.RoleStore using PostgreSQL.
type RoleStore struct {
	pool *pgxpool.Pool
}

// NewRoleStore creates a new PostgreSQL-backed role store.
func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

// HasRole reports whether the user holds role.
func (s *RoleStore) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2
		)
	`, userID, role).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", mapPostgresError(err))
	}
	return ok, nil
}

// Assign grants a role.
func (s *RoleStore) Assign(ctx context.Context, role *models.UserRole) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.Must(uuid.NewV7())
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_roles (id, user_id, role, organization_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, role.ID, role.UserID, role.Role, role.OrganizationID).Scan(&role.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", mapPostgresError(err))
	}

	return nil
}

// HoursBalanceStore implements store.HoursBalanceStore using PostgreSQL.
type HoursBalanceStore struct {
	pool *pgxpool.Pool
}

// NewHoursBalanceStore creates a new PostgreSQL-backed hours balance store.
func NewHoursBalanceStore(pool *pgxpool.Pool) *HoursBalanceStore {
	return &HoursBalanceStore{pool: pool}
}

// Create creates a balance row.
func (s *HoursBalanceStore) Create(ctx context.Context, balance *models.HoursBalance) error {
	if balance.ID == uuid.Nil {
		balance.ID = uuid.Must(uuid.NewV7())
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO hours_balance (id, organization_id, user_id, balance_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING updated_at
	`, balance.ID, balance.OrganizationID, balance.UserID, balance.BalanceMinutes).Scan(&balance.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create hours balance: %w", mapPostgresError(err))
	}

	return nil
}
