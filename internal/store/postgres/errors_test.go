package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gestor/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "org code unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintOrgCode},
			sentinel: store.ErrOrgCodeTaken,
		},
		{
			name:     "wrapped org code unique violation",
			err:      fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintOrgCode}),
			sentinel: store.ErrOrgCodeTaken,
		},
		{
			name:     "profile unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintProfileUser},
			sentinel: store.ErrProfileAlreadyExists,
		},
		{
			name:     "role unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintUserRole},
			sentinel: store.ErrRoleAlreadyAssigned,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: "Key (organization_id) is not present"},
			sentinel: store.ErrOrganizationNotFound,
		},
		{
			name:     "non postgres error passes through",
			err:      plain,
			sentinel: plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapPostgresError(tt.err), tt.sentinel)
		})
	}

	require.NoError(t, mapPostgresError(nil))
}

func TestMapPostgresError_otherUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "something_else"}

	err := mapPostgresError(pgErr)
	require.NotErrorIs(t, err, store.ErrOrgCodeTaken)
	require.ErrorContains(t, err, "unique constraint violation: something_else")
}

func TestPoolConfig(t *testing.T) {
	cfg := &PoolConfig{}
	require.Error(t, cfg.Validate())

	cfg.ConnString = "postgres://localhost/gestor"
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	require.Equal(t, int32(10), cfg.MaxConns)
	require.Equal(t, int32(2), cfg.MinConns)

	cfg = &PoolConfig{ConnString: "postgres://localhost/gestor", MaxConns: 1}
	cfg.ApplyDefaults()
	require.Equal(t, int32(1), cfg.MinConns)
}
