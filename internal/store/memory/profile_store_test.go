package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/store"
)

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orgID := uuid.New()

	t.Run("set organization", func(t *testing.T) {
		st := NewProfileStore()
		require.NoError(t, st.Create(ctx, &models.Profile{UserID: userID, FullName: "Ana"}))

		require.NoError(t, st.SetOrganization(ctx, userID, orgID))

		p, err := st.GetByUserID(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, p.OrganizationID)
		require.Equal(t, orgID, *p.OrganizationID)
	})

	t.Run("duplicate profile", func(t *testing.T) {
		st := NewProfileStore()
		require.NoError(t, st.Create(ctx, &models.Profile{UserID: userID}))
		require.ErrorIs(t, st.Create(ctx, &models.Profile{UserID: userID}), store.ErrProfileAlreadyExists)
	})

	t.Run("missing profile", func(t *testing.T) {
		st := NewProfileStore()
		require.ErrorIs(t, st.SetOrganization(ctx, userID, orgID), store.ErrProfileNotFound)

		_, err := st.GetByUserID(ctx, userID)
		require.ErrorIs(t, err, store.ErrProfileNotFound)
	})
}

func TestRoleStore(t *testing.T) {
	ctx := context.Background()
	st := NewRoleStore()
	userID := uuid.New()

	ok, err := st.HasRole(ctx, userID, models.RoleSupport)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, st.Assign(ctx, &models.UserRole{UserID: userID, Role: models.RoleSupport}))

	ok, err = st.HasRole(ctx, userID, models.RoleSupport)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = st.HasRole(ctx, userID, "admin")
	require.NoError(t, err)
	require.False(t, ok)

	err = st.Assign(ctx, &models.UserRole{UserID: userID, Role: models.RoleSupport})
	require.ErrorIs(t, err, store.ErrRoleAlreadyAssigned)
}
