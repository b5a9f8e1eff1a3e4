package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/gestor/internal/models"
	"github.com/wolfeidau/gestor/internal/orgcode"
	"github.com/wolfeidau/gestor/internal/store"
)

func strPtr(s string) *string { return &s }

func TestOrganizationStore_Create(t *testing.T) {
	t.Run("allocates code from taken set", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, &models.Organization{Name: "First", OrgCode: strPtr("12345")}, nil, nil))

		org := &models.Organization{Name: "Second"}
		company := &models.CompanyInfo{TaxID: "12345678000190", TradeName: "Second Ltda"}
		err := st.Create(ctx, org, company, func(taken map[string]struct{}) (string, error) {
			return orgcode.Allocate(company.TaxID, taken)
		})
		require.NoError(t, err)
		require.Equal(t, "12346", org.Code())
		require.NotEqual(t, uuid.Nil, org.ID)
		require.Equal(t, org.ID, company.OrganizationID)

		got, err := st.Get(ctx, org.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Company)
		require.Equal(t, "12345678000190", got.Company.TaxID)
	})

	t.Run("duplicate explicit code returns ErrOrgCodeTaken", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, &models.Organization{Name: "A", OrgCode: strPtr("55555")}, nil, nil))

		err := st.Create(ctx, &models.Organization{Name: "B", OrgCode: strPtr("55555")}, nil, nil)
		require.ErrorIs(t, err, store.ErrOrgCodeTaken)

		orgs, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, orgs, 1)
	})

	t.Run("allocator error aborts create", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		err := st.Create(ctx, &models.Organization{Name: "Bad"}, nil, func(taken map[string]struct{}) (string, error) {
			return orgcode.Allocate("123", taken)
		})
		require.ErrorIs(t, err, orgcode.ErrInvalidInput)

		orgs, err := st.List(ctx)
		require.NoError(t, err)
		require.Empty(t, orgs)
	})
}

func TestOrganizationStore_ListNewestFirst(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "middle", "new"} {
		require.NoError(t, st.Create(ctx, &models.Organization{
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}, nil, nil))
	}

	orgs, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 3)
	require.Equal(t, "new", orgs[0].Name)
	require.Equal(t, "middle", orgs[1].Name)
	require.Equal(t, "old", orgs[2].Name)
}

func TestOrganizationStore_Get(t *testing.T) {
	st := NewOrganizationStore()

	_, err := st.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)
}

func TestOrganizationStore_ListCodes(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, &models.Organization{Name: "A", OrgCode: strPtr("00002")}, nil, nil))
	require.NoError(t, st.Create(ctx, &models.Organization{Name: "B", OrgCode: strPtr("00001")}, nil, nil))
	require.NoError(t, st.Create(ctx, &models.Organization{Name: "Legacy"}, nil, nil))

	codes, err := st.ListCodes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"00001", "00002"}, codes)
}
