package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeRoles map[uuid.UUID][]string

func (f fakeRoles) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	for _, r := range f[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

type failingRoles struct{}

func (failingRoles) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestAuthorizer_Require(t *testing.T) {
	support := uuid.New()
	employee := uuid.New()

	a := NewAuthorizer(fakeRoles{
		support:  {"suporte"},
		employee: {"employee"},
	})

	tests := []struct {
		name      string
		ctx       context.Context
		expectErr error
	}{
		{
			name:      "no principal",
			ctx:       context.Background(),
			expectErr: ErrUnauthorized,
		},
		{
			name:      "missing role",
			ctx:       WithPrincipal(context.Background(), &Principal{UserID: employee}),
			expectErr: ErrForbidden,
		},
		{
			name: "support role",
			ctx:  WithPrincipal(context.Background(), &Principal{UserID: support}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Require(tt.ctx, "suporte")
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				require.Nil(t, p)
				return
			}
			require.NoError(t, err)
			require.Equal(t, support, p.UserID)
		})
	}

	t.Run("store error is neither unauthorized nor forbidden", func(t *testing.T) {
		a := NewAuthorizer(failingRoles{})
		_, err := a.Require(WithPrincipal(context.Background(), &Principal{UserID: support}), "suporte")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrUnauthorized)
		require.NotErrorIs(t, err, ErrForbidden)
	})
}
