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

// ProfileStore implements store.ProfileStore using in-memory storage.
type ProfileStore struct {
	mu sync.RWMutex

	profiles map[uuid.UUID]*models.Profile // user_id -> Profile
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[uuid.UUID]*models.Profile),
	}
}

// Create creates a profile.
func (s *ProfileStore) Create(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.profiles[profile.UserID]; exists {
		return store.ErrProfileAlreadyExists
	}

	if profile.ID == uuid.Nil {
		profile.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	clone := *profile
	s.profiles[profile.UserID] = &clone

	return nil
}

// GetByUserID returns the profile of a user.
func (s *ProfileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.profiles[userID]
	if !exists {
		return nil, store.ErrProfileNotFound
	}

	clone := *p
	return &clone, nil
}

// SetOrganization changes the active organization of a user.
func (s *ProfileStore) SetOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.profiles[userID]
	if !exists {
		return store.ErrProfileNotFound
	}

	p.OrganizationID = &orgID
	p.UpdatedAt = time.Now().UTC()

	return nil
}

func (s *ProfileStore) snapshot() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// RoleStore implements store.RoleStore using in-memory storage.
type RoleStore struct {
	mu sync.RWMutex

	roles []*models.UserRole
}

// NewRoleStore creates a new in-memory role store.
func NewRoleStore() *RoleStore {
	return &RoleStore{}
}

// HasRole reports whether the user holds role.
func (s *RoleStore) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.roles {
		if r.UserID == userID && r.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// Assign grants a role.
func (s *RoleStore) Assign(ctx context.Context, role *models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if r.UserID == role.UserID && r.Role == role.Role {
			return store.ErrRoleAlreadyAssigned
		}
	}

	if role.ID == uuid.Nil {
		role.ID = uuid.Must(uuid.NewV7())
	}
	if role.CreatedAt.IsZero() {
		role.CreatedAt = time.Now().UTC()
	}

	clone := *role
	s.roles = append(s.roles, &clone)

	return nil
}

func (s *RoleStore) snapshot() []models.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UserRole, len(s.roles))
	for i, r := range s.roles {
		out[i] = *r
	}
	return out
}

// HoursBalanceStore implements store.HoursBalanceStore using in-memory storage.
type HoursBalanceStore struct {
	mu sync.RWMutex

	balances []*models.HoursBalance
}

// NewHoursBalanceStore creates a new in-memory hours balance store.
func NewHoursBalanceStore() *HoursBalanceStore {
	return &HoursBalanceStore{}
}

// Create creates a balance row.
func (s *HoursBalanceStore) Create(ctx context.Context, balance *models.HoursBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if balance.ID == uuid.Nil {
		balance.ID = uuid.Must(uuid.NewV7())
	}
	if balance.UpdatedAt.IsZero() {
		balance.UpdatedAt = time.Now().UTC()
	}

	clone := *balance
	s.balances = append(s.balances, &clone)

	return nil
}

func (s *HoursBalanceStore) snapshot() []models.HoursBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.HoursBalance, len(s.balances))
	for i, b := range s.balances {
		out[i] = *b
	}
	return out
}
