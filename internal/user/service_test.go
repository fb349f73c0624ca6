// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/auth"
	"github.com/elyterrax/marketplace-api/internal/core"
)

type stubRepo struct {
	users   map[string]*User
	updated int
}

func newStubRepo(users ...*User) *stubRepo {
	s := &stubRepo{users: map[string]*User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubRepo) get(id string) (*User, error) {
	u, ok := s.users[id]
	if !ok || u.IsDeleted() {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Create(_ context.Context, u *User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = time.Now()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*User, error) {
	return s.get(id)
}

func (s *stubRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return s.get(u.ID)
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (s *stubRepo) Update(_ context.Context, u *User) error {
	s.updated++
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubRepo) UpdateAccess(ctx context.Context, u *User) error {
	return s.Update(ctx, u)
}

func (s *stubRepo) UpdatePassword(_ context.Context, id, hash string) error {
	s.users[id].PasswordHash = hash
	return nil
}

func (s *stubRepo) IncrementTokenVersion(_ context.Context, id string) error {
	s.users[id].TokenVersion++
	return nil
}

func (s *stubRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.DeletedAt = &now
	return nil
}

func (s *stubRepo) List(_ context.Context, _ ListUsersParams) ([]User, int, error) {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func tier(s string) *string { return &s }

func TestCreateDefaultsAndLowercasesEmail(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	info, err := svc.Create(context.Background(), auth.NewUser{
		Email:              "Dev@Example.COM",
		PasswordHash:       "hash",
		Name:               "Dev",
		Role:               access.RoleDeveloper,
		Tier:               "growth",
		RegistrationIP:     "203.0.113.9",
		NonCircumventionAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "dev@example.com", info.Email)
	assert.Equal(t, "growth", info.Tier)
	assert.Equal(t, string(access.SubscriptionNone), info.SubscriptionStatus)

	stored := repo.users[info.ID]
	require.NotNil(t, stored.RegistrationIP)
	assert.Equal(t, "203.0.113.9", *stored.RegistrationIP)
	assert.NotNil(t, stored.NonCircumventionAt)
	assert.Nil(t, stored.CompanyName)
}

func TestResolveViewerReadsCurrentState(t *testing.T) {
	repo := newStubRepo(&User{
		ID:                 "u-1",
		Role:               access.RoleInvestor,
		Tier:               tier("insider"),
		SubscriptionStatus: access.SubscriptionActive,
		Verified:           true,
	})
	svc := NewService(repo)
	ctx := context.Background()

	v, err := svc.ResolveViewer(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, access.RoleInvestor, v.Role)
	assert.Equal(t, "insider", v.Tier)
	assert.True(t, v.Verified)

	_, err = svc.UpdateUserTier(ctx, "u-1", "Capital Partner")
	require.NoError(t, err)

	v, err = svc.ResolveViewer(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "capital_partner", v.Tier)

	_, err = svc.ResolveViewer(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateUserTierRejectsForeignTier(t *testing.T) {
	repo := newStubRepo(&User{ID: "d-1", Role: access.RoleDeveloper, Tier: tier("launch")})
	svc := NewService(repo)

	_, err := svc.UpdateUserTier(context.Background(), "d-1", "insider")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Equal(t, "launch", repo.users["d-1"].TierValue())
	assert.Zero(t, repo.updated)
}

func TestUpdateUserRoleClearsMismatchedTier(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		role     string
		wantTier string
	}{
		{"developer to investor", "elite", "investor", ""},
		{"developer to agency", "growth", "agency", ""},
		{"stays developer", "growth", "developer", "growth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubRepo(&User{ID: "u", Role: access.RoleDeveloper, Tier: tier(tt.start)})
			svc := NewService(repo)

			u, err := svc.UpdateUserRole(context.Background(), "u", tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, u.TierValue())
		})
	}

	svc := NewService(newStubRepo(&User{ID: "u", Role: access.RoleBuyer}))
	_, err := svc.UpdateUserRole(context.Background(), "u", "superuser")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateSubscription(t *testing.T) {
	repo := newStubRepo(&User{ID: "d", Role: access.RoleDeveloper})
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.UpdateSubscription(ctx, "d", "TRIAL")
	require.NoError(t, err)
	assert.True(t, u.SubscriptionStatus.IsActive())

	_, err = svc.UpdateSubscription(ctx, "d", "lifetime")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCanDeleteUser(t *testing.T) {
	repo := newStubRepo(
		&User{ID: "adm", Role: access.RoleAdmin},
		&User{ID: "adm2", Role: access.RoleAdmin},
		&User{ID: "inv", Role: access.RoleInvestor},
	)
	svc := NewService(repo)
	ctx := context.Background()

	assert.NoError(t, svc.CanDeleteUser(ctx, "inv", "inv"))
	assert.NoError(t, svc.CanDeleteUser(ctx, "adm", "inv"))
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "inv", "adm"), core.ErrForbidden)
	assert.ErrorIs(t, svc.CanDeleteUser(ctx, "adm", "adm2"), core.ErrForbidden)
}

func TestMeRequiresUser(t *testing.T) {
	svc := NewService(newStubRepo())
	ctx := context.Background()

	_, err := svc.GetMe(ctx, "")
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	assert.ErrorIs(t, svc.DeleteMe(ctx, ""), core.ErrUnauthorized)
}
