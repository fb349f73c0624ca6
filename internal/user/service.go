// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/auth"
	"github.com/elyterrax/marketplace-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	return userInfo(s.repo.GetByID(ctx, id))
}

// GetByEmail matches case-insensitively; emails are stored lowercased.
func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	return userInfo(s.repo.GetByEmail(ctx, strings.ToLower(email)))
}

func userInfo(u *User, err error) (*auth.UserInfo, error) {
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	acceptedAt := nu.NonCircumventionAt

	user := &User{
		ID:                 uuid.New().String(),
		Email:              strings.ToLower(nu.Email),
		PasswordHash:       nu.PasswordHash,
		Name:               nu.Name,
		Role:               nu.Role,
		Tier:               strPtr(nu.Tier),
		SubscriptionStatus: nu.SubscriptionStatus,
		CompanyName:        strPtr(nu.CompanyName),
		Country:            strPtr(nu.Country),
		City:               strPtr(nu.City),
		Phone:              strPtr(nu.Phone),
		TOSVersion:         strPtr(nu.TOSVersion),
		NonCircumventionAt: &acceptedAt,
		RegistrationIP:     strPtr(nu.RegistrationIP),
	}
	if user.SubscriptionStatus == "" {
		user.SubscriptionStatus = access.SubscriptionNone
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// ResolveViewer loads the caller's current authorization state. Tokens can
// be minutes old; role, tier and subscription come from the store.
func (s *Service) ResolveViewer(
	ctx context.Context,
	userID string,
) (*access.Viewer, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Viewer(), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.CompanyName != nil {
		user.CompanyName = strPtr(*req.CompanyName)
	}
	if req.Country != nil {
		user.Country = strPtr(*req.Country)
	}
	if req.City != nil {
		user.City = strPtr(*req.City)
	}
	if req.Phone != nil {
		user.Phone = strPtr(*req.Phone)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUserRole changes the role and clears a tier that no longer belongs
// to it.
func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	newRole, err := access.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	return s.mutateAccess(ctx, id, func(u *User) error {
		u.Role = newRole
		if _, err := access.NormalizeTierForRole(newRole, u.TierValue()); err != nil {
			u.Tier = nil
		}
		return nil
	})
}

func (s *Service) UpdateUserTier(
	ctx context.Context,
	id, tier string,
) (*User, error) {
	return s.mutateAccess(ctx, id, func(u *User) error {
		canonical, err := access.NormalizeTierForRole(u.Role, tier)
		if err != nil {
			return fmt.Errorf("update tier: %w", err)
		}
		u.Tier = strPtr(canonical)
		return nil
	})
}

func (s *Service) UpdateSubscription(
	ctx context.Context,
	id, status string,
) (*User, error) {
	st, err := access.ParseSubscriptionStatus(status)
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	return s.mutateAccess(ctx, id, func(u *User) error {
		u.SubscriptionStatus = st
		return nil
	})
}

func (s *Service) SetVerified(
	ctx context.Context,
	id string,
	verified bool,
) (*User, error) {
	return s.mutateAccess(ctx, id, func(u *User) error {
		u.Verified = verified
		return nil
	})
}

// mutateAccess is the load, change, write cycle shared by the admin
// endpoints that touch authorization fields.
func (s *Service) mutateAccess(
	ctx context.Context,
	id string,
	change func(*User) error,
) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := change(u); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAccess(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func requireSelf(op, userID string) error {
	if userID == "" {
		return fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
	}
	return nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if err := requireSelf("get me", userID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if err := requireSelf("update me", userID); err != nil {
		return nil, err
	}
	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if err := requireSelf("delete me", userID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, userID)
}

// CanDeleteUser lets users remove themselves and admins remove non-admins.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		Tier:               u.TierValue(),
		SubscriptionStatus: string(u.SubscriptionStatus),
		Verified:           u.Verified,
		TokenVersion:       u.TokenVersion,
		CreatedAt:          u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
