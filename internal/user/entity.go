// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/elyterrax/marketplace-api/internal/access"
)

type User struct {
	ID                 string                    `db:"id"`
	Email              string                    `db:"email"`
	PasswordHash       string                    `db:"password_hash"`
	Name               string                    `db:"full_name"`
	Role               access.Role               `db:"role"`
	Tier               *string                   `db:"tier"`
	SubscriptionStatus access.SubscriptionStatus `db:"subscription_status"`
	Verified           bool                      `db:"verified"`
	CompanyName        *string                   `db:"company_name"`
	Country            *string                   `db:"country"`
	City               *string                   `db:"city"`
	Phone              *string                   `db:"phone"`
	TOSVersion         *string                   `db:"tos_version"`
	NonCircumventionAt *time.Time                `db:"non_circumvention_accepted_at"`
	RegistrationIP     *string                   `db:"ip_registered"`
	TokenVersion       int                       `db:"token_version"`
	CreatedAt          time.Time                 `db:"created_at"`
	UpdatedAt          time.Time                 `db:"updated_at"`
	DeletedAt          *time.Time                `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == access.RoleAdmin
}

// TierValue is the stored tier literal, "" when unset.
func (u *User) TierValue() string {
	if u.Tier == nil {
		return ""
	}
	return *u.Tier
}

func (u *User) Viewer() *access.Viewer {
	return &access.Viewer{
		ID:                 u.ID,
		Role:               u.Role,
		Tier:               u.TierValue(),
		SubscriptionStatus: u.SubscriptionStatus,
		Verified:           u.Verified,
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
