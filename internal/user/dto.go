// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty"         validate:"omitempty,min=1,max=100"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	Country     *string `json:"country,omitempty"      validate:"omitempty,max=100"`
	City        *string `json:"city,omitempty"         validate:"omitempty,max=100"`
	Phone       *string `json:"phone,omitempty"        validate:"omitempty,max=50"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=developer investor agency buyer admin"`
}

// UpdateUserTierRequest sets or clears (empty string) the tier. The literal
// is checked against the user's current role.
type UpdateUserTierRequest struct {
	Tier string `json:"tier" validate:"max=50"`
}

type UpdateSubscriptionRequest struct {
	Status string `json:"status" validate:"required,oneof=active trial expired none"`
}

type UpdateVerifiedRequest struct {
	Verified bool `json:"verified"`
}

type UserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Role               string    `json:"role"`
	Tier               string    `json:"tier,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	Verified           bool      `json:"verified"`
	CompanyName        string    `json:"company_name,omitempty"`
	Country            string    `json:"country,omitempty"`
	City               string    `json:"city,omitempty"`
	Phone              string    `json:"phone,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Role     string `json:"role"`
	Tier     string `json:"tier"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		Tier:               u.TierValue(),
		SubscriptionStatus: string(u.SubscriptionStatus),
		Verified:           u.Verified,
		CompanyName:        strVal(u.CompanyName),
		Country:            strVal(u.Country),
		City:               strVal(u.City),
		Phone:              strVal(u.Phone),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(&u))
	}
	return responses
}
