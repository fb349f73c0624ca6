// AngelaMos | 2026
// dto.go

package project

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProjectRequest struct {
	Title              string           `json:"title"               validate:"required,min=3,max=200"`
	Description        string           `json:"description"         validate:"required,min=10,max=5000"`
	Country            string           `json:"country"             validate:"required,min=2,max=100"`
	City               string           `json:"city"                validate:"required,min=2,max=100"`
	PropertyType       string           `json:"property_type"       validate:"required,max=50"`
	InvestmentRequired decimal.Decimal  `json:"investment_required"`
	ROIEstimate        *decimal.Decimal `json:"roi_estimate,omitempty"`
	TimelineMonths     *int             `json:"timeline_months,omitempty"    validate:"omitempty,gt=0,lte=360"`
	AccessLevel        string           `json:"access_level,omitempty"       validate:"omitempty,oneof=public verified_only pre_launch investor_only"`
	ContactVisibility  string           `json:"contact_visibility,omitempty" validate:"omitempty,oneof=hidden masked full none"`
	Tags               []string         `json:"tags,omitempty"               validate:"max=20,dive,min=1,max=50"`
	MediaURLs          []string         `json:"media_urls,omitempty"         validate:"max=30,dive,url"`
}

// UpdateProjectRequest carries optional fields. Status is changed through
// the status endpoint only.
type UpdateProjectRequest struct {
	Title              *string          `json:"title,omitempty"              validate:"omitempty,min=3,max=200"`
	Description        *string          `json:"description,omitempty"        validate:"omitempty,min=10,max=5000"`
	Country            *string          `json:"country,omitempty"            validate:"omitempty,min=2,max=100"`
	City               *string          `json:"city,omitempty"               validate:"omitempty,min=2,max=100"`
	PropertyType       *string          `json:"property_type,omitempty"      validate:"omitempty,max=50"`
	InvestmentRequired *decimal.Decimal `json:"investment_required,omitempty"`
	ROIEstimate        *decimal.Decimal `json:"roi_estimate,omitempty"`
	TimelineMonths     *int             `json:"timeline_months,omitempty"    validate:"omitempty,gt=0,lte=360"`
	AccessLevel        *string          `json:"access_level,omitempty"       validate:"omitempty,oneof=public verified_only pre_launch investor_only"`
	ContactVisibility  *string          `json:"contact_visibility,omitempty" validate:"omitempty,oneof=hidden masked full none"`
	Tags               []string         `json:"tags,omitempty"               validate:"omitempty,max=20,dive,min=1,max=50"`
	MediaURLs          []string         `json:"media_urls,omitempty"         validate:"omitempty,max=30,dive,url"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

type BoostRequest struct {
	Amount int `json:"amount" validate:"required,gt=0,lte=100000"`
}

type SearchParams struct {
	Country       string
	City          string
	PropertyType  string
	MinInvestment *decimal.Decimal
	MaxInvestment *decimal.Decimal
	MinROI        *decimal.Decimal
	Tags          []string
	Status        string
	SortBy        string
	SortOrder     string
	Page          int
	PageSize      int
}

var sortColumns = map[string]string{
	"visibility_score":    "p.visibility_score",
	"created_at":          "p.created_at",
	"investment_required": "p.total_investment_required",
	"roi_estimate":        "p.roi_estimate",
}

func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "visibility_score"
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	if p.Status == "" {
		p.Status = string(StatusPublished)
	}
}

func (p *SearchParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProjectResponse struct {
	ID                 string           `json:"id"`
	DeveloperID        string           `json:"developer_id"`
	DeveloperName      string           `json:"developer_name,omitempty"`
	DeveloperEmail     string           `json:"developer_email,omitempty"`
	Title              string           `json:"title"`
	Description        string           `json:"description"`
	Country            string           `json:"country"`
	City               string           `json:"city"`
	PropertyType       string           `json:"property_type"`
	InvestmentRequired decimal.Decimal  `json:"investment_required"`
	ROIEstimate        *decimal.Decimal `json:"roi_estimate,omitempty"`
	TimelineMonths     *int             `json:"timeline_months,omitempty"`
	Status             string           `json:"status"`
	AccessLevel        string           `json:"access_level"`
	ContactVisibility  string           `json:"contact_visibility"`
	VisibilityScore    int              `json:"visibility_score"`
	Tags               []string         `json:"tags"`
	MediaURLs          []string         `json:"media_urls"`
	PublishedAt        *time.Time       `json:"published_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ToProjectResponse applies the project's contact visibility unless the
// viewer sees the full record (owner or admin).
func ToProjectResponse(p *Project, fullContact bool) ProjectResponse {
	resp := ProjectResponse{
		ID:                 p.ID,
		DeveloperID:        p.DeveloperID,
		Title:              p.Title,
		Description:        p.Description,
		Country:            p.Country,
		City:               p.City,
		PropertyType:       p.PropertyType,
		InvestmentRequired: p.InvestmentRequired,
		TimelineMonths:     p.TimelineMonths,
		Status:             string(p.Status),
		AccessLevel:        string(p.AccessLevel),
		ContactVisibility:  string(p.ContactVisibility),
		VisibilityScore:    p.VisibilityScore,
		Tags:               nonNil(p.Tags),
		MediaURLs:          nonNil(p.MediaURLs),
		PublishedAt:        p.PublishedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.ROIEstimate.Valid {
		roi := p.ROIEstimate.Decimal
		resp.ROIEstimate = &roi
	}
	if p.DeveloperName != nil {
		resp.DeveloperName = *p.DeveloperName
	}

	if p.DeveloperEmail != nil {
		switch {
		case fullContact, p.ContactVisibility == ContactFull:
			resp.DeveloperEmail = *p.DeveloperEmail
		case p.ContactVisibility == ContactMasked:
			resp.DeveloperEmail = MaskEmail(*p.DeveloperEmail)
		}
	}

	return resp
}

func nonNil(l StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
