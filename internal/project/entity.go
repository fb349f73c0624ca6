// AngelaMos | 2026
// entity.go

package project

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elyterrax/marketplace-api/internal/access"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusDraft, StatusPublished, StatusArchived:
		return st, true
	}
	return "", false
}

// CanTransition reports whether a project may move from s to next through
// the status endpoint. Archived is terminal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPublished
	case StatusPublished:
		return next == StatusDraft
	}
	return false
}

type ContactVisibility string

const (
	ContactHidden ContactVisibility = "hidden"
	ContactMasked ContactVisibility = "masked"
	ContactFull   ContactVisibility = "full"
)

func ParseContactVisibility(s string) (ContactVisibility, bool) {
	switch cv := ContactVisibility(s); cv {
	case ContactHidden, ContactMasked, ContactFull:
		return cv, true
	case "none":
		return ContactHidden, true
	}
	return "", false
}

type Project struct {
	ID                 string              `db:"id"`
	DeveloperID        string              `db:"developer_id"`
	Title              string              `db:"title"`
	Description        string              `db:"description"`
	Country            string              `db:"country"`
	City               string              `db:"city"`
	PropertyType       string              `db:"property_type"`
	InvestmentRequired decimal.Decimal     `db:"total_investment_required"`
	ROIEstimate        decimal.NullDecimal `db:"roi_estimate"`
	TimelineMonths     *int                `db:"timeline_months"`
	Status             Status              `db:"status"`
	AccessLevel        access.AccessLevel  `db:"access_level"`
	ContactVisibility  ContactVisibility   `db:"contact_visibility"`
	VisibilityScore    int                 `db:"visibility_score"`
	Tags               StringList          `db:"tags"`
	MediaURLs          StringList          `db:"media_urls"`
	PublishedAt        *time.Time          `db:"published_at"`
	CreatedAt          time.Time           `db:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at"`
	DeveloperName      *string             `db:"developer_name"`
	DeveloperEmail     *string             `db:"developer_email"`
}

func (p *Project) IsArchived() bool {
	return p.Status == StatusArchived
}

// StringList is a JSONB array of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("encode string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan string list: unsupported type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*l = out
	return nil
}

// MaskEmail keeps the first and last character of the local part:
// john@example.com becomes j***n@example.com.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}

	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return local[:1] + "***" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + domain
}
