// AngelaMos | 2026
// entity.go

package document

import (
	"time"

	"github.com/elyterrax/marketplace-api/internal/access"
)

type DocType string

const (
	DocTypeIM             DocType = "IM"
	DocTypeOM             DocType = "OM"
	DocTypePitchDeck      DocType = "pitch_deck"
	DocTypeFinancialModel DocType = "financial_model"
	DocTypeLegal          DocType = "legal"
	DocTypeBrochure       DocType = "brochure"
	DocTypeFloorPlans     DocType = "floor_plans"
	DocTypePhotos         DocType = "photos"
	DocTypeOther          DocType = "other"
)

type Document struct {
	ID          string                     `db:"id"`
	ProjectID   string                     `db:"project_id"`
	UploadedBy  string                     `db:"uploaded_by"`
	DocType     DocType                    `db:"doc_type"`
	AccessLevel access.DocumentAccessLevel `db:"access_level"`
	Description *string                    `db:"description"`
	FileName    string                     `db:"file_name"`
	FileSize    int64                      `db:"file_size"`
	ContentType string                     `db:"content_type"`
	StorageKey  string                     `db:"storage_key"`
	FileURL     string                     `db:"file_url"`
	Checksum    string                     `db:"checksum"`
	CreatedAt   time.Time                  `db:"created_at"`
}
