// AngelaMos | 2026
// entity.go

package audit

import (
	"time"
)

// Entry is one API request as recorded in api_request_logs.
type Entry struct {
	ID         string    `db:"id"          json:"id"`
	UserID     *string   `db:"user_id"     json:"user_id,omitempty"`
	Endpoint   string    `db:"endpoint"    json:"endpoint"`
	Method     string    `db:"method"      json:"method"`
	IPAddress  string    `db:"ip_address"  json:"ip_address"`
	UserAgent  string    `db:"user_agent"  json:"user_agent"`
	StatusCode int       `db:"status_code" json:"status_code"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	RequestID  string    `db:"request_id"  json:"request_id"`
	OccurredAt time.Time `db:"created_at"  json:"created_at"`
}

type Stats struct {
	Enabled  bool  `json:"enabled"`
	Queued   int   `json:"queued"`
	Capacity int   `json:"capacity"`
	Written  int64 `json:"written"`
	Dropped  int64 `json:"dropped"`
	Failed   int64 `json:"failed"`
}

type ListParams struct {
	Page     int
	PageSize int
	UserID   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}
