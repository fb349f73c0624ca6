// AngelaMos | 2026
// dto.go

package document

import (
	"io"
	"time"
)

type UploadDocumentRequest struct {
	DocType     string `validate:"required,oneof=IM OM pitch_deck financial_model legal brochure floor_plans photos other"`
	AccessLevel string `validate:"omitempty,oneof=public verified_only investor_only"`
	Description string `validate:"max=1000"`
}

// Upload is a validated request plus the file part. Body must be
// seekable so the checksum pass can rewind before the store reads it.
type Upload struct {
	UploadDocumentRequest
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type DocumentResponse struct {
	ID           string     `json:"id"`
	ProjectID    string     `json:"project_id"`
	DocType      string     `json:"doc_type"`
	AccessLevel  string     `json:"access_level"`
	Description  string     `json:"description,omitempty"`
	FileName     string     `json:"file_name"`
	FileSize     int64      `json:"file_size"`
	ContentType  string     `json:"content_type"`
	Checksum     string     `json:"checksum"`
	SignedURL    string     `json:"signed_url,omitempty"`
	URLExpiresAt *time.Time `json:"url_expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

// SignedDocument is a document together with a short-lived download URL.
type SignedDocument struct {
	Document  *Document
	URL       string
	ExpiresAt time.Time
}

func ToDocumentResponse(d *Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		DocType:     string(d.DocType),
		AccessLevel: string(d.AccessLevel),
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		ContentType: d.ContentType,
		Checksum:    d.Checksum,
		CreatedAt:   d.CreatedAt,
	}
	if d.Description != nil {
		resp.Description = *d.Description
	}
	return resp
}

func ToSignedResponse(s *SignedDocument) DocumentResponse {
	resp := ToDocumentResponse(s.Document)
	resp.SignedURL = s.URL
	expires := s.ExpiresAt
	resp.URLExpiresAt = &expires
	return resp
}

func ToDocumentListResponse(docs []Document) DocumentListResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, ToDocumentResponse(&docs[i]))
	}
	return DocumentListResponse{Documents: out, Total: len(out)}
}
