// AngelaMos | 2026
// handler.go

package document

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/middleware"
)

const multipartMemory = 8 << 20

type Handler struct {
	service   *Service
	validator *validator.Validate
	maxBytes  int64
	maxSizeMB int64
}

// NewHandler caps request bodies at maxBytes plus room for the multipart
// envelope and form fields.
func NewHandler(service *Service, maxBytes int64) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		maxBytes:  maxBytes,
		maxSizeMB: maxBytes >> 20,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated, optional func(http.Handler) http.Handler,
) {
	r.Route("/projects/{projectID}/documents", func(r chi.Router) {
		r.With(optional).Get("/", h.List)
		r.With(authenticated).Post("/", h.Upload)
	})

	r.Route("/documents", func(r chi.Router) {
		r.With(optional).Get("/{documentID}", h.Get)
		r.With(authenticated).Delete("/{documentID}", h.Delete)
	})
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.TooLargeError(fmt.Sprintf(
				"File size exceeds maximum allowed (%dMB)", h.maxSizeMB,
			)))
			return
		}
		core.BadRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		//nolint:errcheck // temp file cleanup
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		core.BadRequest(w, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	req := UploadDocumentRequest{
		DocType:     r.FormValue("doc_type"),
		AccessLevel: r.FormValue("access_level"),
		Description: r.FormValue("description"),
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	signed, err := h.service.Upload(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
		Upload{
			UploadDocumentRequest: req,
			FileName:              header.Filename,
			ContentType:           header.Header.Get("Content-Type"),
			Size:                  header.Size,
			Body:                  file,
		},
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToSignedResponse(signed))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	signed, err := h.service.Get(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "documentID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToSignedResponse(signed))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToDocumentListResponse(docs))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "documentID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}
