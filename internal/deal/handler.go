// AngelaMos | 2026
// handler.go

package deal

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticated, adminOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticated, adminOnly)

		r.Post("/admin/deals", h.Record)
		r.Get("/admin/deals/{dealID}", h.Get)
		r.Get("/admin/leads/{leadID}/deals", h.ListByLead)
	})
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := h.service.Record(r.Context(), middleware.GetViewer(r.Context()), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToDealResponse(d))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "dealID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToDealResponse(d))
}

func (h *Handler) ListByLead(w http.ResponseWriter, r *http.Request) {
	deals, err := h.service.ListByLead(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "leadID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToDealListResponse(deals))
}
