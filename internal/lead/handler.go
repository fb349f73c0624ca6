// AngelaMos | 2026
// handler.go

package lead

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated func(http.Handler) http.Handler,
) {
	r.Route("/leads", func(r chi.Router) {
		r.Use(authenticated)

		r.Post("/", h.Create)
		r.Get("/", h.ListMine)
		r.Get("/{leadID}", h.Get)
		r.Patch("/{leadID}/status", h.UpdateStatus)
		r.Get("/{leadID}/messages", h.ListMessages)
		r.Post("/{leadID}/messages", h.SendMessage)
	})
}

func requestMeta(r *http.Request) RequestMeta {
	return RequestMeta{
		IP:        middleware.ClientIP(r),
		UserAgent: middleware.UserAgent(r),
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	lead, err := h.service.CreateLead(
		r.Context(),
		middleware.GetViewer(r.Context()),
		req,
		requestMeta(r),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToLeadResponse(lead))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.ListMine(r.Context(), middleware.GetViewer(r.Context()))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLeadListResponse(leads))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.service.GetLead(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "leadID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLeadResponse(lead))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	lead, err := h.service.UpdateStatus(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "leadID"),
		req.Status,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLeadResponse(lead))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.ListMessages(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "leadID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToMessageListResponse(msgs))
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	msg, err := h.service.SendMessage(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "leadID"),
		req.Content,
		requestMeta(r),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToMessageResponse(msg))
}
