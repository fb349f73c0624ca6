// AngelaMos | 2026
// handler.go

package project

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/elyterrax/marketplace-api/internal/access"
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

// RegisterRoutes mounts the project endpoints. optional loads the viewer
// when a token is present; authenticated requires one.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticated, optional func(http.Handler) http.Handler,
) {
	r.Route("/projects", func(r chi.Router) {
		r.With(optional).Get("/", h.Search)
		r.With(optional).Get("/{projectID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.With(middleware.RequireRole(access.RoleDeveloper)).Post("/", h.Create)
			r.With(middleware.RequireRole(access.RoleDeveloper)).Get("/mine", h.ListMine)
			r.Put("/{projectID}", h.Update)
			r.Delete("/{projectID}", h.Archive)
			r.Patch("/{projectID}/status", h.ChangeStatus)
			r.With(middleware.RequireAdmin).Post("/{projectID}/boost", h.Boost)
		})
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticated, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/projects", func(r chi.Router) {
		r.Use(authenticated, adminOnly)

		r.Delete("/{projectID}", h.Purge)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	viewer := middleware.GetViewer(r.Context())

	p, err := h.service.Create(r.Context(), viewer, req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToProjectResponse(p, true))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	p, err := h.service.Get(r.Context(), viewer, chi.URLParam(r, "projectID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(p, canManage(viewer, p)))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	params, err := parseSearchParams(r)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	viewer := middleware.GetViewer(r.Context())

	projects, total, err := h.service.Search(r.Context(), viewer, params)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		toResponseList(viewer, projects),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	projects, err := h.service.ListMine(r.Context(), viewer)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, toResponseList(viewer, projects))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Update(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
		req,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(p, true))
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.ChangeStatus(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
		req.Status,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(p, true))
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	err := h.service.Archive(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Boost(w http.ResponseWriter, r *http.Request) {
	var req BoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	p, err := h.service.Boost(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
		req.Amount,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToProjectResponse(p, true))
}

func (h *Handler) Purge(w http.ResponseWriter, r *http.Request) {
	err := h.service.Purge(
		r.Context(),
		middleware.GetViewer(r.Context()),
		chi.URLParam(r, "projectID"),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func toResponseList(viewer *access.Viewer, projects []Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		out = append(out, ToProjectResponse(p, canManage(viewer, p)))
	}
	return out
}

func parseSearchParams(r *http.Request) (SearchParams, error) {
	q := r.URL.Query()

	params := SearchParams{
		Country:      q.Get("country"),
		City:         q.Get("city"),
		PropertyType: q.Get("property_type"),
		Status:       q.Get("status"),
		SortBy:       q.Get("sort_by"),
		SortOrder:    strings.ToLower(q.Get("sort_order")),
		Page:         parseIntQuery(r, "page", 1),
		PageSize:     parseIntQuery(r, "page_size", 20),
	}

	if raw := q.Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				params.Tags = append(params.Tags, tag)
			}
		}
	}

	decimals := []struct {
		key  string
		dest **decimal.Decimal
	}{
		{"min_investment", &params.MinInvestment},
		{"max_investment", &params.MaxInvestment},
		{"min_roi", &params.MinROI},
	}
	for _, d := range decimals {
		raw := q.Get(d.key)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return params, core.BadRequestError("invalid " + d.key)
		}
		*d.dest = &v
	}

	return params, nil
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
