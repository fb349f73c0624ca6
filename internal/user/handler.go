// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/middleware"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
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
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Delete("/me", h.DeleteMe)
	})
}

// RegisterAdminRoutes mounts account management. Tier and role changes
// never touch leads that already locked their terms.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
		r.Delete("/{userID}", h.DeleteUser)

		r.Put("/{userID}", adminUpdate(h, h.service.UpdateUser))
		r.Put("/{userID}/role", adminUpdate(h,
			func(ctx context.Context, id string, req UpdateUserRoleRequest) (*User, error) {
				return h.service.UpdateUserRole(ctx, id, req.Role)
			}))
		r.Put("/{userID}/tier", adminUpdate(h,
			func(ctx context.Context, id string, req UpdateUserTierRequest) (*User, error) {
				return h.service.UpdateUserTier(ctx, id, req.Tier)
			}))
		r.Put("/{userID}/subscription", adminUpdate(h,
			func(ctx context.Context, id string, req UpdateSubscriptionRequest) (*User, error) {
				return h.service.UpdateSubscription(ctx, id, req.Status)
			}))
		r.Put("/{userID}/verified", adminUpdate(h,
			func(ctx context.Context, id string, req UpdateVerifiedRequest) (*User, error) {
				return h.service.SetVerified(ctx, id, req.Verified)
			}))
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	writeUser(w, user, err)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.bind(w, r, &req) {
		return
	}

	user, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	writeUser(w, user, err)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeUser(w, nil, err)
		return
	}
	core.NoContent(w)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:     max(queryInt(r, "page", 1), 1),
		PageSize: min(max(queryInt(r, "page_size", defaultPageSize), 1), maxPageSize),
		Search:   q.Get("search"),
		Role:     q.Get("role"),
		Tier:     q.Get("tier"),
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	writeUser(w, user, err)
}

// DeleteUser soft deletes an account. Admin accounts cannot be deleted
// through here.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "userID")

	err := h.service.CanDeleteUser(r.Context(), middleware.GetUserID(r.Context()), targetID)
	if err == nil {
		err = h.service.DeleteUser(r.Context(), targetID)
	}
	if err != nil {
		writeUser(w, nil, err)
		return
	}

	core.NoContent(w)
}

// adminUpdate decodes T, applies it to the user named in the path and
// writes the updated user back.
func adminUpdate[T any](
	h *Handler,
	apply func(ctx context.Context, id string, req T) (*User, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if !h.bind(w, r, &req) {
			return
		}
		user, err := apply(r.Context(), chi.URLParam(r, "userID"), req)
		writeUser(w, user, err)
	}
}

func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func writeUser(w http.ResponseWriter, user *User, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case err != nil:
		core.HandleError(w, err)
	default:
		core.OK(w, ToUserResponse(user))
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
