// AngelaMos | 2026
// viewer.go

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
)

type ViewerResolver interface {
	ResolveViewer(ctx context.Context, userID string) (*access.Viewer, error)
}

// LoadViewer reads the authenticated user's current role, tier and
// subscription from the store. It runs after Authenticator or OptionalAuth;
// requests without a user id pass through as anonymous.
func LoadViewer(resolver ViewerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			viewer, err := resolver.ResolveViewer(r.Context(), userID)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					core.JSONError(w, core.UnauthorizedError("user no longer exists"))
					return
				}
				core.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), viewer)))
		})
	}
}
