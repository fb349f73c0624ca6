// AngelaMos | 2026
// handler_test.go

package user

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/elyterrax/marketplace-api/internal/access"
)

func passthrough(next http.Handler) http.Handler { return next }

func TestAdminTierRoute(t *testing.T) {
	repo := newStubRepo(&User{ID: "dev-1", Role: access.RoleDeveloper})
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	h.RegisterAdminRoutes(r, passthrough, passthrough)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"canonical tier", "/admin/users/dev-1/tier", `{"tier":"Elite"}`, http.StatusOK},
		{"investor tier on developer", "/admin/users/dev-1/tier", `{"tier":"insider"}`, http.StatusBadRequest},
		{"unknown user", "/admin/users/ghost/tier", `{"tier":"growth"}`, http.StatusNotFound},
		{"malformed body", "/admin/users/dev-1/tier", `{`, http.StatusBadRequest},
		{"bad subscription", "/admin/users/dev-1/subscription", `{"status":"gold"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	assert.Equal(t, "elite", repo.users["dev-1"].TierValue())
}
