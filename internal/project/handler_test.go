// AngelaMos | 2026
// handler_test.go

package project

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/middleware"
)

func withViewer(v *access.Viewer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v != nil {
				r = r.WithContext(middleware.WithViewer(r.Context(), v))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(repo *stubRepo, v *access.Viewer) http.Handler {
	h := NewHandler(NewService(repo, nil, quietLogger()))
	r := chi.NewRouter()
	h.RegisterRoutes(r, withViewer(v), withViewer(v))
	return r
}

func TestHandlerSearchAnonymous(t *testing.T) {
	repo := newStubRepo()
	router := newTestRouter(repo, nil)

	req := httptest.NewRequest(
		http.MethodGet,
		"/projects?tags=luxury,%20lisbon&min_roi=12.5&page_size=500&sort_by=bogus",
		nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"public"}, repo.searchLevels)
	assert.Equal(t, []string{"luxury", "lisbon"}, repo.searchParams.Tags)
	require.NotNil(t, repo.searchParams.MinROI)
	assert.Equal(t, "12.5", repo.searchParams.MinROI.String())

	var body struct {
		Success bool `json:"success"`
		Meta    struct {
			PageSize int `json:"page_size"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 100, body.Meta.PageSize)
}

func TestHandlerSearchBadDecimal(t *testing.T) {
	router := newTestRouter(newStubRepo(), nil)

	req := httptest.NewRequest(http.MethodGet, "/projects?min_investment=lots", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateRequiresDeveloper(t *testing.T) {
	investor := &access.Viewer{ID: "inv-1", Role: access.RoleInvestor}
	router := newTestRouter(newStubRepo(), investor)

	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerCreateQuotaExceeded(t *testing.T) {
	repo := newStubRepo()
	dev := developer("dev-1", "launch")
	for _, id := range []string{"a", "b", "c"} {
		seed(repo, Project{ID: id, DeveloperID: "dev-1"})
	}
	router := newTestRouter(repo, dev)

	body := `{
		"title": "Riverside Lofts",
		"description": "Forty loft units on the river front.",
		"country": "Portugal",
		"city": "Porto",
		"property_type": "residential",
		"investment_required": 2500000
	}`
	req := httptest.NewRequest(http.MethodPost, "/projects", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "QUOTA_EXCEEDED", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "Launch tier allows 3 projects")
}

func TestHandlerGetForbidden(t *testing.T) {
	repo := newStubRepo()
	seed(repo, Project{
		ID:          "p-1",
		DeveloperID: "dev-1",
		AccessLevel: access.LevelPreLaunch,
	})
	router := newTestRouter(repo, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/p-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
