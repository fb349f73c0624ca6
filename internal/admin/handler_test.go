// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/audit"
)

type stubAuditLog struct {
	params audit.ListParams
}

func (s *stubAuditLog) List(_ context.Context, p audit.ListParams) ([]audit.Entry, int, error) {
	s.params = p
	return []audit.Entry{{ID: "e-1", Endpoint: "/v1/leads", Method: "POST"}}, 41, nil
}

type stubQueue struct{}

func (stubQueue) Stats() audit.Stats {
	return audit.Stats{Enabled: true, Queued: 3, Capacity: 1024, Dropped: 7}
}

func passthrough(next http.Handler) http.Handler { return next }

func newRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.RegisterRoutes(r, passthrough, passthrough)
	return r
}

func TestListAuditLog(t *testing.T) {
	log := &stubAuditLog{}
	r := newRouter(NewHandler(HandlerConfig{AuditLog: log}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/audit?page=2&page_size=20&user_id=u-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 2, log.params.Page)
	assert.Equal(t, 20, log.params.PageSize)
	assert.Equal(t, "u-1", log.params.UserID)

	var body struct {
		Data []audit.Entry `json:"data"`
		Meta struct {
			Total      int `json:"total"`
			TotalPages int `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 41, body.Meta.Total)
	assert.Equal(t, 3, body.Meta.TotalPages)
}

func TestSystemStatsReportsDependencies(t *testing.T) {
	r := newRouter(NewHandler(HandlerConfig{
		DBPing:     func(context.Context) error { return nil },
		RedisPing:  func(context.Context) error { return errors.New("down") },
		AuditQueue: stubQueue{},
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SystemStatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Database.Healthy)
	assert.False(t, body.Data.Redis.Healthy)
	require.NotNil(t, body.Data.Audit)
	assert.Equal(t, int64(7), body.Data.Audit.Dropped)
}
