// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/access"
)

func TestLocalLimiterBurstThenDeny(t *testing.T) {
	l := newLocalLimiter()
	limit := redis_rate.Limit{Rate: 60, Burst: 2, Period: time.Minute}

	assert.Equal(t, 1, l.allow("k", limit).Allowed)
	assert.Equal(t, 1, l.allow("k", limit).Allowed)

	denied := l.allow("k", limit)
	assert.Equal(t, 0, denied.Allowed)
	assert.Equal(t, time.Second, denied.RetryAfter)

	assert.Equal(t, 1, l.allow("other", limit).Allowed)
}

func TestTierKey(t *testing.T) {
	tests := []struct {
		viewer access.Viewer
		want   string
	}{
		{access.Viewer{Role: access.RoleAdmin}, "admin"},
		{access.Viewer{Role: access.RoleDeveloper, Tier: "elite"}, "elite"},
		{access.Viewer{Role: access.RoleDeveloper, Tier: "insider"}, "launch"},
		{access.Viewer{Role: access.RoleInvestor, Tier: "capital_partner"}, "capital_partner"},
		{access.Viewer{Role: access.RoleInvestor}, "explorer"},
		{access.Viewer{Role: access.RoleBuyer}, defaultTierKey},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tierKey(&tt.viewer), "%s/%s", tt.viewer.Role, tt.viewer.Tier)
	}
}

func TestPerViewerTierSkipsAnonymous(t *testing.T) {
	policy := PerViewerTier(DefaultTiers)

	_, ok := policy(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(WithViewer(r.Context(), &access.Viewer{
		ID: "u-9", Role: access.RoleInvestor, Tier: "insider",
	}))
	b, ok := policy(r)
	require.True(t, ok)
	assert.Equal(t, "ratelimit:user:u-9", b.Key)
	assert.Equal(t, 300, b.Limit.Rate)
}

func TestLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := NewLimiter(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := limiter.Middleware(PerClientIP(60, 1, time.Minute))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
		r.RemoteAddr = "198.51.100.20:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	first := send()
	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, "60", first.Header().Get("X-RateLimit-Limit"))

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
