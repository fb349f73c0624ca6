// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/core"
	"github.com/elyterrax/marketplace-api/internal/metrics"
)

// LimitPolicy picks the bucket and budget for a request. ok=false lets the
// request through unmetered.
type LimitPolicy func(r *http.Request) (bucket Bucket, ok bool)

type Bucket struct {
	Key   string
	Label string
	Limit redis_rate.Limit
}

// Limiter meters requests in Redis so every replica shares one budget.
// While Redis is unreachable each replica falls back to its own in-memory
// token bucket.
type Limiter struct {
	shared *redis_rate.Limiter
	local  *localLimiter
	logger *slog.Logger
}

func NewLimiter(rdb *redis.Client, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		shared: redis_rate.NewLimiter(rdb),
		local:  newLocalLimiter(),
		logger: logger,
	}
}

func (l *Limiter) Middleware(policy LimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, ok := policy(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.shared.Allow(r.Context(), b.Key, b.Limit)
			if err != nil {
				l.logger.WarnContext(r.Context(), "rate limiter degraded to local",
					"error", err,
					"bucket", b.Label,
				)
				res = l.local.allow(b.Key, b.Limit)
			}

			writeLimitHeaders(w, res, b.Limit)

			if res.Allowed == 0 {
				metrics.RateLimitedTotal.WithLabelValues(b.Label).Inc()
				retry := max(int(res.RetryAfter.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				core.JSONError(w, core.RateLimitedError(fmt.Sprintf(
					"Rate limit exceeded. Retry after %d seconds.", retry,
				)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PerClientIP meters every request by client address.
func PerClientIP(requests, burst int, window time.Duration) LimitPolicy {
	limit := redis_rate.Limit{Rate: requests, Burst: burst, Period: window}
	return func(r *http.Request) (Bucket, bool) {
		ip := ClientIP(r)
		if ip == "" {
			ip = "unknown"
		}
		return Bucket{Key: "ratelimit:ip:" + ip, Label: "ip", Limit: limit}, true
	}
}

type TierConfig struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultTiers keys request budgets by the viewer's tier literal. Developer
// and investor tiers never collide, so one map serves both roles.
var DefaultTiers = map[string]TierConfig{
	defaultTierKey:                    {RequestsPerMinute: 60, BurstSize: 10},
	string(access.TierExplorer):       {RequestsPerMinute: 60, BurstSize: 10},
	string(access.TierInsider):        {RequestsPerMinute: 300, BurstSize: 50},
	string(access.TierCapitalPartner): {RequestsPerMinute: 1200, BurstSize: 200},
	string(access.TierLaunch):         {RequestsPerMinute: 120, BurstSize: 20},
	string(access.TierGrowth):         {RequestsPerMinute: 600, BurstSize: 100},
	string(access.TierElite):          {RequestsPerMinute: 3000, BurstSize: 500},
	string(access.RoleAdmin):          {RequestsPerMinute: 6000, BurstSize: 1000},
}

const defaultTierKey = "default"

// PerViewerTier meters signed-in viewers by the budget of their tier.
// Anonymous requests are left to PerClientIP.
func PerViewerTier(tiers map[string]TierConfig) LimitPolicy {
	return func(r *http.Request) (Bucket, bool) {
		viewer := GetViewer(r.Context())
		if viewer == nil {
			return Bucket{}, false
		}

		tier := tierKey(viewer)
		cfg, ok := tiers[tier]
		if !ok {
			cfg = tiers[defaultTierKey]
		}

		return Bucket{
			Key:   "ratelimit:user:" + viewer.ID,
			Label: tier,
			Limit: redis_rate.Limit{
				Rate:   cfg.RequestsPerMinute,
				Burst:  cfg.BurstSize,
				Period: time.Minute,
			},
		}, true
	}
}

func tierKey(viewer *access.Viewer) string {
	if viewer.IsAdmin() {
		return string(access.RoleAdmin)
	}

	switch viewer.Role {
	case access.RoleDeveloper:
		if t, ok := access.ParseDeveloperTier(viewer.Tier); ok {
			return string(t)
		}
		return string(access.TierLaunch)
	case access.RoleInvestor:
		if t, ok := access.ParseInvestorTier(viewer.Tier); ok {
			return string(t)
		}
		return string(access.TierExplorer)
	}
	return defaultTierKey
}

func writeLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d",
		limit.Rate, int(limit.Period.Seconds())))
}

const localEntryTTL = 10 * time.Minute

type localLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter() *localLimiter {
	return &localLimiter{
		buckets:   make(map[string]*localBucket),
		lastSweep: time.Now(),
	}
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSec)
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > localEntryTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > localEntryTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)
	remaining := max(int(b.limiter.TokensAt(now)), 0)
	l.mu.Unlock()

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  remaining,
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if allowed {
		res.Allowed = 1
	} else {
		res.RetryAfter = interval
	}
	return res
}
