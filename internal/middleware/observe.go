// AngelaMos | 2026
// observe.go

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/elyterrax/marketplace-api/internal/audit"
	"github.com/elyterrax/marketplace-api/internal/metrics"
)

const subjectKey contextKey = "audit_subject"

// subject is filled in by the authenticators further down the chain, whose
// context values are not visible to this outer middleware.
type subject struct {
	userID string
}

func setSubject(ctx context.Context, userID string) {
	if s, ok := ctx.Value(subjectKey).(*subject); ok {
		s.userID = userID
	}
}

// AuditRecorder accepts request entries without blocking.
type AuditRecorder interface {
	Record(entry audit.Entry) bool
}

// Audit enqueues one entry per request after the response is written.
// A full queue drops the entry; the request is never affected.
func Audit(recorder AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			subj := &subject{}
			r = r.WithContext(context.WithValue(r.Context(), subjectKey, subj))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := audit.Entry{
				Endpoint:   r.URL.Path,
				Method:     r.Method,
				IPAddress:  ClientIP(r),
				UserAgent:  UserAgent(r),
				StatusCode: status,
				DurationMS: time.Since(start).Milliseconds(),
				RequestID:  GetRequestID(r.Context()),
				OccurredAt: start,
			}
			if id := subj.userID; id != "" {
				entry.UserID = &id
			}

			recorder.Record(entry)
		})
	}
}

// Metrics observes request duration labelled by the matched chi route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status/100)+"xx").
			Observe(time.Since(start).Seconds())
	})
}
