// AngelaMos | 2026
// context.go

package middleware

import (
	"context"

	"github.com/elyterrax/marketplace-api/internal/access"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ClientIPKey  contextKey = "client_ip"
	ViewerKey    contextKey = "viewer"
)

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// GetViewer returns the viewer loaded for this request, or nil for an
// anonymous caller.
func GetViewer(ctx context.Context) *access.Viewer {
	if v, ok := ctx.Value(ViewerKey).(*access.Viewer); ok {
		return v
	}
	return nil
}

func WithViewer(ctx context.Context, v *access.Viewer) context.Context {
	return context.WithValue(ctx, ViewerKey, v)
}
