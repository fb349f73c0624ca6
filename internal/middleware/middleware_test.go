// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elyterrax/marketplace-api/internal/access"
	"github.com/elyterrax/marketplace-api/internal/audit"
	"github.com/elyterrax/marketplace-api/internal/config"
	"github.com/elyterrax/marketplace-api/internal/core"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded first entry", "198.51.100.7, 10.0.0.1", "10.0.0.2", "10.0.0.3:4000", "198.51.100.7"},
		{"real ip", "", "198.51.100.8", "10.0.0.3:4000", "198.51.100.8"},
		{"remote addr", "", "", "198.51.100.9:5555", "198.51.100.9"},
		{"remote without port", "", "", "198.51.100.10", "198.51.100.10"},
		{"blank forwarded falls through", " , 10.0.0.1", "", "198.51.100.11:1", "198.51.100.11"},
		{"nothing", "", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func withViewer(v *access.Viewer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), v)))
	})
}

func TestRequireRole(t *testing.T) {
	guard := RequireRole(access.RoleInvestor, access.RoleBuyer)(http.HandlerFunc(ok))

	tests := []struct {
		name   string
		viewer *access.Viewer
		want   int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"developer", &access.Viewer{ID: "d", Role: access.RoleDeveloper}, http.StatusForbidden},
		{"investor", &access.Viewer{ID: "i", Role: access.RoleInvestor}, http.StatusOK},
		{"buyer", &access.Viewer{ID: "b", Role: access.RoleBuyer}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := guard
			if tt.viewer != nil {
				h = withViewer(tt.viewer, guard)
			}
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

type stubResolver map[string]*access.Viewer

func (s stubResolver) ResolveViewer(_ context.Context, id string) (*access.Viewer, error) {
	v, ok := s[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	return v, nil
}

func withUserID(id string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), &AccessTokenClaims{UserID: id})))
	})
}

func TestLoadViewer(t *testing.T) {
	resolver := stubResolver{
		"u-1": {ID: "u-1", Role: access.RoleDeveloper, Tier: "elite"},
	}

	var seen *access.Viewer
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetViewer(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	load := LoadViewer(resolver)(capture)

	rec := httptest.NewRecorder()
	withUserID("u-1", load).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "elite", seen.Tier)

	seen = nil
	rec = httptest.NewRecorder()
	load.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)

	rec = httptest.NewRecorder()
	withUserID("gone", load).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	cors := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	})(http.HandlerFunc(ok))

	r := httptest.NewRequest(http.MethodOptions, "/v1/projects", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	cors.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))

	r = httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	cors.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(_ context.Context, token string) (*AccessTokenClaims, error) {
	if token != "good" {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}
	return &AccessTokenClaims{UserID: "u-9", Role: "investor"}, nil
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Record(e audit.Entry) bool {
	r.entries = append(r.entries, e)
	return true
}

func TestAuditCapturesSubject(t *testing.T) {
	rec := &recorder{}
	h := Audit(rec)(Authenticator(stubVerifier{})(http.HandlerFunc(ok)))

	r := httptest.NewRequest(http.MethodPost, "/v1/leads", nil)
	r.Header.Set("Authorization", "Bearer good")
	r.Header.Set("X-Forwarded-For", "198.51.100.20")
	h.ServeHTTP(httptest.NewRecorder(), r)

	r = httptest.NewRequest(http.MethodPost, "/v1/leads", nil)
	r.Header.Set("Authorization", "Bearer bad")
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.Len(t, rec.entries, 2)

	first := rec.entries[0]
	require.NotNil(t, first.UserID)
	assert.Equal(t, "u-9", *first.UserID)
	assert.Equal(t, "198.51.100.20", first.IPAddress)
	assert.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "/v1/leads", first.Endpoint)

	second := rec.entries[1]
	assert.Nil(t, second.UserID)
	assert.Equal(t, http.StatusUnauthorized, second.StatusCode)
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"Bearer abc":       "abc",
		"bearer   abc  ":   "abc",
		"Basic dXNlcjpwdw": "",
		"Bearer":           "",
	}
	for header, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, bearerToken(r), header)
	}
}

func TestOptionalAuthLeavesBadTokensAnonymous(t *testing.T) {
	var userID string
	h := OptionalAuth(stubVerifier{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	for token, want := range map[string]string{"good": "u-9", "bad": ""} {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, userID)
	}
}
