package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/roster-engine/internal/platform/logging"
)

func TestShouldTraceRequest(t *testing.T) {
	for _, path := range []string{"/healthz", "/health", "/livez", "/readyz", " /HEALTHZ "} {
		require.False(t, shouldTraceRequest(path), path)
	}
	for _, path := range []string{"/v1/teams/team-bricklayers", "/v1/leagues/demo-hoops-2026/draft", "/", "/docs"} {
		require.True(t, shouldTraceRequest(path), path)
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	h := RequestLogging(logging.NewNop(), http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams/team-bricklayers", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/team-bricklayers", nil)
	req.Header.Set(requestIDHeader, "edge-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "edge-42", rec.Header().Get(requestIDHeader))
}

func TestRequireInternalJobToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name       string
		configured string
		sent       string
		want       int
	}{
		{"not configured", "", "anything", http.StatusServiceUnavailable},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"wrong token", "secret", "secreT", http.StatusUnauthorized},
		{"match", "secret", " secret ", http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/bootstrap", nil)
			if tc.sent != "" {
				req.Header.Set(internalJobTokenHeader, tc.sent)
			}
			rec := httptest.NewRecorder()
			RequireInternalJobToken(tc.configured, ok).ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
		})
	}
}
