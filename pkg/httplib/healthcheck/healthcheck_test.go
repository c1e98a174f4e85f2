package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck_Handler(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	testCases := []struct {
		name   string
		method string
		path   string
		checks map[string]Checker
		want   int
	}{
		{name: "healthy without checks", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{
			name:   "healthy dependency",
			method: http.MethodGet,
			path:   "/health",
			checks: map[string]Checker{"redis": func(context.Context) error { return nil }},
			want:   http.StatusOK,
		},
		{
			name:   "failing dependency",
			method: http.MethodGet,
			path:   "/health",
			checks: map[string]Checker{"redis": func(context.Context) error { return errors.New("down") }},
			want:   http.StatusServiceUnavailable,
		},
		{name: "other path passes through", method: http.MethodGet, path: "/metrics", want: http.StatusTeapot},
		{name: "post passes through", method: http.MethodPost, path: "/health", want: http.StatusTeapot},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hc := HealthCheck{Checks: tc.checks}
			rec := httptest.NewRecorder()
			hc.Handler(next).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
