package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDependency struct {
	enabled bool
	err     error
}

func (s stubDependency) Enabled() bool                { return s.enabled }
func (s stubDependency) Ping(_ context.Context) error { return s.err }

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]Dependency
		wantStatus int
		wantDeps   map[string]any
	}{
		{
			name:       "all healthy",
			deps:       map[string]Dependency{"postgres": stubDependency{enabled: true}},
			wantStatus: fiber.StatusOK,
			wantDeps:   map[string]any{"postgres": "ok"},
		},
		{
			name:       "disabled dependency does not fail readiness",
			deps:       map[string]Dependency{"redis": stubDependency{}},
			wantStatus: fiber.StatusOK,
			wantDeps:   map[string]any{"redis": "disabled"},
		},
		{
			name: "unreachable dependency",
			deps: map[string]Dependency{
				"postgres": stubDependency{enabled: true},
				"redis":    stubDependency{enabled: true, err: errors.New("connection refused")},
			},
			wantStatus: fiber.StatusServiceUnavailable,
			wantDeps:   map[string]any{"postgres": "ok", "redis": "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", NewHealthHandler("complaint-service", "test", tt.deps).Ready)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			deps := body["dependencies"]
			if tt.wantStatus != fiber.StatusOK {
				errBody := body["error"].(map[string]any)
				assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
				deps = errBody["details"]
			}
			assert.Equal(t, tt.wantDeps, deps)
		})
	}
}
