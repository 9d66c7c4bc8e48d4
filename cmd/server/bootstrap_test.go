package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charlesng35/fleetcn/internal/app"
)

func testRuntimeConfig() *app.Config {
	return &app.Config{
		Database: app.DatabaseConfig{Driver: "sqlite"},
		Auth:     app.AuthConfig{JWT: app.JWTSettings{Secret: "bootstrap-secret"}},
		Maintenance: app.MaintenanceConfig{
			Expiry:             app.ExpiryConfig{Enabled: true, Schedule: "@daily", WarnDays: 30},
			AuditRetentionDays: 90,
		},
		Notifications: app.NotificationConfig{Enabled: true},
		Monitoring:    app.MonitoringConfig{Health: app.HealthConfig{Enabled: true}},
	}
}

func TestBootstrapRuntimeServesHealth(t *testing.T) {
	stack, err := bootstrapRuntime(context.Background(), testRuntimeConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.NotNil(t, stack.Hub)
	require.NotNil(t, stack.Scheduler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	stack.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestBootstrapRuntimeWithoutNotifications(t *testing.T) {
	cfg := testRuntimeConfig()
	cfg.Notifications.Enabled = false

	stack, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stack.Shutdown(context.Background(), zap.NewNop()) })

	require.Nil(t, stack.Hub)
}

func TestBootstrapRuntimeRejectsInvalidSchedule(t *testing.T) {
	cfg := testRuntimeConfig()
	cfg.Maintenance.Expiry.Schedule = "every other tuesday"

	_, err := bootstrapRuntime(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestLoadApplicationConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600))

	cfg, err := loadApplicationConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Server.Port)

	_, err = loadApplicationConfig(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
