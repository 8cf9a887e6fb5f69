package api

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("TEMPORAL_DISABLED", "")
	t.Setenv("ADMIN_LOGIN", "")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SEED_ORDERS", "")
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "admin", cfg.AdminLogin)
	assert.True(t, cfg.SeedOrders)
	assert.False(t, cfg.TemporalDisabled)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, "orders-api", cfg.Telemetry.ServiceName)
	assert.Equal(t, "local", cfg.Telemetry.Environment)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ADMIN_LOGIN", "ops")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("TEMPORAL_DISABLED", "yes")
	t.Setenv("SEED_ORDERS", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "ops", cfg.AdminLogin)
	assert.True(t, cfg.TemporalDisabled)
	assert.False(t, cfg.SeedOrders)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing password", env: map[string]string{"ADMIN_PASSWORD": ""}},
		{name: "bad port", env: map[string]string{"ADMIN_PASSWORD": "x", "PORT": "http"}},
		{name: "bad seed flag", env: map[string]string{"ADMIN_PASSWORD": "x", "PORT": "8080", "SEED_ORDERS": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_TelemetryFromEnvironment(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Telemetry.Environment)
	assert.Equal(t, slog.LevelWarn, cfg.Telemetry.LogLevel)

	t.Setenv("LOG_LEVEL", "loud")
	_, err = LoadConfig()
	require.Error(t, err)
}
