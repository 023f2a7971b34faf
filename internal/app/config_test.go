package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)

	require.True(t, cfg.Reminders.Enabled)
	require.Equal(t, time.Minute, cfg.Reminders.PollInterval)
	require.Equal(t, 24*time.Hour, cfg.Reminders.Lookahead)
	require.Equal(t, 7, cfg.Reminders.RetentionDays)
	require.Equal(t, "@hourly", cfg.Reminders.SweepSchedule)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug
reminders:
  poll_interval: 30s
  retention_days: 14
database:
  driver: postgres
  postgres:
    host: db.internal
    username: eventra
    database: eventra
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, 30*time.Second, cfg.Reminders.PollInterval)
	require.Equal(t, 14, cfg.Reminders.RetentionDays)

	dbCfg := cfg.DatabaseOpenConfig()
	require.Equal(t, "postgres", dbCfg.Driver)
	require.Equal(t, "db.internal", dbCfg.Host)
	require.Equal(t, "eventra", dbCfg.User)
}

func TestDatabaseOpenConfigSQLiteFallback(t *testing.T) {
	cfg := &Config{}
	dbCfg := cfg.DatabaseOpenConfig()
	require.Equal(t, "sqlite", dbCfg.Driver)
}
