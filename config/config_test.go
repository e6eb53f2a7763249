package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "logbook.db", cfg.Database.DSN)
	assert.Equal(t, 30*time.Second, cfg.Bridge.Timeout)
	assert.Equal(t, 500, cfg.Bridge.MaxPullRows)
	assert.Equal(t, 5*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, "gpt-4o-mini", cfg.Advisor.Model)
	assert.Equal(t, "English", cfg.Advisor.Language)
}

func TestLoad_ExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  rate_limit_per_sec: 50
database:
  driver: postgres
  dsn: "host=db user=logbook dbname=logbook"
bridge:
  url: "https://script.example.com/exec"
  timeout_seconds: 10
  max_pull_rows: 100
sync:
  enabled: true
  interval_seconds: 60
advisor:
  model: gpt-4o
  language: Myanmar
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://script.example.com/exec", cfg.Bridge.URL)
	assert.Equal(t, 10*time.Second, cfg.Bridge.Timeout)
	assert.Equal(t, 100, cfg.Bridge.MaxPullRows)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, time.Minute, cfg.Sync.Interval)
	assert.Equal(t, "gpt-4o", cfg.Advisor.Model)
	assert.Equal(t, "Myanmar", cfg.Advisor.Language)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
