package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointConfigAway keeps a config.yaml in the working directory from leaking
// into tests that want pure defaults.
func pointConfigAway(t *testing.T) {
	t.Helper()
	t.Setenv("REQCHECK_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
}

func TestLoad_Defaults(t *testing.T) {
	pointConfigAway(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Security.AccessSecret)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, int64(16*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 100000, cfg.Upload.MaxRows)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 256, cfg.Session.MaxSessions)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverrides(t *testing.T) {
	pointConfigAway(t)
	t.Setenv("REQCHECK_SERVER_PORT", "9090")
	t.Setenv("REQCHECK_SECURITY_ACCESS_SECRET", "shared-secret")
	t.Setenv("REQCHECK_LOGGING_LEVEL", "debug")
	t.Setenv("REQCHECK_SESSION_TTL", "45m")
	t.Setenv("REQCHECK_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "shared-secret", cfg.Security.AccessSecret)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Debug)
}

func TestLoad_FileFillsUnsetValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 3000
security:
  access_secret: from-file
logging:
  level: warn
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("REQCHECK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Security.AccessSecret)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0o644))
	t.Setenv("REQCHECK_CONFIG", path)
	t.Setenv("REQCHECK_SERVER_PORT", "4000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad log level", key: "REQCHECK_LOGGING_LEVEL", value: "verbose"},
		{name: "bad log output", key: "REQCHECK_LOGGING_OUTPUT", value: "syslog"},
		{name: "port out of range", key: "REQCHECK_SERVER_PORT", value: "70000"},
		{name: "zero max rows", key: "REQCHECK_UPLOAD_MAX_ROWS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pointConfigAway(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
