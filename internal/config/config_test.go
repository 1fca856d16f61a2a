package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:8000", cfg.ListenAddr())
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "睡眠", cfg.Journal.SleepTitle)
	assert.Equal(t, 20, cfg.Journal.PageSize)
	assert.Equal(t, 14, cfg.Journal.TabulateDays)
	assert.Error(t, cfg.Validate(), "default config has no secret")
}

func TestLoadMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoadYAML(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  bind: 0.0.0.0
  port: 9001
auth:
  secret: s3cret
  token_ttl: 12h
journal:
  sleep_title: sleep
  page_size: 50
  tabulate_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9001", cfg.ListenAddr())
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "sleep", cfg.Journal.SleepTitle)
	assert.Equal(t, 50, cfg.Journal.PageSize)
	assert.Equal(t, 7, cfg.Journal.TabulateDays)
	// Untouched keys keep defaults.
	assert.Equal(t, "lifelog_session", cfg.Auth.CookieName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadBadYAML(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIFELOG_PORT", "7000")
	t.Setenv("LIFELOG_SECRET", "from-env")
	t.Setenv("LIFELOG_DEBUG", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.True(t, cfg.Log.Debug)
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIFELOG_PORT", "eighty")

	_, err := Load("")
	assert.Error(t, err)
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LIFELOG_SECRET=dotenv-secret\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("LIFELOG_SECRET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.Auth.Secret)
}
