package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "reflectd.db", cfg.Database.Path)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr())
	assert.False(t, cfg.Summarizer.Enabled)
	assert.Equal(t, "gpt-4o-mini", cfg.Summarizer.Model)
	assert.Equal(t, 45*time.Second, cfg.Summarizer.Timeout.Duration())
	assert.Equal(t, 30, cfg.Summarizer.RequestsPerMinute)
	assert.False(t, cfg.Harness.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /var/lib/reflectd/reflections.db
server:
  port: 9999
harness:
  enabled: true
  plan: /etc/reflectd/plan.yaml
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/reflectd/reflections.db", cfg.Database.Path)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset fields keep defaults")
	assert.True(t, cfg.Harness.Enabled)
	assert.Equal(t, "/etc/reflectd/plan.yaml", cfg.Harness.Plan)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o600))

	t.Setenv("REFLECTD_SERVER_PORT", "7070")
	t.Setenv("REFLECTD_SUMMARIZER_BASE_URL", "http://localhost:11434/v1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Summarizer.BaseURL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnabledSummarizerRequiresToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summarizer:\n  enabled: true\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summarizer.token")

	t.Setenv("REFLECTD_SUMMARIZER_TOKEN", "sk-test")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Summarizer.Token.Value())
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("REFLECTD_SERVER_PORT", "99999")
	_, err := Load("")
	assert.Error(t, err)
}

func TestSecret_RedactsInFormatting(t *testing.T) {
	s := Secret("sk-very-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.NotContains(t, []byte(s.String()), []byte("sk-very-secret"))
	assert.Equal(t, "sk-very-secret", s.Value())
	assert.Empty(t, Secret("").String())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
