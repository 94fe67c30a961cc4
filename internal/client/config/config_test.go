package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/videotec/internal/client/session"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	b, err := json.Marshal(data)
	require.NoError(t, err)
	return writeTemp(t, "cfg.json", string(b))
}

// clearEnv unsets every VIDEOTEC_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, EnvPrefix) {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8000", c.Identity.BaseURL)
	assert.Zero(t, c.Identity.RequestTimeout.Duration)
	assert.Equal(t, session.BackendSQLite, c.Session.Backend)
	assert.Equal(t, DefaultScope(), c.Session.Scope)
	assert.Equal(t, "session.db", filepath.Base(c.Session.DSN))
	assert.Equal(t, 12*time.Hour, c.Session.TTL.Duration)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoadConfig_DefaultsOnly(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoadConfig_JSONFile(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, map[string]any{
		"identity": map[string]any{"base_url": "http://api.example", "request_timeout": "10s"},
		"session":  map[string]any{"backend": "memory"},
	})

	cfg, err := LoadConfig([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, "http://api.example", cfg.Identity.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Identity.RequestTimeout.Duration)
	assert.Equal(t, session.BackendMemory, cfg.Session.Backend)
	assert.Equal(t, DefaultScope(), cfg.Session.Scope, "keys absent from the file keep defaults")
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "cfg.yaml", `
identity:
  base_url: http://yaml.example
session:
  backend: redis
  redis_url: redis://cache:6379/1
  ttl: 30m
log:
  level: debug
  format: json
`)

	cfg, err := LoadConfig([]string{"-c", path})
	require.NoError(t, err)

	assert.Equal(t, "http://yaml.example", cfg.Identity.BaseURL)
	assert.Equal(t, session.BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Session.RedisURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL.Duration)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "read config file")

	bad := writeTemp(t, "bad.json", "{not json")
	_, err = LoadConfig([]string{"-c", bad})
	require.ErrorContains(t, err, "parse config file")

	badDuration := writeTempJSON(t, map[string]any{"identity": map[string]any{"request_timeout": "soon"}})
	_, err = LoadConfig([]string{"-c", badDuration})
	require.Error(t, err)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeTempJSON(t, map[string]any{
		"identity": map[string]any{"base_url": "http://file.example"},
	})
	t.Setenv("VIDEOTEC_API_BASE_URL", "http://env.example")
	t.Setenv("VIDEOTEC_SESSION_SCOPE", "env-scope")
	t.Setenv("VIDEOTEC_SESSION_TTL", "1h")
	t.Setenv("VIDEOTEC_REQUEST_TIMEOUT", "5s")
	t.Setenv("VIDEOTEC_LOG_LEVEL", "error")

	cfg, err := LoadConfig([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "http://env.example", cfg.Identity.BaseURL)
	assert.Equal(t, "env-scope", cfg.Session.Scope)
	assert.Equal(t, time.Hour, cfg.Session.TTL.Duration)
	assert.Equal(t, 5*time.Second, cfg.Identity.RequestTimeout.Duration)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_BadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIDEOTEC_SESSION_TTL", "forever")

	_, err := LoadConfig(nil)
	require.ErrorContains(t, err, "parse environment")
}

func TestLoadConfig_FlagsOverrideEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIDEOTEC_API_BASE_URL", "http://env.example")
	t.Setenv("VIDEOTEC_REQUEST_TIMEOUT", "5s")

	cfg, err := LoadConfig([]string{"login", "-a", "http://flag.example", "--scope", "tty7", "-b=memory", "-t", "3", "extra"})
	require.NoError(t, err)

	assert.Equal(t, "http://flag.example", cfg.Identity.BaseURL)
	assert.Equal(t, "tty7", cfg.Session.Scope)
	assert.Equal(t, session.BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 3*time.Second, cfg.Identity.RequestTimeout.Duration)
}

func TestLoadConfig_TimeoutUntouchedWithoutFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv("VIDEOTEC_REQUEST_TIMEOUT", "1500ms")

	cfg, err := LoadConfig([]string{"-a", "http://flag.example"})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.Identity.RequestTimeout.Duration)
}

func TestLoadConfig_BadFlag(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig([]string{"-t", "abc"})
	require.Error(t, err)
}
