package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CLARIO_LLM_PROVIDER", "CLARIO_DB", "CLARIO_BANK", "CLARIO_LOG_LEVEL",
		"CLARIO_LOG_FORMAT", "CLARIO_ADDR", "CLARIO_REDIS_URL", "CLARIO_SEARCH_URL",
		"CLARIO_RESULTS_TRANSPORT", "CLARIO_RESULTS_TOPIC", "CLARIO_KAFKA_BROKERS",
		"CLARIO_GRACE_POLICY", "CLARIO_AUGMENT", "CLARIO_SESSION_TTL",
		"CLARIO_GENERATION_ATTEMPTS", "CLARIO_LLM_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
session:
  grace: 5s
  grace_policy: terminate
integrity:
  violation_cap: 3
server:
  addr: 127.0.0.1:9000
log:
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Session.Grace)
	assert.Equal(t, session.GraceTerminate, cfg.Session.GracePolicy)
	assert.Equal(t, 3, cfg.Integrity.ViolationCap)
	assert.Equal(t, 2, cfg.Integrity.ModeExitCap, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.Session.Size)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NotEmpty(t, cfg.Generation.Validators, "validator chain is not configurable from YAML")
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeFile(t, "config.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default().Session, cfg.Session)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.yaml", "sesion:\n  size: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sesion")
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"grace policy", "session:\n  grace_policy: ignore\n"},
		{"zero cap", "integrity:\n  mode_exit_cap: 0\n"},
		{"provider", "llm:\n  provider: nobody\n"},
		{"kafka without brokers", "results:\n  transport: kafka\n"},
		{"log level", "log:\n  level: loud\n"},
		{"empty composition", "session:\n  composition: {beginner: 0, intermediate: 0, advanced: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeFile(t, "config.yaml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", "server:\n  addr: :9000\n")
	t.Setenv("CLARIO_ADDR", ":7000")
	t.Setenv("CLARIO_GRACE_POLICY", "terminate")
	t.Setenv("CLARIO_KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CLARIO_RESULTS_TRANSPORT", "kafka")
	t.Setenv("CLARIO_AUGMENT", "true")
	t.Setenv("CLARIO_SESSION_TTL", "1m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, session.GraceTerminate, cfg.Session.GracePolicy)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Results.KafkaBrokers)
	assert.True(t, cfg.Augment.Enabled)
	assert.Equal(t, time.Minute, cfg.Server.SessionTTL)
}

func TestLoad_MalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLARIO_SESSION_TTL", "soon")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLARIO_SESSION_TTL")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already set, so the
	// key must be absent rather than empty.
	os.Unsetenv("CLARIO_LOG_LEVEL")
	t.Cleanup(func() { os.Unsetenv("CLARIO_LOG_LEVEL") })

	env := writeFile(t, ".env", "CLARIO_LOG_LEVEL=debug\n")
	cfg, err := Load("", env, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("CLARIO_CONFIG", "/etc/clario.yaml")
	assert.Equal(t, "/etc/clario.yaml", DefaultPath())

	t.Setenv("CLARIO_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "clario", "config.yaml"), DefaultPath())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "clario", entry["service"])

	buf.Reset()
	NewLogger(LogConfig{Level: "debug", Format: "text"}, &buf).Debug("visible")
	assert.Contains(t, buf.String(), "msg=visible")
}
