package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "p4session", cfg.Telemetry.ServiceName)
	assert.Equal(t, "dev", cfg.Telemetry.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.InEpsilon(t, 1.0, cfg.Telemetry.SampleRate, 1e-9)
	assert.Equal(t, "http://localhost:4040", cfg.Telemetry.Profiling.Endpoint)

	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)

	assert.Equal(t, "perforce:1666", cfg.Server.Address)
	assert.Equal(t, "ticketpath", cfg.Auth.Method)

	assert.Equal(t, time.Duration(0), cfg.Session.Life)
	assert.Equal(t, 60*time.Second, cfg.Session.TicketPollInterval)

	assert.Equal(t, uint(3), cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.BackoffBase)
	assert.Equal(t, time.Minute, cfg.Retry.MaxBackoff)
}

func TestApplyDefaults(t *testing.T) {
	t.Run("preserves explicit values", func(t *testing.T) {
		cfg := &Config{}
		cfg.Logging.Level = "debug"
		cfg.Server.Address = "ssl:p4.example.com:1666"
		cfg.Server.User = "alice"
		cfg.Session.TicketPollInterval = 5 * time.Second
		cfg.ApplyDefaults()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "ssl:p4.example.com:1666", cfg.Server.Address)
		assert.Equal(t, "alice", cfg.Server.User)
		assert.Equal(t, 5*time.Second, cfg.Session.TicketPollInterval)
	})

	t.Run("normalizes case", func(t *testing.T) {
		cfg := &Config{}
		cfg.Logging.Level = "DEBUG"
		cfg.Logging.Format = "JSON"
		cfg.Auth.Method = "Password"
		cfg.Auth.Password = "secret"
		cfg.ApplyDefaults()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, "password", cfg.Auth.Method)
	})

	t.Run("keeps explicit zero retries when section is set", func(t *testing.T) {
		cfg := &Config{}
		cfg.Retry.BackoffBase = 2 * time.Second
		cfg.ApplyDefaults()

		assert.Equal(t, uint(0), cfg.Retry.MaxRetries)
		assert.Equal(t, 2*time.Second, cfg.Retry.BackoffBase)
		assert.Equal(t, time.Minute, cfg.Retry.MaxBackoff)
	})

	t.Run("P4USER wins over OS user", func(t *testing.T) {
		t.Setenv("P4USER", "svc-build")
		cfg := &Config{}
		cfg.ApplyDefaults()

		assert.Equal(t, "svc-build", cfg.Server.User)
	})
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("P4SESSION_SERVER_USER", "alice")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "perforce:1666", cfg.Server.Address)
	assert.Equal(t, "alice", cfg.Server.User)
	assert.Equal(t, "ticketpath", cfg.Auth.Method)
}

func TestLoadSearchPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("P4SESSION_SERVER_USER", "alice")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Server.User)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
  format: json
telemetry:
  enabled: true
  endpoint: otel-collector:4317
  sample_rate: 0.25
  profiling:
    enabled: true
    profile_types:
      - cpu
      - goroutines
metrics:
  enabled: true
  port: 2112
server:
  address: ssl:perforce.example.com:1666
  user: alice
  charset: utf8
  tickets_file: /var/p4/tickets
  ignore_file: .p4ignore
auth:
  method: password
  password: hunter2
  all_hosts: true
session:
  life: 5m
  no_cache: true
  trust_empty_status: true
  ticket_poll_interval: 30s
retry:
  max_retries: 5
  backoff_base: 2s
  max_backoff: 90s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "otel-collector:4317", cfg.Telemetry.Endpoint)
	assert.InEpsilon(t, 0.25, cfg.Telemetry.SampleRate, 1e-9)
	assert.True(t, cfg.Telemetry.Profiling.Enabled)
	assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 2112, cfg.Metrics.Port)

	assert.Equal(t, "ssl:perforce.example.com:1666", cfg.Server.Address)
	assert.Equal(t, "alice", cfg.Server.User)
	assert.Equal(t, "utf8", cfg.Server.Charset)
	assert.Equal(t, "/var/p4/tickets", cfg.Server.TicketsFile)
	assert.Equal(t, ".p4ignore", cfg.Server.IgnoreFile)

	assert.Equal(t, "password", cfg.Auth.Method)
	assert.Equal(t, "hunter2", cfg.Auth.Password)
	assert.True(t, cfg.Auth.AllHosts)

	assert.Equal(t, 5*time.Minute, cfg.Session.Life)
	assert.True(t, cfg.Session.NoCache)
	assert.True(t, cfg.Session.TrustEmptyStatus)
	assert.Equal(t, 30*time.Second, cfg.Session.TicketPollInterval)

	assert.Equal(t, uint(5), cfg.Retry.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Retry.BackoffBase)
	assert.Equal(t, 90*time.Second, cfg.Retry.MaxBackoff)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: perforce:1666
  user: bob
auth:
  method: ticketpath
`)

	t.Setenv("P4SESSION_SERVER_USER", "alice")
	t.Setenv("P4SESSION_SESSION_LIFE", "5m")
	t.Setenv("P4SESSION_RETRY_MAX_RETRIES", "7")
	t.Setenv("P4SESSION_TELEMETRY_PROFILING_PROFILE_TYPES", "cpu,goroutines")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Server.User, "environment should override the file")
	assert.Equal(t, 5*time.Minute, cfg.Session.Life)
	assert.Equal(t, uint(7), cfg.Retry.MaxRetries)
	assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)
}

func TestLoadValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: perforce:1666
  user: alice
auth:
  method: password
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.password")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfigFile(t, "{{{ not yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read configuration")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Address = "ssl:perforce.example.com:1666"
	cfg.Server.User = "alice"
	cfg.Auth.Method = "ticket"
	cfg.Auth.Ticket = "ABCDEF0123456789"
	cfg.Session.Life = 5 * time.Minute

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.Address, loaded.Server.Address)
	assert.Equal(t, cfg.Server.User, loaded.Server.User)
	assert.Equal(t, cfg.Auth.Method, loaded.Auth.Method)
	assert.Equal(t, cfg.Auth.Ticket, loaded.Auth.Ticket)
	assert.Equal(t, 5*time.Minute, loaded.Session.Life)
	assert.Equal(t, cfg.Retry.MaxRetries, loaded.Retry.MaxRetries)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/p4session/config.yaml", DefaultConfigPath())
}

func TestJSONSchema(t *testing.T) {
	data, err := JSONSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))

	assert.Equal(t, "https://json-schema.org/draft/2020-12/schema", schema["$schema"])
	assert.Equal(t, "p4session configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema should have properties")
	for _, section := range []string{"logging", "telemetry", "metrics", "server", "auth", "session", "retry"} {
		assert.Contains(t, props, section)
	}
}
