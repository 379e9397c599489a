// Package config loads, validates, and persists p4session configuration.
//
// Configuration is read from a YAML file, with every key overridable
// through P4SESSION_-prefixed environment variables (dots become
// underscores, so server.user is P4SESSION_SERVER_USER). Durations are
// written as Go duration strings ("30s", "5m") in hand-edited files;
// numeric values are taken as nanoseconds.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/helixkit/p4session/internal/logger"
)

// Config is the root configuration for a p4session deployment.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" json:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server" json:"server"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth" json:"auth"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session" json:"session"`
	Retry     RetryConfig     `mapstructure:"retry" yaml:"retry" json:"retry"`
}

// LoggingConfig controls log level, format, and destination.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is text or json.
	Format string `mapstructure:"format" yaml:"format" json:"format" validate:"omitempty,oneof=text json"`
	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output" json:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and continuous profiling.
type TelemetryConfig struct {
	Enabled        bool            `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	ServiceName    string          `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	ServiceVersion string          `mapstructure:"service_version" yaml:"service_version" json:"service_version"`
	// Endpoint is the OTLP gRPC collector address (host:port).
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure" json:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" json:"sample_rate" validate:"gte=0,lte=1"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling" json:"profiling"`
}

// ProfilingConfig controls the Pyroscope profiling agent.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Endpoint is the Pyroscope server URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	// ProfileTypes selects the profiles to collect; empty enables the
	// default set (cpu, alloc, inuse).
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types,omitempty" json:"profile_types,omitempty"`
}

// MetricsConfig gates Prometheus metrics collection.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	// Port is where the embedding application should expose /metrics.
	Port int `mapstructure:"port" yaml:"port" json:"port" validate:"min=0,max=65535"`
}

// ServerConfig identifies the Perforce server and connection identity.
type ServerConfig struct {
	// Address is the server address in P4PORT form, e.g. "ssl:perforce:1666".
	Address string `mapstructure:"address" yaml:"address" json:"address" validate:"required"`
	// User is the Perforce user the session authenticates as.
	User string `mapstructure:"user" yaml:"user" json:"user" validate:"required"`
	// Charset applies only to unicode-enabled servers; empty means utf8.
	Charset string `mapstructure:"charset" yaml:"charset,omitempty" json:"charset,omitempty"`
	// TicketsFile overrides the client's P4TICKETS location.
	TicketsFile string `mapstructure:"tickets_file" yaml:"tickets_file,omitempty" json:"tickets_file,omitempty"`
	// IgnoreFile overrides the client's P4IGNORE name.
	IgnoreFile string `mapstructure:"ignore_file" yaml:"ignore_file,omitempty" json:"ignore_file,omitempty"`
}

// AuthConfig selects the credential presented at login.
type AuthConfig struct {
	// Method is one of password, ticket, ticketpath.
	Method string `mapstructure:"method" yaml:"method" json:"method" validate:"required,oneof=password ticket ticketpath"`
	// Password is required when method is password.
	Password string `mapstructure:"password" yaml:"password,omitempty" json:"password,omitempty"`
	// AllHosts requests a host-unlocked ticket on password login.
	AllHosts bool `mapstructure:"all_hosts" yaml:"all_hosts" json:"all_hosts"`
	// Ticket is required when method is ticket.
	Ticket string `mapstructure:"ticket" yaml:"ticket,omitempty" json:"ticket,omitempty"`
	// TicketPath is the tickets file for the ticketpath method; empty
	// falls back to the connection's own tickets file.
	TicketPath string `mapstructure:"ticket_path" yaml:"ticket_path,omitempty" json:"ticket_path,omitempty"`
}

// SessionConfig tunes login caching behavior.
type SessionConfig struct {
	// Life is the safety margin subtracted from ticket lifetimes before
	// a cached login is considered expired.
	Life time.Duration `mapstructure:"life" yaml:"life" json:"life" validate:"min=0"`
	// NoCache forces a server round trip on every login check.
	NoCache bool `mapstructure:"no_cache" yaml:"no_cache" json:"no_cache"`
	// TrustEmptyStatus treats an empty login status reply as
	// authenticated. Compatibility switch for pre-2013 servers.
	TrustEmptyStatus bool `mapstructure:"trust_empty_status" yaml:"trust_empty_status" json:"trust_empty_status"`
	// TicketPollInterval is how often ticket files are re-read for
	// external rotation.
	TicketPollInterval time.Duration `mapstructure:"ticket_poll_interval" yaml:"ticket_poll_interval" json:"ticket_poll_interval" validate:"min=0"`
}

// RetryConfig tunes connection retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries uint `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	// BackoffBase scales the quadratic backoff between attempts.
	BackoffBase time.Duration `mapstructure:"backoff_base" yaml:"backoff_base" json:"backoff_base" validate:"min=0"`
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration `mapstructure:"max_backoff" yaml:"max_backoff" json:"max_backoff" validate:"min=0"`
}

// Load reads configuration from the given path. An empty path searches
// the default locations ($XDG_CONFIG_HOME/p4session, ~/.config/p4session,
// then the working directory). A missing file is not an error: defaults
// and environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, path)

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for program startup: on failure it logs the error
// with guidance and exits.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		logger.Error("failed to load configuration", logger.Err(err))
		logger.Error("run with a valid config file or set P4SESSION_* environment variables")
		os.Exit(1)
	}
	return cfg
}

func setupViper(v *viper.Viper, path string) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(getConfigDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("P4SESSION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerDefaults(v)
}

// registerDefaults seeds viper with every known key. Environment
// overrides only bind to keys viper has seen, so each leaf is listed
// even when the default is the zero value.
func registerDefaults(v *viper.Viper) {
	def := GetDefaultConfig()

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.service_name", def.Telemetry.ServiceName)
	v.SetDefault("telemetry.service_version", def.Telemetry.ServiceVersion)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", def.Telemetry.SampleRate)
	v.SetDefault("telemetry.profiling.enabled", def.Telemetry.Profiling.Enabled)
	v.SetDefault("telemetry.profiling.endpoint", def.Telemetry.Profiling.Endpoint)
	v.SetDefault("telemetry.profiling.profile_types", def.Telemetry.Profiling.ProfileTypes)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.port", def.Metrics.Port)

	v.SetDefault("server.address", def.Server.Address)
	v.SetDefault("server.user", def.Server.User)
	v.SetDefault("server.charset", def.Server.Charset)
	v.SetDefault("server.tickets_file", def.Server.TicketsFile)
	v.SetDefault("server.ignore_file", def.Server.IgnoreFile)

	v.SetDefault("auth.method", def.Auth.Method)
	v.SetDefault("auth.password", def.Auth.Password)
	v.SetDefault("auth.all_hosts", def.Auth.AllHosts)
	v.SetDefault("auth.ticket", def.Auth.Ticket)
	v.SetDefault("auth.ticket_path", def.Auth.TicketPath)

	v.SetDefault("session.life", def.Session.Life)
	v.SetDefault("session.no_cache", def.Session.NoCache)
	v.SetDefault("session.trust_empty_status", def.Session.TrustEmptyStatus)
	v.SetDefault("session.ticket_poll_interval", def.Session.TicketPollInterval)

	v.SetDefault("retry.max_retries", def.Retry.MaxRetries)
	v.SetDefault("retry.backoff_base", def.Retry.BackoffBase)
	v.SetDefault("retry.max_backoff", def.Retry.MaxBackoff)
}

func readConfigFile(v *viper.Viper, path string) error {
	err := v.ReadInConfig()
	if err == nil {
		logger.Debug("loaded configuration file", logger.Path(v.ConfigFileUsed()))
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || os.IsNotExist(err) {
		logger.Debug("no configuration file found, using defaults")
		return nil
	}
	if path != "" {
		return fmt.Errorf("read configuration %s: %w", path, err)
	}
	return fmt.Errorf("read configuration: %w", err)
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// SaveConfig writes the configuration as YAML with owner-only
// permissions, since auth sections may carry secrets.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write configuration %s: %w", path, err)
	}
	return nil
}

// DefaultConfigPath returns the preferred location for the config file.
func DefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "p4session")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "p4session")
}
