package config

import (
	"os"
	"strings"
	"time"
)

const (
	defaultServerAddress = "perforce:1666"
	defaultAuthMethod    = "ticketpath"
	defaultMetricsPort   = 9090
	defaultPollInterval  = 60 * time.Second
	defaultMaxRetries    = 3
	defaultBackoffBase   = time.Second
	defaultMaxBackoff    = time.Minute
)

// ApplyDefaults fills every unset field with its default value. Called
// by Load after unmarshaling; safe to call on hand-built configs too.
func (c *Config) ApplyDefaults() {
	c.applyLoggingDefaults()
	c.applyTelemetryDefaults()
	c.applyMetricsDefaults()
	c.applyServerDefaults()
	c.applyAuthDefaults()
	c.applySessionDefaults()
	c.applyRetryDefaults()
}

func (c *Config) applyLoggingDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}
}

func (c *Config) applyTelemetryDefaults() {
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "p4session"
	}
	if c.Telemetry.ServiceVersion == "" {
		c.Telemetry.ServiceVersion = "dev"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4317"
	}
	// Tracing with a zero sample rate records nothing; disable via
	// enabled instead.
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.Profiling.Endpoint == "" {
		c.Telemetry.Profiling.Endpoint = "http://localhost:4040"
	}
}

func (c *Config) applyMetricsDefaults() {
	if c.Metrics.Port == 0 {
		c.Metrics.Port = defaultMetricsPort
	}
}

func (c *Config) applyServerDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = defaultServerAddress
	}
	if c.Server.User == "" {
		c.Server.User = defaultUser()
	}
}

// defaultUser mirrors the p4 client's P4USER resolution: explicit
// P4USER first, then the operating system account name.
func defaultUser() string {
	if user := os.Getenv("P4USER"); user != "" {
		return user
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return os.Getenv("USERNAME")
}

func (c *Config) applyAuthDefaults() {
	if c.Auth.Method == "" {
		c.Auth.Method = defaultAuthMethod
	}
	c.Auth.Method = strings.ToLower(c.Auth.Method)
}

func (c *Config) applySessionDefaults() {
	if c.Session.TicketPollInterval == 0 {
		c.Session.TicketPollInterval = defaultPollInterval
	}
}

func (c *Config) applyRetryDefaults() {
	// MaxRetries 0 is a valid setting (single attempt), so the count
	// default applies only when the whole section was omitted.
	if c.Retry == (RetryConfig{}) {
		c.Retry.MaxRetries = defaultMaxRetries
	}
	if c.Retry.BackoffBase == 0 {
		c.Retry.BackoffBase = defaultBackoffBase
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = defaultMaxBackoff
	}
}

// GetDefaultConfig returns a fully defaulted configuration.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
