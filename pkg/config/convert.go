package config

import (
	"fmt"

	"github.com/helixkit/p4session/internal/logger"
	"github.com/helixkit/p4session/internal/telemetry"
	"github.com/helixkit/p4session/pkg/credentials"
	"github.com/helixkit/p4session/pkg/p4"
	"github.com/helixkit/p4session/pkg/session"
)

// ConnConfig builds the connection parameters for the configured server.
func (c *Config) ConnConfig() p4.ConnConfig {
	return p4.ConnConfig{
		Address:     c.Server.Address,
		User:        c.Server.User,
		Charset:     c.Server.Charset,
		TicketsFile: c.Server.TicketsFile,
		IgnoreFile:  c.Server.IgnoreFile,
	}
}

// Credential builds the credential selected by the auth section. The
// session section's caching knobs are applied as credential options.
func (c *Config) Credential() (credentials.Credential, error) {
	var opts []credentials.Option
	if c.Session.Life > 0 {
		opts = append(opts, credentials.WithCacheMargin(c.Session.Life))
	}
	if c.Session.NoCache {
		opts = append(opts, credentials.WithoutCache())
	}

	switch credentials.Type(c.Auth.Method) {
	case credentials.TypePassword:
		return credentials.NewPassword(c.Server.User, c.Auth.Password, c.Auth.AllHosts, opts...), nil
	case credentials.TypeTicket:
		return credentials.NewTicket(c.Server.User, c.Auth.Ticket, opts...), nil
	case credentials.TypeTicketPath:
		return credentials.NewTicketPath(c.Server.User, c.Auth.TicketPath, opts...), nil
	default:
		return nil, fmt.Errorf("unknown auth method %q", c.Auth.Method)
	}
}

// RetryConfig builds the session retry policy.
func (c *Config) RetryConfig() session.RetryConfig {
	return session.RetryConfig{
		MaxRetries:  c.Retry.MaxRetries,
		BackoffBase: c.Retry.BackoffBase,
		MaxBackoff:  c.Retry.MaxBackoff,
	}
}

// LoggerConfig builds the logger configuration.
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TracingConfig builds the OpenTelemetry tracing configuration.
func (c *Config) TracingConfig() telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: c.Telemetry.ServiceVersion,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// ProfilerConfig builds the Pyroscope profiling configuration, sharing
// the tracing section's service identity.
func (c *Config) ProfilerConfig() telemetry.ProfilingConfig {
	return telemetry.ProfilingConfig{
		Enabled:        c.Telemetry.Profiling.Enabled,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: c.Telemetry.ServiceVersion,
		Endpoint:       c.Telemetry.Profiling.Endpoint,
		ProfileTypes:   c.Telemetry.Profiling.ProfileTypes,
	}
}
