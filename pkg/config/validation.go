package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helixkit/p4session/pkg/credentials"
)

// Validate checks the configuration for structural and cross-field
// errors. It expects defaults to have been applied already.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := c.validateAuth(); err != nil {
		return err
	}
	return c.validateTelemetry()
}

// validateAuth enforces that the selected method carries its secret.
// The ticketpath method allows an empty path: it falls back to the
// connection's tickets file.
func (c *Config) validateAuth() error {
	switch credentials.Type(c.Auth.Method) {
	case credentials.TypePassword:
		if c.Auth.Password == "" {
			return errors.New("invalid configuration: auth.password is required when auth.method is password")
		}
	case credentials.TypeTicket:
		if c.Auth.Ticket == "" {
			return errors.New("invalid configuration: auth.ticket is required when auth.method is ticket")
		}
	case credentials.TypeTicketPath:
	}
	return nil
}

func (c *Config) validateTelemetry() error {
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("invalid configuration: telemetry.endpoint is required when telemetry.enabled is true")
	}
	return nil
}

// formatFieldError turns a validator error into a config-path message,
// e.g. "server.address is required" instead of the Go field namespace.
func formatFieldError(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", path, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", path, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", path, fe.Tag())
	}
}

func fieldPath(namespace string) string {
	path := strings.TrimPrefix(namespace, "Config.")
	parts := strings.Split(path, ".")
	for i, part := range parts {
		parts[i] = camelToSnake(part)
	}
	return strings.Join(parts, ".")
}

// camelToSnake maps Go field names back to their config keys, e.g.
// TicketPollInterval to ticket_poll_interval.
func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
