package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixkit/p4session/internal/logger"
	"github.com/helixkit/p4session/internal/telemetry"
	"github.com/helixkit/p4session/pkg/p4"
)

// RetryConfig bounds connection retry behavior. Retries apply only to
// dialing; authentication is never retried.
type RetryConfig struct {
	// MaxRetries is the number of additional dial attempts after the
	// first failure, so MaxRetries+1 attempts total.
	MaxRetries uint

	// BackoffBase scales the delay before retry n, which waits
	// BackoffBase * n².
	BackoffBase time.Duration

	// MaxBackoff caps the delay between attempts. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the standard retry bounds: three
// retries, one second base, one minute cap.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BackoffBase: time.Second,
		MaxBackoff:  time.Minute,
	}
}

// backoff returns the delay before retry attempt n (1-based). The
// delay grows quadratically and is capped at MaxBackoff.
func (rc RetryConfig) backoff(attempt int) time.Duration {
	base := rc.BackoffBase
	if base <= 0 {
		base = time.Second
	}
	d := time.Duration(attempt*attempt) * base
	if rc.MaxBackoff > 0 && d > rc.MaxBackoff {
		d = rc.MaxBackoff
	}
	return d
}

// Connector establishes configured connections with bounded retry.
// Only Dialer is required; everything else degrades to sensible
// defaults.
type Connector struct {
	// Dialer establishes raw connections.
	Dialer p4.Dialer

	// Retry bounds dial retries. The zero value means no retries and
	// one-second backoff.
	Retry RetryConfig

	// Progress, when non-nil, is registered on every new connection.
	Progress p4.Progress

	// Command, when non-nil, is registered on every new connection.
	Command p4.CommandListener

	// Listener receives free-text retry diagnostics. Nil routes to
	// the structured logger.
	Listener Listener

	// Metrics records connect outcomes. Nil disables recording.
	Metrics Metrics
}

// Connect dials cfg.Address with up to Retry.MaxRetries+1 attempts,
// sleeping a quadratically growing delay between attempts, then runs
// post-connect setup. Context cancellation during backoff is
// terminal. Setup failures disconnect and return without retry.
func (c *Connector) Connect(ctx context.Context, cfg p4.ConnConfig) (p4.Conn, error) {
	if c.Dialer == nil {
		return nil, errors.New("session: Connector requires a Dialer")
	}

	ctx, span := telemetry.StartConnectSpan(ctx, cfg.Address, cfg.User)
	defer span.End()

	start := time.Now()
	listener := c.listener()

	var conn p4.Conn
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= int(c.Retry.MaxRetries); attempt++ {
		if attempt > 0 {
			delay := c.Retry.backoff(attempt)
			listener.Log(fmt.Sprintf("P4: Connection retry: %d", attempt))
			logger.Debug("connection retry scheduled",
				logger.Address(cfg.Address),
				logger.Attempt(attempt),
				logger.Backoff(delay),
			)
			select {
			case <-ctx.Done():
				err := &ConnectError{Address: cfg.Address, Attempts: attempts, Err: ctx.Err()}
				telemetry.RecordError(ctx, err)
				c.recordConnect(attempts, false, start)
				return nil, err
			case <-time.After(delay):
			}
		}

		attempts++
		conn, lastErr = c.Dialer.Dial(ctx, cfg)
		if lastErr == nil {
			break
		}
		logger.Warn("connection attempt failed",
			logger.Address(cfg.Address),
			logger.Attempt(attempts),
			logger.Err(lastErr),
		)
	}

	if lastErr != nil {
		err := &ConnectError{Address: cfg.Address, Attempts: attempts, Err: lastErr}
		listener.Log(fmt.Sprintf("P4: Unable to connect to %s", cfg.Address))
		telemetry.RecordError(ctx, err)
		c.recordConnect(attempts, false, start)
		return nil, err
	}

	if err := c.setup(conn, cfg); err != nil {
		c.Disconnect(conn)
		telemetry.RecordError(ctx, err)
		c.recordConnect(attempts, false, start)
		return nil, err
	}

	telemetry.SetAttributes(ctx, telemetry.ConnectAttemptsAttr(attempts))
	logger.Info("connected",
		logger.Address(cfg.Address),
		logger.User(cfg.User),
		logger.Attempt(attempts),
		logger.ServerVersion(conn.ServerVersion()),
	)
	c.recordConnect(attempts, true, start)
	return conn, nil
}

// setup applies post-connect configuration: charset on unicode
// servers, callbacks, and the platform ignore file when none is set.
func (c *Connector) setup(conn p4.Conn, cfg p4.ConnConfig) error {
	unicode, err := conn.SupportsUnicode()
	if err != nil {
		return fmt.Errorf("detect unicode mode: %w", err)
	}
	if unicode {
		charset := cfg.Charset
		if charset == "" {
			charset = "utf8"
		}
		if err := conn.SetCharset(charset); err != nil {
			return fmt.Errorf("set charset %q: %w", charset, err)
		}
	}

	if c.Progress != nil {
		conn.RegisterProgress(c.Progress)
	}
	if c.Command != nil {
		conn.RegisterListener(c.Command)
	}

	if conn.IgnoreFile() == "" {
		name := cfg.IgnoreFile
		if name == "" {
			name = p4.DefaultIgnoreFile()
		}
		conn.SetIgnoreFile(name)
	}
	return nil
}

// Disconnect closes conn best-effort. Failures are logged, never
// propagated.
func (c *Connector) Disconnect(conn p4.Conn) {
	if conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Disconnect(ctx); err != nil {
		logger.Warn("disconnect failed", logger.Err(err))
	}
}

func (c *Connector) listener() Listener {
	if c.Listener != nil {
		return c.Listener
	}
	return loggerListener{}
}

func (c *Connector) recordConnect(attempts int, success bool, start time.Time) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.RecordConnect(attempts, success, time.Since(start))
}
