// Package session manages authenticated sessions against a Helix Core
// server: connection establishment with bounded retry, credential
// dispatch, a process-wide login cache keyed by user, and
// interpretation of ticket status output.
//
// The package never speaks the wire protocol; it drives a p4.Conn
// obtained from an injected p4.Dialer. A Helper owns its connection
// exclusively and is not safe for concurrent use, while the login
// Cache is shared safely across any number of Helpers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/helixkit/p4session/internal/logger"
	"github.com/helixkit/p4session/internal/telemetry"
	"github.com/helixkit/p4session/pkg/credentials"
	"github.com/helixkit/p4session/pkg/p4"
)

// Options configures a Helper. Only Dialer is required.
type Options struct {
	// Dialer establishes the underlying connection.
	Dialer p4.Dialer

	// Retry bounds dial retries. The zero value selects
	// DefaultRetryConfig; pass an explicit RetryConfig with
	// MaxRetries 0 and a non-zero BackoffBase to disable retries.
	Retry RetryConfig

	// Cache is the login cache to consult. Nil selects the shared
	// DefaultCache.
	Cache *Cache

	// Listener receives free-text diagnostics. Nil routes them to
	// the structured logger.
	Listener Listener

	// Metrics records session observability events. Nil disables
	// recording.
	Metrics Metrics

	// TrustEmptyStatus treats a blank login status line as "logged
	// in" without caching. Some older servers answer a valid session
	// with empty output; leave this off unless you run one.
	TrustEmptyStatus bool
}

// Helper is the session facade: one connection, one credential, and
// the operations a job runs against them. Helpers are created
// connected and are not safe for concurrent use; share the Cache, not
// the Helper.
type Helper struct {
	id        string
	cfg       p4.ConnConfig
	cred      credentials.Credential
	conn      p4.Conn
	connector *Connector
	cache     *Cache
	listener  Listener
	metrics   Metrics

	trustEmptyStatus bool
	aborted          atomic.Bool

	// lastStatus holds the most recent login status output for
	// LoginError diagnostics.
	lastStatus string
}

// New dials cfg.Address through opts.Dialer (with retry and
// post-connect setup) and returns a connected Helper for cred.
func New(ctx context.Context, cfg p4.ConnConfig, cred credentials.Credential, opts Options) (*Helper, error) {
	if cred == nil {
		return nil, errors.New("session: credential required")
	}
	if opts.Dialer == nil {
		return nil, errors.New("session: dialer required")
	}
	if cfg.Address == "" {
		return nil, errors.New("session: server address required")
	}
	if cfg.User == "" {
		cfg.User = cred.User()
	}

	retry := opts.Retry
	if retry == (RetryConfig{}) {
		retry = DefaultRetryConfig()
	}
	cache := opts.Cache
	if cache == nil {
		cache = DefaultCache()
	}
	listener := opts.Listener
	if listener == nil {
		listener = loggerListener{}
	}

	h := &Helper{
		id:               uuid.New().String(),
		cfg:              cfg,
		cred:             cred,
		cache:            cache,
		listener:         listener,
		metrics:          opts.Metrics,
		trustEmptyStatus: opts.TrustEmptyStatus,
	}
	h.connector = &Connector{
		Dialer:   opts.Dialer,
		Retry:    retry,
		Progress: &progressAdapter{aborted: &h.aborted},
		Command:  commandLogger{listener: listener},
		Listener: listener,
		Metrics:  opts.Metrics,
	}

	conn, err := h.connector.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	h.conn = conn

	logger.Info("session established",
		logger.SessionID(h.id),
		logger.User(cred.User()),
		logger.Address(cfg.Address),
		logger.CredType(string(cred.Type())),
	)
	return h, nil
}

// Login authenticates the session's credential and verifies the
// result. Already-valid sessions (cached or server-confirmed) return
// immediately without re-authenticating. A verification that still
// shows no session returns a *LoginError carrying the server's status
// output.
func (h *Helper) Login(ctx context.Context) error {
	if h.Aborted() {
		return ErrAborted
	}
	if h.conn == nil {
		return ErrNotConnected
	}

	ctx, span := telemetry.StartLoginSpan(ctx, h.cred.User(), string(h.cred.Type()))
	defer span.End()
	start := time.Now()

	h.conn.SetUser(h.cred.User())

	unicode, err := h.conn.SupportsUnicode()
	if err != nil {
		return fmt.Errorf("detect unicode mode: %w", err)
	}
	if unicode {
		if err := h.conn.SetCharset("utf8"); err != nil {
			return fmt.Errorf("set charset: %w", err)
		}
	}

	ok, err := h.IsLoggedIn(ctx)
	if err != nil {
		h.recordLogin(false, start)
		return err
	}
	if ok {
		h.recordLogin(true, start)
		return nil
	}

	if err := h.applyCredential(ctx); err != nil {
		telemetry.RecordError(ctx, err)
		h.recordLogin(false, start)
		return err
	}

	// Re-check through the cache: this verifies the credential took
	// and performs the post-login cache write.
	ok, err = h.IsLoggedIn(ctx)
	if err != nil {
		h.recordLogin(false, start)
		return err
	}
	if !ok {
		lerr := &LoginError{User: h.cred.User(), Status: h.lastStatus}
		h.listener.Log(fmt.Sprintf("P4: login failed '%s'", lerr.Status))
		telemetry.RecordError(ctx, lerr)
		h.recordLogin(false, start)
		return lerr
	}

	logger.Info("login succeeded",
		logger.SessionID(h.id),
		logger.User(h.cred.User()),
		logger.CredType(string(h.cred.Type())),
		logger.Duration(start),
	)
	h.recordLogin(true, start)
	return nil
}

// IsLoggedIn reports whether the session's user currently holds a
// valid login, consulting the shared cache before querying the
// server.
func (h *Helper) IsLoggedIn(ctx context.Context) (bool, error) {
	if h.conn == nil {
		return false, ErrNotConnected
	}

	queried := false
	ok, err := h.cache.Check(ctx, h.cred.User(), h.cred.CacheMargin(), h.cred.CacheEnabled(),
		func(ctx context.Context) (Status, error) {
			queried = true
			return h.queryStatus(ctx)
		})
	if err != nil {
		return false, err
	}
	h.recordCacheLookup(ok && !queried)
	return ok, nil
}

// Logout ends the server session when one is active and drops the
// user's cache entry so later checks see the logout.
func (h *Helper) Logout(ctx context.Context) error {
	if h.conn == nil {
		return ErrNotConnected
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanLogout)
	defer span.End()
	telemetry.SetAttributes(ctx, telemetry.UserAttr(h.cred.User()))

	ok, err := h.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := h.conn.Logout(ctx); err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("logout: %w", err)
	}

	h.cache.Invalidate(h.cred.User())
	if h.metrics != nil {
		h.metrics.RecordLogout()
		h.metrics.RecordInvalidation("logout")
	}
	logger.Info("logged out", logger.SessionID(h.id), logger.User(h.cred.User()))
	return nil
}

// Ticket logs in and returns the connection's auth ticket.
// Best-effort: every failure is logged and reported as an absent
// ticket, never as an error.
func (h *Helper) Ticket(ctx context.Context) (string, bool) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanTicket)
	defer span.End()

	if err := h.Login(ctx); err != nil {
		logger.Warn("auth ticket unavailable",
			logger.SessionID(h.id),
			logger.User(h.cred.User()),
			logger.Err(err),
		)
		return "", false
	}
	ticket := h.conn.AuthTicket()
	if ticket == "" {
		return "", false
	}
	return ticket, true
}

// Trust establishes trust with an SSL server fingerprint and returns
// the server's trust message.
func (h *Helper) Trust(ctx context.Context) (string, error) {
	if h.conn == nil {
		return "", ErrNotConnected
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanTrust)
	defer span.End()

	msg, err := h.conn.Trust(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return "", fmt.Errorf("establish trust: %w", err)
	}
	return msg, nil
}

// CheckVersion reports whether the server release is at least min,
// both in compact YYYYR form (20092 for 2009.2).
func (h *Helper) CheckVersion(min int) bool {
	return h.ServerVersion() >= min
}

// ServerVersion returns the connected server's release in compact
// YYYYR form, or 0 when unknown.
func (h *Helper) ServerVersion() int {
	if h.conn == nil {
		return 0
	}
	return h.conn.ServerVersion()
}

// Unicode reports whether the server runs in unicode mode.
// Best-effort: detection failures read as false.
func (h *Helper) Unicode() bool {
	if h.conn == nil {
		return false
	}
	unicode, err := h.conn.SupportsUnicode()
	if err != nil {
		logger.Debug("unicode detection failed", logger.SessionID(h.id), logger.Err(err))
		return false
	}
	return unicode
}

// Connected reports whether the underlying connection is usable.
func (h *Helper) Connected() bool {
	return h.conn != nil && h.conn.Connected()
}

// User returns the user this session authenticates.
func (h *Helper) User() string { return h.cred.User() }

// ID returns the session's identifier, used to correlate log lines.
func (h *Helper) ID() string { return h.id }

// Conn exposes the underlying connection for callers that need to
// run commands on the authenticated session.
func (h *Helper) Conn() p4.Conn { return h.conn }

// Abort requests cooperative cancellation: Login refuses to start and
// in-flight commands stop at their next progress tick.
func (h *Helper) Abort() {
	h.aborted.Store(true)
	logger.Info("session abort requested", logger.SessionID(h.id), logger.User(h.cred.User()))
}

// Aborted reports whether Abort was called.
func (h *Helper) Aborted() bool {
	return h.aborted.Load()
}

// Disconnect closes the connection best-effort. The Helper is
// unusable afterwards except for Aborted and ID.
func (h *Helper) Disconnect() {
	if h.conn == nil {
		return
	}
	h.connector.Disconnect(h.conn)
	h.conn = nil
	logger.Debug("session closed", logger.SessionID(h.id))
}

func (h *Helper) recordLogin(success bool, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordLogin(string(h.cred.Type()), success, time.Since(start))
}

func (h *Helper) recordCacheLookup(hit bool) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordCacheLookup(hit)
}
