// Package credentials defines the credential variants a session can
// authenticate with and the store collaborator that supplies them.
// Credentials are immutable once constructed; secrets never appear in
// String() output or logs.
package credentials

import (
	"time"
)

// Type identifies a credential variant.
type Type string

// Known credential types.
const (
	TypePassword   Type = "password"
	TypeTicket     Type = "ticket"
	TypeTicketPath Type = "ticketpath"
)

// Credential is the common view over all credential variants. The
// session layer dispatches on the concrete type; unknown
// implementations are rejected at dispatch time rather than silently
// ignored.
type Credential interface {
	// Type returns the variant tag.
	Type() Type

	// User returns the user name this credential authenticates.
	User() string

	// CacheMargin returns the safety margin subtracted from ticket
	// lifetimes before a cached session counts as live.
	CacheMargin() time.Duration

	// CacheEnabled reports whether login results for this credential
	// may be served from the session cache.
	CacheEnabled() bool
}

// Base carries the fields shared by every variant.
type Base struct {
	user    string
	margin  time.Duration
	noCache bool
}

// User implements Credential.
func (b Base) User() string { return b.user }

// CacheMargin implements Credential.
func (b Base) CacheMargin() time.Duration { return b.margin }

// CacheEnabled implements Credential.
func (b Base) CacheEnabled() bool { return !b.noCache }

// Option adjusts the shared credential fields at construction.
type Option func(*Base)

// WithCacheMargin sets the safety margin subtracted from ticket
// lifetimes. Negative margins are treated as zero.
func WithCacheMargin(d time.Duration) Option {
	return func(b *Base) {
		if d < 0 {
			d = 0
		}
		b.margin = d
	}
}

// WithoutCache disables session caching for this credential; every
// login check queries the server.
func WithoutCache() Option {
	return func(b *Base) { b.noCache = true }
}

func newBase(user string, opts []Option) Base {
	b := Base{user: user}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Password authenticates with a plain password via the server's login
// exchange.
type Password struct {
	Base
	password string
	allHosts bool
}

// NewPassword builds a password credential. When allHosts is true the
// issued ticket is requested to be valid from any client host.
func NewPassword(user, password string, allHosts bool, opts ...Option) *Password {
	return &Password{
		Base:     newBase(user, opts),
		password: password,
		allHosts: allHosts,
	}
}

// Type implements Credential.
func (*Password) Type() Type { return TypePassword }

// Password returns the secret.
func (p *Password) Password() string { return p.password }

// AllHosts reports whether the ticket should be valid from any host.
func (p *Password) AllHosts() bool { return p.allHosts }

// String redacts the password.
func (p *Password) String() string { return "password credential for " + p.user }

// Ticket authenticates with a pre-issued ticket value installed
// directly on the connection.
type Ticket struct {
	Base
	value string
}

// NewTicket builds a ticket credential from a raw ticket value.
func NewTicket(user, value string, opts ...Option) *Ticket {
	return &Ticket{
		Base:  newBase(user, opts),
		value: value,
	}
}

// Type implements Credential.
func (*Ticket) Type() Type { return TypeTicket }

// Value returns the raw ticket value.
func (t *Ticket) Value() string { return t.value }

// String redacts the ticket value.
func (t *Ticket) String() string { return "ticket credential for " + t.user }

// TicketPath authenticates via a tickets file on disk. An empty Path
// keeps the connection's current tickets file.
type TicketPath struct {
	Base
	path string
}

// NewTicketPath builds a tickets-file credential.
func NewTicketPath(user, path string, opts ...Option) *TicketPath {
	return &TicketPath{
		Base: newBase(user, opts),
		path: path,
	}
}

// Type implements Credential.
func (*TicketPath) Type() Type { return TypeTicketPath }

// Path returns the tickets file path, possibly empty.
func (t *TicketPath) Path() string { return t.path }

// String identifies the credential without reading the file.
func (t *TicketPath) String() string { return "tickets file credential for " + t.user }

var (
	_ Credential = (*Password)(nil)
	_ Credential = (*Ticket)(nil)
	_ Credential = (*TicketPath)(nil)
)
