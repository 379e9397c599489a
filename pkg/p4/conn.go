// Package p4 defines the transport boundary between the session
// library and a Helix Core server connection. The library never
// speaks the wire protocol itself; it drives a Conn supplied by the
// embedding application, which keeps protocol concerns (RPC framing,
// SSL, compression) out of session management entirely.
package p4

import (
	"context"
	"runtime"
)

// Conn is a single established connection to a Helix Core server. A
// Conn is exclusively owned by one session operation at a time;
// implementations are not required to be safe for concurrent use.
type Conn interface {
	// SetUser sets the user name subsequent commands run as.
	SetUser(name string)

	// User returns the currently configured user name.
	User() string

	// SupportsUnicode reports whether the server runs in unicode
	// mode and requires a client charset.
	SupportsUnicode() (bool, error)

	// SetCharset sets the client charset for unicode servers.
	SetCharset(name string) error

	// Login authenticates the configured user with password. When
	// allHosts is true the issued ticket is valid from any host.
	Login(ctx context.Context, password string, allHosts bool) error

	// Logout invalidates the current ticket on the server.
	Logout(ctx context.Context) error

	// LoginStatus runs a ticket status query and returns the raw
	// status lines exactly as the server produced them.
	LoginStatus(ctx context.Context) ([]string, error)

	// AuthTicket returns the in-memory auth ticket for the current
	// user, or "" when none is held.
	AuthTicket() string

	// SetAuthTicket installs an auth ticket for the current user.
	SetAuthTicket(ticket string)

	// TicketsFile returns the path of the tickets file in use.
	TicketsFile() string

	// SetTicketsFile points the connection at a tickets file.
	SetTicketsFile(path string)

	// Trust establishes trust with an SSL server fingerprint and
	// returns the server's trust message.
	Trust(ctx context.Context) (string, error)

	// ServerVersion returns the server release as a compact integer,
	// 20092 for release 2009.2. Zero means unknown.
	ServerVersion() int

	// SetIgnoreFile sets the ignore file name applied to add/sync.
	SetIgnoreFile(name string)

	// IgnoreFile returns the configured ignore file name.
	IgnoreFile() string

	// RegisterProgress installs a progress callback. A nil progress
	// removes the current one.
	RegisterProgress(p Progress)

	// RegisterListener installs a command listener. A nil listener
	// removes the current one.
	RegisterListener(l CommandListener)

	// Connected reports whether the connection is usable.
	Connected() bool

	// Disconnect closes the connection. The Conn is unusable
	// afterwards.
	Disconnect(ctx context.Context) error
}

// ConnConfig carries the parameters a Dialer needs to establish a
// connection.
type ConnConfig struct {
	// Address is the server address in P4PORT syntax, for example
	// "ssl:perforce.example.com:1666".
	Address string

	// User is the initial user name for the connection.
	User string

	// Charset is the client charset for unicode servers. Empty
	// selects utf8 when the server requires one.
	Charset string

	// TicketsFile overrides the default tickets file path.
	TicketsFile string

	// IgnoreFile overrides the platform default ignore file name.
	IgnoreFile string
}

// Dialer establishes connections to a Helix Core server.
type Dialer interface {
	// Dial establishes a connection. Implementations should honor
	// ctx cancellation while dialing.
	Dial(ctx context.Context, cfg ConnConfig) (Conn, error)
}

// DialFunc adapts a function to the Dialer interface.
type DialFunc func(ctx context.Context, cfg ConnConfig) (Conn, error)

// Dial implements Dialer.
func (f DialFunc) Dial(ctx context.Context, cfg ConnConfig) (Conn, error) {
	return f(ctx, cfg)
}

var _ Dialer = DialFunc(nil)

// DefaultIgnoreFile returns the platform-conventional ignore file
// name: "p4ignore.txt" on Windows, ".p4ignore" elsewhere.
func DefaultIgnoreFile() string {
	if runtime.GOOS == "windows" {
		return "p4ignore.txt"
	}
	return ".p4ignore"
}
