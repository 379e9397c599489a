package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for programming and lifecycle failures.
var (
	// ErrUnsupportedCredential reports a credential type the
	// dispatcher does not know. This is a programming error in the
	// embedding application, not a recoverable condition.
	ErrUnsupportedCredential = errors.New("unsupported credential type")

	// ErrAborted reports that the session was cooperatively aborted.
	ErrAborted = errors.New("session aborted")

	// ErrNotConnected reports an operation on a disconnected session.
	ErrNotConnected = errors.New("not connected")
)

// ConnectError reports that every dial attempt against a server
// failed. It is fatal: the caller cannot proceed without a
// connection.
type ConnectError struct {
	// Address is the server address that could not be reached.
	Address string

	// Attempts is the number of dial attempts made.
	Attempts int

	// Err is the error from the last attempt.
	Err error
}

// Error implements error.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect to %s failed after %d attempts: %v", e.Address, e.Attempts, e.Err)
}

// Unwrap returns the last attempt's error.
func (e *ConnectError) Unwrap() error { return e.Err }

// LoginError reports that authentication completed without producing
// a valid session. It is recoverable: the caller may retry with
// corrected credentials. Status carries the server's reported login
// status so the operator can see why.
type LoginError struct {
	// User is the user that failed to authenticate.
	User string

	// Status is the server's login status output, possibly empty.
	Status string
}

// Error implements error.
func (e *LoginError) Error() string {
	if e.Status == "" {
		return fmt.Sprintf("login failed for user %s", e.User)
	}
	return fmt.Sprintf("login failed for user %s: %s", e.User, e.Status)
}

// ExpiryParseError reports a ticket status line that announced an
// expiry but did not match the expected format. It is surfaced rather
// than swallowed: treating an unparseable lifetime as "logged in"
// would poison the session cache.
type ExpiryParseError struct {
	// Line is the offending status line.
	Line string

	// Err is the underlying parse failure, if any.
	Err error
}

// Error implements error.
func (e *ExpiryParseError) Error() string {
	return fmt.Sprintf("unparseable ticket expiry %q", e.Line)
}

// Unwrap returns the underlying parse failure.
func (e *ExpiryParseError) Unwrap() error { return e.Err }
