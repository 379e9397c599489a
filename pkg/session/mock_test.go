package session

import (
	"context"
	"errors"
	"sync"

	"github.com/helixkit/p4session/pkg/p4"
)

// ==========================================================================
// Test doubles
// ==========================================================================

// fakeConn implements p4.Conn with scriptable responses and call
// counting. Safe for concurrent use so cache-level tests can share
// one.
type fakeConn struct {
	mu sync.Mutex

	user        string
	unicode     bool
	unicodeErr  error
	charset     string
	charsetErr  error
	authTicket  string
	ticketsFile string
	ignoreFile  string
	version     int
	connected   bool

	// statusScript is consumed one element per LoginStatus call; the
	// last element repeats once the script runs out.
	statusScript  [][]string
	statusCursor  int
	statusErr     error
	loginErr      error
	logoutErr     error
	trustMsg      string
	trustErr      error
	disconnectErr error

	loginCalls    int
	lastPassword  string
	lastAllHosts  bool
	logoutCalls   int
	statusCalls   int
	trustCalls    int
	disconnects   int
	progress      p4.Progress
	cmdListener   p4.CommandListener
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		version:   20201,
		connected: true,
	}
}

// scriptStatus replaces the LoginStatus script.
func (c *fakeConn) scriptStatus(responses ...[]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusScript = responses
	c.statusCursor = 0
}

func (c *fakeConn) SetUser(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = name
}

func (c *fakeConn) User() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *fakeConn) SupportsUnicode() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unicode, c.unicodeErr
}

func (c *fakeConn) SetCharset(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.charsetErr != nil {
		return c.charsetErr
	}
	c.charset = name
	return nil
}

func (c *fakeConn) Login(_ context.Context, password string, allHosts bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loginCalls++
	c.lastPassword = password
	c.lastAllHosts = allHosts
	return c.loginErr
}

func (c *fakeConn) Logout(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logoutCalls++
	return c.logoutErr
}

func (c *fakeConn) LoginStatus(context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCalls++
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	if len(c.statusScript) == 0 {
		return []string{"Perforce password (P4PASSWD) invalid or unset."}, nil
	}
	lines := c.statusScript[c.statusCursor]
	if c.statusCursor < len(c.statusScript)-1 {
		c.statusCursor++
	}
	return lines, nil
}

func (c *fakeConn) AuthTicket() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authTicket
}

func (c *fakeConn) SetAuthTicket(ticket string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authTicket = ticket
}

func (c *fakeConn) TicketsFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticketsFile
}

func (c *fakeConn) SetTicketsFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticketsFile = path
}

func (c *fakeConn) Trust(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trustCalls++
	return c.trustMsg, c.trustErr
}

func (c *fakeConn) ServerVersion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *fakeConn) SetIgnoreFile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ignoreFile = name
}

func (c *fakeConn) IgnoreFile() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ignoreFile
}

func (c *fakeConn) RegisterProgress(p p4.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress = p
}

func (c *fakeConn) RegisterListener(l p4.CommandListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cmdListener = l
}

func (c *fakeConn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) Disconnect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects++
	c.connected = false
	return c.disconnectErr
}

var _ p4.Conn = (*fakeConn)(nil)

// fakeDialer implements p4.Dialer, failing a configurable number of
// dials before handing out its fakeConn.
type fakeDialer struct {
	mu       sync.Mutex
	conn     *fakeConn
	failures int   // transient failures before success
	dialErr  error // permanent failure when set
	dials    int
	lastCfg  p4.ConnConfig
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{conn: newFakeConn()}
}

func (d *fakeDialer) Dial(_ context.Context, cfg p4.ConnConfig) (p4.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	d.lastCfg = cfg
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	if d.failures > 0 {
		d.failures--
		return nil, errors.New("dial tcp: connection refused")
	}
	d.conn.mu.Lock()
	d.conn.connected = true
	d.conn.mu.Unlock()
	return d.conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

var _ p4.Dialer = (*fakeDialer)(nil)

// collectListener records free-text lines for assertions.
type collectListener struct {
	mu    sync.Mutex
	lines []string
}

func (l *collectListener) Log(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *collectListener) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

var _ Listener = (*collectListener)(nil)
