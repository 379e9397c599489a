package session

import (
	"fmt"
	"sync/atomic"

	"github.com/helixkit/p4session/internal/logger"
	"github.com/helixkit/p4session/pkg/p4"
)

// Listener receives free-text diagnostic lines about session
// activity, the kind an operator watches in a job log. Structured
// logging happens separately; the Listener is the human-facing
// channel the embedding application renders however it likes.
type Listener interface {
	Log(line string)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(line string)

// Log implements Listener.
func (f ListenerFunc) Log(line string) { f(line) }

var _ Listener = ListenerFunc(nil)

// loggerListener is the default Listener: it forwards lines to the
// structured logger at info level.
type loggerListener struct{}

func (loggerListener) Log(line string) { logger.Info(line) }

// progressAdapter bridges connection progress callbacks onto the
// cooperative abort flag: once the session is aborted, Tick returns
// false and the running command stops at its next safe point.
type progressAdapter struct {
	aborted *atomic.Bool
}

// Start implements p4.Progress.
func (*progressAdapter) Start(string) {}

// Tick implements p4.Progress.
func (p *progressAdapter) Tick(string, int64) bool {
	return !p.aborted.Load()
}

// Stop implements p4.Progress.
func (*progressAdapter) Stop(string) {}

var _ p4.Progress = (*progressAdapter)(nil)

// commandLogger echoes command lifecycle events to the Listener so
// job logs show what ran and for how long.
type commandLogger struct {
	listener Listener
}

// Issuing implements p4.CommandListener.
func (c commandLogger) Issuing(_ int, command string) {
	c.listener.Log("... p4 " + command)
}

// Completed implements p4.CommandListener.
func (c commandLogger) Completed(_ int, millis int64) {
	c.listener.Log(fmt.Sprintf("... completed in %dms", millis))
}

var _ p4.CommandListener = commandLogger{}
