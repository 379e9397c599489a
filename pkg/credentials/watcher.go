package credentials

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/helixkit/p4session/internal/logger"
)

// defaultPollInterval is how often the watcher checks the tickets
// file for changes.
const defaultPollInterval = 60 * time.Second

// TicketsWatcher monitors a tickets file for ticket rotation and
// reports users whose ticket value changed or disappeared, so cached
// sessions for those users can be invalidated.
//
// The file is polled by modification time rather than watched with
// inotify: ticket updates replace the file atomically (write to temp,
// rename), and a poll survives the rename where a per-inode watch
// does not.
type TicketsWatcher struct {
	path       string
	address    string
	interval   time.Duration
	invalidate func(user string)

	stopCh chan struct{}

	mu      sync.Mutex
	lastMod time.Time
	tickets map[string]string // user -> ticket value
}

// NewTicketsWatcher creates a watcher for the tickets file at path,
// tracking tickets issued for the server at address. Each rotated or
// removed user is passed to invalidate. A non-positive interval
// selects the default of one minute.
func NewTicketsWatcher(path, address string, interval time.Duration, invalidate func(user string)) *TicketsWatcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &TicketsWatcher{
		path:       path,
		address:    address,
		interval:   interval,
		invalidate: invalidate,
		stopCh:     make(chan struct{}),
	}
}

// Start snapshots the current tickets and begins polling. The file
// must exist and be readable.
func (w *TicketsWatcher) Start() error {
	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("stat tickets file: %w", err)
	}

	entries, err := ReadTicketsFile(w.path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.lastMod = info.ModTime()
	w.tickets = w.snapshot(entries)
	w.mu.Unlock()

	logger.Debug("tickets watcher started",
		logger.Path(w.path),
		logger.KeyPollInterval, w.interval,
	)

	go w.pollLoop()
	return nil
}

// Stop terminates the polling loop. Safe to call more than once.
func (w *TicketsWatcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}

func (w *TicketsWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.checkAndDiff()
		case <-w.stopCh:
			logger.Debug("tickets watcher stopped", logger.Path(w.path))
			return
		}
	}
}

// checkAndDiff re-reads the file when its modification time moved and
// invalidates every user whose ticket changed.
func (w *TicketsWatcher) checkAndDiff() {
	info, err := os.Stat(w.path)
	if err != nil {
		// A missing file between rotations is transient; the next
		// poll sees the replacement.
		logger.Debug("tickets file unavailable", logger.Path(w.path), logger.Err(err))
		return
	}

	w.mu.Lock()
	unchanged := info.ModTime().Equal(w.lastMod)
	w.mu.Unlock()
	if unchanged {
		return
	}

	entries, err := ReadTicketsFile(w.path)
	if err != nil {
		logger.Warn("tickets file reload failed", logger.Path(w.path), logger.Err(err))
		return
	}

	current := w.snapshot(entries)

	w.mu.Lock()
	previous := w.tickets
	w.tickets = current
	w.lastMod = info.ModTime()
	w.mu.Unlock()

	for user, oldValue := range previous {
		if current[user] != oldValue {
			logger.Info("ticket rotated, invalidating cached session",
				logger.User(user),
				logger.Path(w.path),
			)
			if w.invalidate != nil {
				w.invalidate(user)
			}
		}
	}
}

// snapshot reduces entries to the user→ticket map for the watched
// server address.
func (w *TicketsWatcher) snapshot(entries []TicketEntry) map[string]string {
	out := make(map[string]string, len(entries))
	want := StripProtocol(w.address)
	for _, e := range entries {
		if StripProtocol(e.Address) == want {
			out[e.User] = e.Value
		}
	}
	return out
}
