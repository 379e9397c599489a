package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTicketsFile(t *testing.T, path string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestTicketsWatcherStartMissingFile(t *testing.T) {
	w := NewTicketsWatcher(filepath.Join(t.TempDir(), "missing"), "perforce:1666", time.Minute, nil)
	assert.Error(t, w.Start())
}

func TestTicketsWatcherDetectsRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4tickets.txt")
	writeTicketsFile(t, path,
		"perforce:1666=alice:AAAA1111",
		"perforce:1666=bob:BBBB2222",
		"other:1666=carol:CCCC3333",
	)

	var mu sync.Mutex
	var invalidated []string
	w := NewTicketsWatcher(path, "ssl:perforce:1666", 10*time.Millisecond, func(user string) {
		mu.Lock()
		invalidated = append(invalidated, user)
		mu.Unlock()
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// Rotate alice's ticket and drop bob; carol belongs to another
	// server and must stay untouched.
	writeTicketsFile(t, path,
		"perforce:1666=alice:AAAA9999",
		"other:1666=carol:CCCC3333",
	)
	// Force a modification-time change; write granularity on some
	// filesystems is coarser than this test.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(invalidated) == 2
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"alice", "bob"}, invalidated)
}

func TestTicketsWatcherIgnoresUntouchedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4tickets.txt")
	writeTicketsFile(t, path, "perforce:1666=alice:AAAA1111")

	var mu sync.Mutex
	count := 0
	w := NewTicketsWatcher(path, "perforce:1666", 10*time.Millisecond, func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, count)
}

func TestTicketsWatcherNewUserNotInvalidated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4tickets.txt")
	writeTicketsFile(t, path, "perforce:1666=alice:AAAA1111")

	var mu sync.Mutex
	var invalidated []string
	w := NewTicketsWatcher(path, "perforce:1666", 10*time.Millisecond, func(user string) {
		mu.Lock()
		invalidated = append(invalidated, user)
		mu.Unlock()
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// A user appearing for the first time has no cached session to
	// invalidate.
	writeTicketsFile(t, path,
		"perforce:1666=alice:AAAA1111",
		"perforce:1666=dave:DDDD4444",
	)
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, invalidated)
}

func TestTicketsWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p4tickets.txt")
	writeTicketsFile(t, path, "perforce:1666=alice:AAAA1111")

	w := NewTicketsWatcher(path, "perforce:1666", time.Minute, nil)
	require.NoError(t, w.Start())

	assert.NotPanics(t, func() {
		w.Stop()
		w.Stop()
	})
}
