package p4

// Progress receives coarse progress updates while a command streams
// results. Tick returning false asks the server to abort the command
// at the next safe point, which is how cooperative cancellation
// reaches long-running transfers.
type Progress interface {
	// Start is called once when a command begins producing output.
	Start(key string)

	// Tick is called per progress quantum. Returning false requests
	// the command be cancelled.
	Tick(key string, units int64) bool

	// Stop is called once when the command finishes or aborts.
	Stop(key string)
}

// CommandListener observes command lifecycle events on a connection.
// Listeners must not block; they run on the connection's command
// path.
type CommandListener interface {
	// Issuing is called before a command is sent to the server.
	Issuing(key int, command string)

	// Completed is called after the server finishes a command, with
	// the elapsed wall time in milliseconds.
	Completed(key int, millis int64)
}
