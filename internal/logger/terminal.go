//go:build darwin

package logger

import (
	"os"
	"syscall"
	"unsafe"
)

// isTerminal reports whether the file is attached to an interactive
// terminal, used to decide whether colored output is safe to emit.
func isTerminal(f *os.File) bool {
	var termios syscall.Termios
	_, _, err := syscall.Syscall6(
		syscall.SYS_IOCTL,
		f.Fd(),
		syscall.TIOCGETA,
		uintptr(unsafe.Pointer(&termios)),
		0, 0, 0,
	)
	return err == 0
}
