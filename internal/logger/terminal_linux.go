//go:build linux

package logger

import (
	"os"
	"syscall"
	"unsafe"
)

const ioctlTCGETS = 0x5401

// isTerminal reports whether the file is attached to an interactive
// terminal, used to decide whether colored output is safe to emit.
func isTerminal(f *os.File) bool {
	var termios syscall.Termios
	_, _, err := syscall.Syscall6(
		syscall.SYS_IOCTL,
		f.Fd(),
		ioctlTCGETS,
		uintptr(unsafe.Pointer(&termios)),
		0, 0, 0,
	)
	return err == 0
}
