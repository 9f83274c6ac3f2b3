// Package terminal implements the display surface (D): raw writes to
// the output endpoint, prompt/line repainting, and pagination, plus the
// raw-mode terminal control the core needs on construction. Grounded in
// render/terminal.go and its linux/darwin ioctl split.
package terminal

import (
	"os"

	"golang.org/x/sys/unix"
)

// RawMode records a file descriptor's original termios so it can be
// restored, and toggles non-canonical, no-echo, no-signal mode (spec
// §5): input is delivered a byte at a time, never echoed by the
// kernel, and Ctrl-C arrives as byte 0x03 rather than SIGINT.
type RawMode struct {
	fd       int
	original unix.Termios
	altered  bool
}

// NewRawMode captures fd's current termios without changing it.
func NewRawMode(f *os.File) (*RawMode, error) {
	fd := int(f.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	return &RawMode{fd: fd, original: *termios}, nil
}

// Enter puts the terminal into raw mode.
func (r *RawMode) Enter() error {
	raw := r.original
	raw.Iflag &^= unix.BRKINT | unix.ICRNL | unix.INPCK | unix.ISTRIP | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Cflag |= unix.CS8
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.IEXTEN | unix.ISIG
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(r.fd, ioctlSetTermios, &raw); err != nil {
		return err
	}
	r.altered = true
	return nil
}

// Restore returns the terminal to the attributes captured at
// NewRawMode. Safe to call even if Enter was never called or already
// restored.
func (r *RawMode) Restore() error {
	if !r.altered {
		return nil
	}
	r.altered = false
	return unix.IoctlSetTermios(r.fd, ioctlSetTermios, &r.original)
}

// WindowSize returns the terminal's column and row count via
// TIOCGWINSZ. ok is false when the descriptor is not a TTY (e.g. piped
// input), in which case callers fall back to flat, unpaginated output.
func WindowSize(f *os.File) (cols, rows int, ok bool) {
	ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, false
	}
	return int(ws.Col), int(ws.Row), true
}
