//go:build !windows

package terminal

import (
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

type state struct {
	canonical unix.Termios
}

// enableCBreak disables line buffering and echo, signals like Ctrl-C keep working.
func enableCBreak(fd uintptr) (*state, error) {
	st := &state{}
	if err := termios.Tcgetattr(fd, &st.canonical); err != nil {
		return nil, err
	}

	cbreak := st.canonical
	termios.Cfmakecbreak(&cbreak)
	if err := termios.Tcsetattr(fd, termios.TCSANOW, &cbreak); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *state) restore(fd uintptr) error {
	if err := termios.Tcflush(fd, termios.TCIFLUSH); err != nil {
		return err
	}
	return termios.Tcsetattr(fd, termios.TCSANOW, &s.canonical)
}
