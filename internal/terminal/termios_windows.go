package terminal

import "errors"

type state struct{}

func enableCBreak(uintptr) (*state, error) {
	return nil, errors.New("terminal mode switching is not supported on windows")
}

func (s *state) restore(uintptr) error {
	return nil
}
