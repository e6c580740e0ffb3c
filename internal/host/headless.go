package host

import "github.com/retroenv/retrochip8/internal/keypad"

// Headless is a frontend without input and output, used to run a fixed number
// of frames.
type Headless struct{}

// Keys returns no pressed keys.
func (Headless) Keys() keypad.State {
	return keypad.State{}
}

// Commands returns no commands.
func (Headless) Commands() <-chan Command {
	return nil
}

// Render discards the frame.
func (Headless) Render(Frame) error {
	return nil
}

// Beep does nothing.
func (Headless) Beep(bool) {}
