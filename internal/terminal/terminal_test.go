package terminal

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTerminal(t *testing.T) (*Terminal, *bytes.Buffer, *time.Time) {
	t.Helper()
	buf := &bytes.Buffer{}
	term := New(log.NewTestLogger(t), nil, buf)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	term.now = func() time.Time { return now }
	return term, buf, &now
}

func TestKeys(t *testing.T) {
	term, _, now := newTerminal(t)

	assert.Equal(t, [16]bool{}, [16]bool(term.Keys()))

	term.handleInput('x')
	term.handleInput('V')
	term.handleInput('4')
	term.handleInput('y') // not mapped

	keys := term.Keys()
	assert.True(t, keys[0x0])
	assert.True(t, keys[0xF])
	assert.True(t, keys[0xC])
	assert.False(t, keys[0x1])

	*now = now.Add(HoldDuration / 2)
	term.handleInput('x')
	*now = now.Add(HoldDuration / 2)
	keys = term.Keys()
	assert.True(t, keys[0x0])
	assert.False(t, keys[0xF])
}

func TestKeysHeldAcrossRepeatDelay(t *testing.T) {
	term, _, now := newTerminal(t)

	// first press, then the terminal starts repeating after its auto-repeat delay
	term.handleInput('w')
	for _, delay := range []time.Duration{600 * time.Millisecond, 30 * time.Millisecond, 30 * time.Millisecond} {
		*now = now.Add(delay)
		assert.True(t, term.Keys()[0x5])
		term.handleInput('w')
	}

	*now = now.Add(HoldDuration)
	assert.False(t, term.Keys()[0x5])
}

func TestKeyLayout(t *testing.T) {
	term, _, _ := newTerminal(t)

	for i := range len(KeyLayout) {
		term.handleInput(KeyLayout[i])
		keys := term.Keys()
		assert.True(t, keys[i], "key "+string(KeyLayout[i]))
	}
}

func TestCommands(t *testing.T) {
	term, _, _ := newTerminal(t)

	for _, b := range []byte{'p', 'n', 'O', 'm', '+', '-', '[', ']', 'b', 'B', 'i', ctrlC} {
		term.handleInput(b)
	}

	expected := []host.Command{
		host.TogglePause, host.Step, host.Capture, host.Reset,
		host.SpeedUp, host.SlowDown, host.StepBack, host.StepForward,
		host.ToggleBreakpoint, host.ClearBreakpoints, host.InvertPalette, host.Quit,
	}
	for _, cmd := range expected {
		assert.Equal(t, cmd, <-term.Commands())
	}
}

func TestRender(t *testing.T) {
	term, buf, _ := newTerminal(t)

	pixels := make([]uint32, display.Width*display.Height)
	for i := range pixels {
		pixels[i] = display.DefaultOffColor
	}
	pixels[0] = display.DefaultOnColor

	frame := host.Frame{
		Pixels:              pixels,
		Number:              3,
		Paused:              true,
		ProgramCounter:      0x20A,
		InstructionsPerTick: 11,
		Breakpoint:          true,
	}
	assert.NoError(t, term.Render(frame))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, home))
	assert.Contains(t, out, escape+"38;2;160;255;160m")
	assert.Contains(t, out, escape+"48;2;0;0;0m")
	assert.Equal(t, display.Width*display.Height/2, strings.Count(out, upperHalf))
	assert.Equal(t, display.Height/2, strings.Count(out, "\r\n"))
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "pc $20A ipt 11  BREAK")

	buf.Reset()
	assert.NoError(t, term.Render(host.Frame{Pixels: pixels, Fault: errors.New("invalid opcode")}))
	assert.Contains(t, buf.String(), "FAULT invalid opcode")

	assert.Error(t, term.Render(host.Frame{Pixels: pixels[:10]}))
}

func TestBeep(t *testing.T) {
	term, buf, _ := newTerminal(t)

	term.Beep(false)
	assert.Equal(t, "", buf.String())
	term.Beep(true)
	assert.Equal(t, "\a", buf.String())
}

func TestCloseWithoutStart(t *testing.T) {
	term, buf, _ := newTerminal(t)
	assert.NoError(t, term.Close())
	assert.Contains(t, buf.String(), showCursor)
}
