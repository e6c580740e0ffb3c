// Package terminal implements a host frontend that renders the display into an
// ANSI terminal and reads key presses from a terminal in cbreak mode.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrogolib/log"
)

// HoldDuration is how long a key counts as pressed after its last key press event.
// Terminals only report key presses, a held key repeats its press event after the
// auto-repeat delay of the terminal, which is up to 660ms on X11 by default.
const HoldDuration = 700 * time.Millisecond

// KeyLayout maps the terminal keys to the keypad keys 0x0 to 0xF.
const KeyLayout = "x123qweasdzc4rfv"

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
	clearAll   = escape + "2J"
	home       = escape + "H"
	resetAttr  = escape + "0m"
	upperHalf  = "▀"
	ctrlC      = 0x03
)

// Terminal is a host frontend for ANSI terminals.
type Terminal struct {
	logger *log.Logger
	input  *os.File
	output io.Writer
	now    func() time.Time

	state    *state // saved terminal attributes, nil if not in cbreak mode
	commands chan host.Command

	mu       sync.Mutex
	lastSeen [keypad.KeyCount]time.Time
}

// New returns a terminal frontend reading from input and rendering to output.
func New(logger *log.Logger, input *os.File, output io.Writer) *Terminal {
	return &Terminal{
		logger:   logger,
		input:    input,
		output:   output,
		now:      time.Now,
		commands: make(chan host.Command, 16),
	}
}

// Start switches the terminal to cbreak mode and starts reading key presses.
// Close has to be called to restore the terminal.
func (t *Terminal) Start() error {
	st, err := enableCBreak(t.input.Fd())
	if err != nil {
		return fmt.Errorf("enabling cbreak mode: %w", err)
	}
	t.state = st

	if _, err := io.WriteString(t.output, hideCursor+clearAll); err != nil {
		return fmt.Errorf("clearing terminal: %w", err)
	}

	// the reader goroutine blocks in Read until the process exits
	go t.readInput(bufio.NewReader(t.input))
	return nil
}

// Close restores the terminal attributes and the cursor.
func (t *Terminal) Close() error {
	if _, err := io.WriteString(t.output, resetAttr+showCursor+"\n"); err != nil {
		return fmt.Errorf("restoring cursor: %w", err)
	}
	if t.state == nil {
		return nil
	}
	if err := t.state.restore(t.input.Fd()); err != nil {
		return fmt.Errorf("restoring terminal mode: %w", err)
	}
	t.state = nil
	return nil
}

func (t *Terminal) readInput(reader io.ByteReader) {
	for {
		b, err := reader.ReadByte()
		if err != nil {
			t.logger.Debug("Terminal input closed", log.Err(err))
			return
		}
		t.handleInput(b)
	}
}

// handleInput processes a single input byte.
func (t *Terminal) handleInput(b byte) {
	var cmd host.Command
	switch b {
	case 'p', 'P':
		cmd = host.TogglePause
	case 'n', 'N':
		cmd = host.Step
	case 'o', 'O':
		cmd = host.Capture
	case 'm', 'M':
		cmd = host.Reset
	case '+', '=':
		cmd = host.SpeedUp
	case '-', '_':
		cmd = host.SlowDown
	case '[':
		cmd = host.StepBack
	case ']':
		cmd = host.StepForward
	case 'b':
		cmd = host.ToggleBreakpoint
	case 'B':
		cmd = host.ClearBreakpoints
	case 'i', 'I':
		cmd = host.InvertPalette
	case ctrlC:
		cmd = host.Quit
	default:
		t.pressKey(b)
		return
	}

	select {
	case t.commands <- cmd:
	default:
		t.logger.Warn("Command dropped", log.Stringer("command", cmd))
	}
}

func (t *Terminal) pressKey(b byte) {
	index := strings.IndexByte(KeyLayout, toLower(b))
	if index < 0 {
		return
	}

	t.mu.Lock()
	t.lastSeen[index] = t.now()
	t.mu.Unlock()
}

// Keys returns the keys that had a press event within the hold duration.
func (t *Terminal) Keys() keypad.State {
	now := t.now()
	var state keypad.State

	t.mu.Lock()
	defer t.mu.Unlock()

	for key, seen := range t.lastSeen {
		state[key] = !seen.IsZero() && now.Sub(seen) < HoldDuration
	}
	return state
}

// Commands returns the channel of user commands.
func (t *Terminal) Commands() <-chan host.Command {
	return t.commands
}

// Beep rings the terminal bell when the tone starts.
func (t *Terminal) Beep(on bool) {
	if !on {
		return
	}
	if _, err := io.WriteString(t.output, "\a"); err != nil {
		t.logger.Debug("Writing bell failed", log.Err(err))
	}
}

// Render draws the frame using one character for two display rows. The upper
// pixel is drawn as foreground and the lower pixel as background color.
func (t *Terminal) Render(frame host.Frame) error {
	if len(frame.Pixels) != display.Width*display.Height {
		return fmt.Errorf("invalid framebuffer size %d", len(frame.Pixels))
	}

	buf := &strings.Builder{}
	buf.WriteString(home)

	for y := 0; y < display.Height; y += 2 {
		var fg, bg uint32
		for x := range display.Width {
			upper := frame.Pixels[y*display.Width+x]
			lower := frame.Pixels[(y+1)*display.Width+x]

			if x == 0 || upper != fg {
				writeColor(buf, "38", upper)
				fg = upper
			}
			if x == 0 || lower != bg {
				writeColor(buf, "48", lower)
				bg = lower
			}
			buf.WriteString(upperHalf)
		}
		buf.WriteString(resetAttr + "\r\n")
	}

	buf.WriteString(status(frame))

	if _, err := io.WriteString(t.output, buf.String()); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// status returns the status line below the display.
func status(frame host.Frame) string {
	line := fmt.Sprintf("frame %-8d pc $%03X ipt %-3d", frame.Number, frame.ProgramCounter, frame.InstructionsPerTick)
	if frame.Breakpoint {
		line += " BREAK"
	}
	switch {
	case frame.Fault != nil:
		line += " FAULT " + frame.Fault.Error()
	case frame.Paused:
		line += " paused (p resume, n step, [ ] move pc, b breakpoint)"
	default:
		line += " running (p pause, +/- speed, o capture, m reset, i invert)"
	}
	return escape + "2K" + line + "\r"
}

// writeColor writes a 24-bit color escape sequence for a 0xAABBGGRR color.
func writeColor(buf *strings.Builder, layer string, c uint32) {
	fmt.Fprintf(buf, "%s%s;2;%d;%d;%dm", escape, layer, byte(c), byte(c>>8), byte(c>>16))
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
