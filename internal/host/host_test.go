package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type fakeFrontend struct {
	keys     keypad.State
	commands chan Command
	frames   []Frame
	beeps    []bool
}

func newFakeFrontend() *fakeFrontend {
	return &fakeFrontend{
		commands: make(chan Command, 8),
	}
}

func (f *fakeFrontend) Keys() keypad.State       { return f.keys }
func (f *fakeFrontend) Commands() <-chan Command { return f.commands }
func (f *fakeFrontend) Beep(on bool)             { f.beeps = append(f.beeps, on) }

func (f *fakeFrontend) Render(frame Frame) error {
	f.frames = append(f.frames, frame)
	return nil
}

func newMachine(t *testing.T, program ...byte) *machine.Machine {
	t.Helper()
	m, err := machine.New(log.NewTestLogger(t), machine.DefaultConfig())
	assert.NoError(t, err)
	assert.NoError(t, m.LoadROM(program))
	return m
}

func tickChannel(count int) <-chan time.Time {
	ticks := make(chan time.Time, count)
	for range count {
		ticks <- time.Time{}
	}
	return ticks
}

func TestRunFrames(t *testing.T) {
	// V0 += 1, sound timer = 2 on first pass, then loop on the add
	m := newMachine(t,
		0x62, 0x02, // ld V2, $02
		0xF2, 0x18, // ld ST, V2
		0x70, 0x01, // add V0, $01
		0x12, 0x04, // jp $204
	)
	fe := newFakeFrontend()
	h := New(log.NewTestLogger(t), m, fe, Config{Frames: 5})

	err := h.Run(context.Background(), tickChannel(10))
	assert.NoError(t, err)
	assert.Equal(t, 5, h.Frames())
	assert.Equal(t, 5, len(fe.frames))
	assert.Equal(t, 5, fe.frames[4].Number)
	assert.Equal(t, []bool{true, false}, fe.beeps)
}

func TestRunCapturesAtFrameLimit(t *testing.T) {
	m := newMachine(t, 0x12, 0x00)
	fileName := filepath.Join(t.TempDir(), "capture.png")
	h := New(log.NewTestLogger(t), m, Headless{}, Config{Frames: 2, CaptureFile: fileName})

	assert.NoError(t, h.Run(context.Background(), tickChannel(2)))

	info, err := os.Stat(fileName)
	assert.NoError(t, err)
	assert.True(t, info.Size() > 0)
}

func TestRunCancelled(t *testing.T) {
	m := newMachine(t, 0x12, 0x00)
	h := New(log.NewTestLogger(t), m, Headless{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := h.Run(ctx, make(chan time.Time))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCommands(t *testing.T) {
	m := newMachine(t,
		0x70, 0x01, // add V0, $01
		0x12, 0x00, // jp $200
	)
	fe := newFakeFrontend()
	h := New(log.NewTestLogger(t), m, fe, Config{})

	fe.commands <- TogglePause
	fe.commands <- Step
	fe.commands <- Quit
	close(fe.commands)

	assert.NoError(t, h.Run(context.Background(), nil))
	assert.True(t, m.Paused())
	assert.Equal(t, byte(1), m.Registers().V[0])
	assert.Equal(t, 2, len(fe.frames))
	assert.True(t, fe.frames[0].Paused)
}

func TestFaultPausesMachine(t *testing.T) {
	m := newMachine(t, 0xFF, 0xFF)
	fe := newFakeFrontend()
	h := New(log.NewTestLogger(t), m, fe, Config{Frames: 2})

	assert.NoError(t, h.Run(context.Background(), tickChannel(2)))
	assert.True(t, m.Paused())
	assert.True(t, errors.Is(fe.frames[0].Fault, machine.ErrInvalidOpcode))

	m.Reset(false)
	m.SetPaused(false)
	h = New(log.NewTestLogger(t), m, fe, Config{StopOnFault: true})
	err := h.Run(context.Background(), tickChannel(1))
	assert.True(t, errors.Is(err, machine.ErrInvalidOpcode))
}

//nolint:funlen
func TestDebugCommands(t *testing.T) {
	m := newMachine(t,
		0x70, 0x01, // add V0, $01
		0x12, 0x00, // jp $200
	)
	fe := newFakeFrontend()
	h := New(log.NewTestLogger(t), m, fe, Config{})

	commands := []Command{
		SpeedUp, SpeedUp, SlowDown, // 0-2
		StepForward,      // 3 ignored while running
		TogglePause,      // 4
		StepForward,      // 5
		ToggleBreakpoint, // 6
		StepBack,         // 7
		ToggleBreakpoint, // 8
		ToggleBreakpoint, // 9
		ClearBreakpoints, // 10
		InvertPalette,    // 11
		Quit,
	}
	fe.commands = make(chan Command, len(commands))
	for _, cmd := range commands {
		fe.commands <- cmd
	}
	close(fe.commands)

	assert.NoError(t, h.Run(context.Background(), nil))
	assert.Equal(t, len(commands)-1, len(fe.frames))

	assert.Equal(t, machine.DefaultInstructionsPerTick+1, m.InstructionsPerTick())
	assert.Equal(t, machine.DefaultInstructionsPerTick+1, fe.frames[2].InstructionsPerTick)

	assert.Equal(t, uint16(0x200), fe.frames[3].ProgramCounter)
	assert.Equal(t, uint16(0x202), fe.frames[5].ProgramCounter)
	assert.True(t, fe.frames[6].Breakpoint)
	assert.Equal(t, uint16(0x200), fe.frames[7].ProgramCounter)
	assert.False(t, fe.frames[7].Breakpoint)
	assert.True(t, fe.frames[8].Breakpoint)
	assert.False(t, fe.frames[9].Breakpoint)
	assert.Empty(t, m.Breakpoints())

	on, off := m.Palette()
	assert.Equal(t, display.DefaultOffColor, on)
	assert.Equal(t, display.DefaultOnColor, off)
	assert.Equal(t, display.DefaultOnColor, fe.frames[11].Pixels[0])
}

func TestBreakpointCommandsPauseExecution(t *testing.T) {
	m := newMachine(t,
		0x70, 0x01, // add V0, $01
		0x71, 0x01, // add V1, $01
		0x12, 0x00, // jp $200
	)
	fe := newFakeFrontend()
	h := New(log.NewTestLogger(t), m, fe, Config{Frames: 1})

	for _, cmd := range []Command{TogglePause, StepForward, ToggleBreakpoint, StepBack, TogglePause} {
		_, err := h.handleCommand(cmd)
		assert.NoError(t, err)
	}
	assert.False(t, m.Paused())
	assert.Equal(t, []uint16{0x202}, m.Breakpoints())

	assert.NoError(t, h.Run(context.Background(), tickChannel(1)))

	// add V0 ran, the breakpoint at $202 paused before add V1
	assert.True(t, m.Paused())
	assert.Equal(t, uint16(0x202), m.ProgramCounter())
	assert.Equal(t, byte(1), m.Registers().V[0])
	assert.Equal(t, byte(0), m.Registers().V[1])
}

func TestSlowDownKeepsMinimum(t *testing.T) {
	m := newMachine(t, 0x12, 0x00)
	assert.NoError(t, m.SetInstructionsPerTick(1))
	h := New(log.NewTestLogger(t), m, Headless{}, Config{})

	_, err := h.handleCommand(SlowDown)
	assert.NoError(t, err)
	assert.Equal(t, 1, m.InstructionsPerTick())
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "pause", TogglePause.String())
	assert.Equal(t, "step back", StepBack.String())
	assert.Equal(t, "invert palette", InvertPalette.String())
	assert.Equal(t, "quit", Quit.String())
	assert.Equal(t, "Command(0)", Command(0).String())
}
