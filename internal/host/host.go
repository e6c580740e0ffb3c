// Package host drives a virtual machine at a fixed tick rate and connects it to a
// frontend that provides key input and presents the display.
package host

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/retroenv/retrochip8/internal/capture"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// FrameTime is the duration of one 60Hz tick.
const FrameTime = time.Second / 60

// Command is a user request that the frontend passes to the host loop.
type Command int

// Commands supported by the host loop.
const (
	TogglePause Command = iota + 1
	Step
	Capture
	Reset
	Quit
	SpeedUp
	SlowDown
	StepBack
	StepForward
	ToggleBreakpoint
	ClearBreakpoints
	InvertPalette
)

func (c Command) String() string {
	switch c {
	case TogglePause:
		return "pause"
	case Step:
		return "step"
	case Capture:
		return "capture"
	case Reset:
		return "reset"
	case Quit:
		return "quit"
	case SpeedUp:
		return "speed up"
	case SlowDown:
		return "slow down"
	case StepBack:
		return "step back"
	case StepForward:
		return "step forward"
	case ToggleBreakpoint:
		return "toggle breakpoint"
	case ClearBreakpoints:
		return "clear breakpoints"
	case InvertPalette:
		return "invert palette"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Frame is the display content presented after every tick.
type Frame struct {
	Pixels []uint32
	Number int
	Paused bool
	Fault  error

	ProgramCounter      uint16
	InstructionsPerTick int
	Breakpoint          bool // a breakpoint is set at the program counter
}

// Frontend provides key input and commands and presents frames.
type Frontend interface {
	// Keys returns the current levels of the 16 keys.
	Keys() keypad.State
	// Commands returns the channel of user commands, it can be nil.
	Commands() <-chan Command
	// Render presents a frame.
	Render(frame Frame) error
	// Beep starts or stops the tone that plays while the sound timer is active.
	Beep(on bool)
}

// Machine is the virtual machine controlled by the host loop.
type Machine interface {
	Tick(keys keypad.State) error
	Step() error
	Paused() bool
	SetPaused(paused bool)
	Reset(clearMemory bool)
	Framebuffer() []uint32
	Timers() (delay, sound byte)

	ProgramCounter() uint16
	SetProgramCounter(address uint16) error
	InstructionsPerTick() int
	SetInstructionsPerTick(count int) error
	Palette() (on, off uint32)
	SetPalette(on, off uint32) error

	AddBreakpoint(address uint16) error
	RemoveBreakpoint(address uint16)
	ClearBreakpoints()
	Breakpoints() []uint16
}

// Config of the host loop.
type Config struct {
	Frames      int    // number of frames to run, 0 runs until cancelled
	CaptureFile string // PNG file for display captures
	StopOnFault bool   // end the loop on a machine fault instead of pausing
}

// Host runs the tick loop.
type Host struct {
	logger   *log.Logger
	machine  Machine
	frontend Frontend
	cfg      Config

	frames int
	beep   bool
	fault  error
}

// New returns a new host loop.
func New(logger *log.Logger, machine Machine, frontend Frontend, cfg Config) *Host {
	return &Host{
		logger:   logger,
		machine:  machine,
		frontend: frontend,
		cfg:      cfg,
	}
}

// Run ticks the machine on every value received from the ticks channel until the
// context is cancelled, the quit command is received or the configured number of
// frames has been run.
func (h *Host) Run(ctx context.Context, ticks <-chan time.Time) error {
	commands := h.frontend.Commands()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running host loop: %w", ctx.Err())

		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			done, err := h.handleCommand(cmd)
			if err != nil || done {
				return err
			}

		case <-ticks:
			done, err := h.tick()
			if err != nil || done {
				return err
			}
		}
	}
}

// Frames returns the number of frames run.
func (h *Host) Frames() int {
	return h.frames
}

func (h *Host) tick() (bool, error) {
	if err := h.machine.Tick(h.frontend.Keys()); err != nil {
		if err := h.handleFault(err); err != nil {
			return true, err
		}
	}

	h.frames++
	if err := h.render(); err != nil {
		return true, err
	}

	_, sound := h.machine.Timers()
	if beep := sound > 0; beep != h.beep {
		h.beep = beep
		h.frontend.Beep(beep)
	}

	if h.cfg.Frames > 0 && h.frames >= h.cfg.Frames {
		h.logger.Debug("Frame limit reached", log.Int("frames", h.frames))
		if h.cfg.CaptureFile != "" {
			if err := h.capture(); err != nil {
				return true, err
			}
		}
		return true, nil
	}
	return false, nil
}

func (h *Host) handleCommand(cmd Command) (bool, error) {
	h.logger.Debug("Command received", log.Stringer("command", cmd))

	switch cmd {
	case TogglePause:
		paused := !h.machine.Paused()
		h.machine.SetPaused(paused)
		if !paused {
			h.fault = nil
		}

	case Step:
		if !h.machine.Paused() {
			return false, nil
		}
		if err := h.machine.Step(); err != nil {
			if err := h.handleFault(err); err != nil {
				return true, err
			}
		}

	case Capture:
		if err := h.capture(); err != nil {
			h.logger.Warn("Capturing display failed", log.Err(err))
		}

	case Reset:
		h.machine.Reset(false)
		h.fault = nil

	case Quit:
		return true, nil

	case SpeedUp, SlowDown:
		h.changeSpeed(cmd)

	case StepBack, StepForward:
		h.moveProgramCounter(cmd)

	case ToggleBreakpoint:
		h.toggleBreakpoint()

	case ClearBreakpoints:
		h.machine.ClearBreakpoints()
		h.logger.Info("Breakpoints cleared")

	case InvertPalette:
		on, off := h.machine.Palette()
		if err := h.machine.SetPalette(off, on); err != nil {
			h.logger.Warn("Changing palette failed", log.Err(err))
		}
	}

	return false, h.render()
}

// changeSpeed changes the instructions per tick by one, the minimum is one.
func (h *Host) changeSpeed(cmd Command) {
	count := h.machine.InstructionsPerTick()
	if cmd == SpeedUp {
		count++
	} else {
		if count <= 1 {
			return
		}
		count--
	}

	if err := h.machine.SetInstructionsPerTick(count); err != nil {
		h.logger.Warn("Changing speed failed", log.Err(err))
		return
	}
	h.logger.Debug("Speed changed", log.Int("instructions_per_tick", count))
}

// moveProgramCounter moves the program counter by one instruction while paused.
func (h *Host) moveProgramCounter(cmd Command) {
	if !h.machine.Paused() {
		return
	}

	pc := h.machine.ProgramCounter()
	if cmd == StepBack {
		pc -= opcode.Size
	} else {
		pc += opcode.Size
	}

	if err := h.machine.SetProgramCounter(pc); err != nil {
		h.logger.Warn("Moving program counter failed", log.Err(err))
	}
}

// toggleBreakpoint sets or removes a breakpoint at the program counter.
func (h *Host) toggleBreakpoint() {
	pc := h.machine.ProgramCounter()
	if slices.Contains(h.machine.Breakpoints(), pc) {
		h.machine.RemoveBreakpoint(pc)
		h.logger.Info("Breakpoint removed", log.Hex("address", pc))
		return
	}

	if err := h.machine.AddBreakpoint(pc); err != nil {
		h.logger.Warn("Adding breakpoint failed", log.Err(err))
	}
}

// handleFault pauses the machine so that the state at the fault can be inspected,
// or returns the fault if the loop is configured to stop.
func (h *Host) handleFault(err error) error {
	if h.cfg.StopOnFault {
		return fmt.Errorf("running machine: %w", err)
	}

	h.fault = err
	h.machine.SetPaused(true)
	h.logger.Warn("Machine paused after fault", log.Err(err))
	return nil
}

func (h *Host) render() error {
	pc := h.machine.ProgramCounter()
	frame := Frame{
		Pixels: h.machine.Framebuffer(),
		Number: h.frames,
		Paused: h.machine.Paused(),
		Fault:  h.fault,

		ProgramCounter:      pc,
		InstructionsPerTick: h.machine.InstructionsPerTick(),
		Breakpoint:          slices.Contains(h.machine.Breakpoints(), pc),
	}
	if err := h.frontend.Render(frame); err != nil {
		return fmt.Errorf("rendering frame: %w", err)
	}
	return nil
}

func (h *Host) capture() error {
	if h.cfg.CaptureFile == "" {
		return errors.New("no capture file configured")
	}

	err := capture.Save(h.cfg.CaptureFile, h.machine.Framebuffer(), display.Width, display.Height, capture.DefaultScale)
	if err != nil {
		return fmt.Errorf("capturing display: %w", err)
	}
	h.logger.Info("Display captured", log.String("file", h.cfg.CaptureFile))
	return nil
}
