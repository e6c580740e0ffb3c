// Package machine implements the CHIP-8 virtual machine engine that ties memory,
// registers, display and keypad together and executes instructions.
package machine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// DefaultInstructionsPerTick is the number of instructions executed per tick.
const DefaultInstructionsPerTick = 11

// ErrInvalidInstructionsPerTick is returned for instruction rates below 1.
var ErrInvalidInstructionsPerTick = errors.New("instructions per tick must be at least 1")

// Random provides the random numbers used by the RND instruction.
// *rand.Rand of math/rand/v2 satisfies it.
type Random interface {
	Uint32() uint32
}

// Config contains the configuration of a machine.
type Config struct {
	InstructionsPerTick int
	OnColor             uint32
	OffColor            uint32
	Paused              bool
	Random              Random   // time seeded source if nil
	Breakpoints         []uint16 // addresses to pause at
}

// DefaultConfig returns the default machine configuration.
func DefaultConfig() Config {
	return Config{
		InstructionsPerTick: DefaultInstructionsPerTick,
		OnColor:             display.DefaultOnColor,
		OffColor:            display.DefaultOffColor,
	}
}

// State is the execution state of a machine.
type State int

const (
	// Halted means no program is loaded, ticks do nothing.
	Halted State = iota
	// Running means a program is loaded and ticks execute instructions unless paused.
	Running
)

func (s State) String() string {
	switch s {
	case Halted:
		return "halted"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine is a CHIP-8 virtual machine. It is not safe for concurrent use,
// all methods have to be called from the goroutine that drives the ticks.
type Machine struct {
	logger *log.Logger

	memory  *memory.Memory
	cpu     *cpu.CPU
	display *display.Display
	keypad  *keypad.Keypad
	random  Random

	state               State
	paused              bool
	instructionsPerTick int
	cycles              uint64
	lastFault           *Fault

	breakpoints set.Set[uint16]
	resuming    bool   // skip the breakpoint check once after resuming
	resumeAt    uint16 // program counter at the time of resuming
}

// New returns a halted machine using the given configuration.
func New(logger *log.Logger, cfg Config) (*Machine, error) {
	if cfg.InstructionsPerTick < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInstructionsPerTick, cfg.InstructionsPerTick)
	}

	random := cfg.Random
	if random == nil {
		seed := uint64(time.Now().UnixNano())
		random = rand.New(rand.NewPCG(seed, seed>>32))
	}

	m := &Machine{
		logger:              logger,
		memory:              memory.New(),
		cpu:                 cpu.New(),
		display:             display.New(),
		keypad:              keypad.New(),
		random:              random,
		state:               Halted,
		paused:              cfg.Paused,
		instructionsPerTick: cfg.InstructionsPerTick,
		breakpoints:         set.New[uint16](),
	}

	if err := m.display.SetPalette(cfg.OnColor, cfg.OffColor); err != nil {
		return nil, fmt.Errorf("setting palette: %w", err)
	}
	for _, address := range cfg.Breakpoints {
		if err := m.AddBreakpoint(address); err != nil {
			return nil, fmt.Errorf("adding breakpoint: %w", err)
		}
	}
	return m, nil
}

// LoadROM resets the machine, clears the memory and loads the program image.
// On success the machine is running, otherwise it stays halted.
func (m *Machine) LoadROM(program []byte) error {
	m.Reset(true)

	if err := m.memory.LoadROM(program); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	m.state = Running
	m.logger.Debug("Program loaded",
		log.Int("size", len(program)),
		log.Hex("address", uint16(memory.ProgramStart)))
	return nil
}

// Reset re-initializes registers, display and keypad. If clearMemory is set the
// memory is zeroed, the font reloaded and the machine halted. Otherwise the loaded
// program is kept and execution restarts at the program start address.
func (m *Machine) Reset(clearMemory bool) {
	m.cpu.Reset()
	m.display.Clear()
	m.keypad.Reset()
	m.cycles = 0
	m.lastFault = nil
	m.resuming = false

	if clearMemory {
		m.memory.Reset()
		m.memory.LoadFont()
		m.state = Halted
	} else if m.memory.Loaded() {
		m.state = Running
	}

	m.logger.Debug("Machine reset",
		log.String("state", m.state.String()),
		log.Int("program_size", m.memory.ROMSize()))
}

// Tick resyncs the keypad with the host key levels, executes the configured number
// of instructions and decrements both timers. A halted machine ignores ticks, a paused
// machine only resyncs the keypad. If an instruction faults, the remaining
// instructions and the timer decrement of this tick are skipped and the fault is returned.
func (m *Machine) Tick(keys keypad.State) error {
	if m.state == Halted {
		return nil
	}

	m.keypad.Update(keys)
	if m.paused {
		return nil
	}

	for range m.instructionsPerTick {
		if m.breakpointHit() {
			m.paused = true
			m.logger.Info("Breakpoint hit", log.Hex("address", m.cpu.PC))
			return nil
		}

		if err := m.step(); err != nil {
			return err
		}
	}

	m.cpu.DecrementTimers()
	return nil
}

// Step executes a single instruction, independent of the pause flag.
// Timers are not decremented.
func (m *Machine) Step() error {
	if m.state == Halted {
		return ErrNoProgram
	}
	return m.step()
}

func (m *Machine) step() error {
	address := m.cpu.PC

	word, err := m.memory.FetchWord(address)
	if err != nil {
		return m.fault(address, 0, opcode.Invalid, err)
	}
	m.cpu.PC += opcode.Size

	ins := opcode.Decode(word)
	if err := m.execute(ins); err != nil {
		return m.fault(address, word, ins.Op, err)
	}

	m.cycles++
	return nil
}

func (m *Machine) fault(address, word uint16, op opcode.Op, err error) *Fault {
	f := &Fault{
		Address: address,
		Word:    word,
		Op:      op,
		Err:     err,
	}
	m.lastFault = f
	m.logger.Warn("Execution fault",
		log.Hex("address", address),
		log.Hex("word", word),
		log.Stringer("opcode", op),
		log.Err(err))
	return f
}

// State returns the execution state.
func (m *Machine) State() State {
	return m.state
}

// Paused returns whether instruction execution is paused.
func (m *Machine) Paused() bool {
	return m.paused
}

// SetPaused pauses or resumes instruction execution.
func (m *Machine) SetPaused(paused bool) {
	if m.paused && !paused {
		m.resuming = true
		m.resumeAt = m.cpu.PC
	}
	m.paused = paused
}

// InstructionsPerTick returns the number of instructions executed per tick.
func (m *Machine) InstructionsPerTick() int {
	return m.instructionsPerTick
}

// SetInstructionsPerTick sets the number of instructions executed per tick.
func (m *Machine) SetInstructionsPerTick(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidInstructionsPerTick, count)
	}
	m.instructionsPerTick = count
	return nil
}

// Palette returns the on and off colors of the display.
func (m *Machine) Palette() (on, off uint32) {
	return m.display.Palette()
}

// SetPalette changes the display colors, existing pixels are remapped.
func (m *Machine) SetPalette(on, off uint32) error {
	if err := m.display.SetPalette(on, off); err != nil {
		return fmt.Errorf("setting palette: %w", err)
	}
	return nil
}

// Registers returns a copy of the register file.
func (m *Machine) Registers() cpu.State {
	return m.cpu.State()
}

// ProgramCounter returns the address of the next instruction.
func (m *Machine) ProgramCounter() uint16 {
	return m.cpu.PC
}

// Timers returns the delay and sound timer values.
func (m *Machine) Timers() (delay, sound byte) {
	return m.cpu.DelayTimer, m.cpu.SoundTimer
}

// Framebuffer returns a copy of the display pixels in row major order.
func (m *Machine) Framebuffer() []uint32 {
	return m.display.Pixels()
}

// PixelOn returns whether the display pixel at the given position is set.
func (m *Machine) PixelOn(x, y int) bool {
	return m.display.PixelOn(x, y)
}

// Memory returns a copy of the whole address space.
func (m *Machine) Memory() []byte {
	return m.memory.Bytes()
}

// Program returns a copy of the memory range holding the loaded program.
func (m *Machine) Program() []byte {
	return m.memory.Program()
}

// Cycles returns the number of instructions executed since the last reset.
func (m *Machine) Cycles() uint64 {
	return m.cycles
}

// LastFault returns the most recent fault since the last reset, or nil.
func (m *Machine) LastFault() *Fault {
	return m.lastFault
}
