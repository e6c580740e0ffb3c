// Package cpu contains the CHIP-8 register file, call stack and timers.
package cpu

import (
	"errors"
	"fmt"
)

const (
	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16

	// FlagRegister is the index of VF, which receives carry, borrow and collision flags.
	FlagRegister = 0xF

	// StackDepth is the number of return addresses the call stack can hold.
	StackDepth = 16

	// ResetAddress is the program counter value after a reset.
	ResetAddress = 0x200
)

var (
	// ErrInvalidRegister is returned for register indexes outside of V0-VF.
	ErrInvalidRegister = errors.New("invalid register")
	// ErrStackOverflow is returned when a call is made with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when returning with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// CPU is the register file of the virtual machine.
type CPU struct {
	v     [RegisterCount]byte
	stack [StackDepth]uint16
	sp    uint8

	// I is the 16-bit index register.
	I uint16
	// PC is the program counter.
	PC uint16

	// DelayTimer counts down once per tick while nonzero.
	DelayTimer byte
	// SoundTimer counts down once per tick while nonzero, a tone plays while it is nonzero.
	SoundTimer byte
}

// State is a copy of the register file for inspection.
type State struct {
	V          [RegisterCount]byte
	Stack      [StackDepth]uint16
	SP         uint8
	I          uint16
	PC         uint16
	DelayTimer byte
	SoundTimer byte
}

// New returns a register file in reset state.
func New() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Reset clears all registers, the stack and the timers and sets the program counter
// to the program start address.
func (c *CPU) Reset() {
	*c = CPU{
		PC: ResetAddress,
	}
}

// Register returns the value of register Vx.
func (c *CPU) Register(x uint8) (byte, error) {
	if x >= RegisterCount {
		return 0, fmt.Errorf("%w: V%d", ErrInvalidRegister, x)
	}
	return c.v[x], nil
}

// SetRegister sets the value of register Vx.
func (c *CPU) SetRegister(x uint8, value byte) error {
	if x >= RegisterCount {
		return fmt.Errorf("%w: V%d", ErrInvalidRegister, x)
	}
	c.v[x] = value
	return nil
}

// SetFlag sets VF to 1 if the flag is set, otherwise to 0.
func (c *CPU) SetFlag(set bool) {
	if set {
		c.v[FlagRegister] = 1
	} else {
		c.v[FlagRegister] = 0
	}
}

// Push stores the return address on the call stack.
func (c *CPU) Push(address uint16) error {
	if int(c.sp) >= StackDepth {
		return fmt.Errorf("%w: pushing $%03X", ErrStackOverflow, address)
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

// Pop removes and returns the most recent return address from the call stack.
func (c *CPU) Pop() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// StackPointer returns the number of return addresses on the stack.
func (c *CPU) StackPointer() uint8 {
	return c.sp
}

// DecrementTimers counts both timers down by one if they are nonzero.
func (c *CPU) DecrementTimers() {
	if c.DelayTimer > 0 {
		c.DelayTimer--
	}
	if c.SoundTimer > 0 {
		c.SoundTimer--
	}
}

// State returns a copy of all registers.
func (c *CPU) State() State {
	return State{
		V:          c.v,
		Stack:      c.stack,
		SP:         c.sp,
		I:          c.I,
		PC:         c.PC,
		DelayTimer: c.DelayTimer,
		SoundTimer: c.SoundTimer,
	}
}
