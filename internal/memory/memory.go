// Package memory implements the 4KB CHIP-8 address space.
package memory

import (
	"errors"
	"fmt"
)

// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: Built-in font sprites (16 glyphs, 5 bytes each)
//	0x050-0x1FF: Reserved interpreter area
//	0x200-0xFFF: Program image (3584 bytes)
const (
	// Size is the number of addressable bytes.
	Size = 0x1000

	// ProgramStart is the address the program image is loaded to.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = Size - ProgramStart

	// GlyphSize is the number of bytes per font glyph.
	GlyphSize = 5
)

var (
	// ErrAddressOutOfRange is returned for accesses outside of the address space.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrProgramTooLarge is returned when a program image does not fit into memory.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrEmptyProgram is returned when a program image contains no bytes.
	ErrEmptyProgram = errors.New("program is empty")
)

// Memory is the flat byte store of the virtual machine.
type Memory struct {
	data [Size]byte

	loaded  bool
	romSize int
}

// New returns a zeroed memory with the font table loaded.
func New() *Memory {
	m := &Memory{}
	m.LoadFont()
	return m
}

// Reset zeroes all bytes and marks the memory as not containing a program.
func (m *Memory) Reset() {
	m.data = [Size]byte{}
	m.loaded = false
	m.romSize = 0
}

// LoadFont writes the built-in font table to the start of memory.
func (m *Memory) LoadFont() {
	copy(m.data[:], font[:])
}

// LoadROM copies the program image to ProgramStart.
// On error the memory is left in the unloaded state.
func (m *Memory) LoadROM(program []byte) error {
	switch {
	case len(program) == 0:
		m.loaded = false
		m.romSize = 0
		return ErrEmptyProgram

	case len(program) > MaxProgramSize:
		m.loaded = false
		m.romSize = 0
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	copy(m.data[ProgramStart:], program)
	m.romSize = len(program)
	m.loaded = true
	return nil
}

// Loaded returns whether a program image has been loaded.
func (m *Memory) Loaded() bool {
	return m.loaded
}

// ROMSize returns the size of the loaded program image in bytes.
func (m *Memory) ROMSize() int {
	return m.romSize
}

// ReadMemory returns the byte at the given address.
func (m *Memory) ReadMemory(address uint16) (byte, error) {
	if int(address) >= Size {
		return 0, fmt.Errorf("%w: reading $%04X", ErrAddressOutOfRange, address)
	}
	return m.data[address], nil
}

// WriteMemory sets the byte at the given address.
func (m *Memory) WriteMemory(address uint16, value byte) error {
	if int(address) >= Size {
		return fmt.Errorf("%w: writing $%04X", ErrAddressOutOfRange, address)
	}
	m.data[address] = value
	return nil
}

// FetchWord reads the big-endian 16-bit word at the given address.
func (m *Memory) FetchWord(address uint16) (uint16, error) {
	if int(address)+1 >= Size {
		return 0, fmt.Errorf("%w: fetching word at $%04X", ErrAddressOutOfRange, address)
	}
	return uint16(m.data[address])<<8 | uint16(m.data[address+1]), nil
}

// Bytes returns a copy of the whole address space.
func (m *Memory) Bytes() []byte {
	data := make([]byte, Size)
	copy(data, m.data[:])
	return data
}

// Program returns a copy of the memory range that holds the loaded program image.
// The bytes reflect the current memory content, including writes done by the program.
func (m *Memory) Program() []byte {
	data := make([]byte, m.romSize)
	copy(data, m.data[ProgramStart:ProgramStart+m.romSize])
	return data
}
