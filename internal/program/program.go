// Package program represents a disassembled CHIP-8 program image.
package program

import (
	"fmt"
	"strings"
)

// Offset defines the content of an offset in a program that can represent data or code.
type Offset struct {
	Address uint16
	Data    []byte // data byte or both instruction word bytes, empty for the second byte of an instruction

	Type OffsetType

	Label        string // name of label or subroutine if identified as a jump destination
	Code         string // asm output of this instruction
	Comment      string
	LabelComment string
}

// HexCodeComment returns the data bytes of the offset as hex string.
func (o Offset) HexCodeComment() string {
	buf := &strings.Builder{}
	for i, b := range o.Data {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%02X", b)
	}
	return buf.String()
}

// Program defines a CHIP-8 program that contains code or data.
type Program struct {
	Offsets []Offset

	CodeBaseAddress uint16
	Checksum        uint32 // CRC32 of the program image
}

// New creates a new program with one offset per program byte.
func New(codeBaseAddress uint16, size int) *Program {
	offsets := make([]Offset, size)
	for i := range offsets {
		offsets[i].Address = codeBaseAddress + uint16(i)
	}

	return &Program{
		Offsets:         offsets,
		CodeBaseAddress: codeBaseAddress,
	}
}

// Offset returns the offset for the given address, or nil if the address is
// outside of the program.
func (p *Program) Offset(address uint16) *Offset {
	if address < p.CodeBaseAddress {
		return nil
	}
	index := int(address - p.CodeBaseAddress)
	if index >= len(p.Offsets) {
		return nil
	}
	return &p.Offsets[index]
}
