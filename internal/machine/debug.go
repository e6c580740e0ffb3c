package machine

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// SetProgramCounter moves execution to the given address.
func (m *Machine) SetProgramCounter(address uint16) error {
	if int(address) >= memory.Size-1 {
		return fmt.Errorf("%w: $%04X", memory.ErrAddressOutOfRange, address)
	}
	m.cpu.PC = address
	m.resuming = false
	return nil
}

// AddBreakpoint pauses the machine before the instruction at the given address executes.
func (m *Machine) AddBreakpoint(address uint16) error {
	if int(address) >= memory.Size {
		return fmt.Errorf("%w: $%04X", memory.ErrAddressOutOfRange, address)
	}
	m.breakpoints.Add(address)
	m.logger.Debug("Breakpoint added", log.Hex("address", address))
	return nil
}

// RemoveBreakpoint removes the breakpoint at the given address if one exists.
func (m *Machine) RemoveBreakpoint(address uint16) {
	delete(m.breakpoints, address)
}

// ClearBreakpoints removes all breakpoints.
func (m *Machine) ClearBreakpoints() {
	clear(m.breakpoints)
}

// Breakpoints returns all breakpoint addresses in ascending order.
func (m *Machine) Breakpoints() []uint16 {
	addresses := make([]uint16, 0, len(m.breakpoints))
	for address := range m.breakpoints {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// breakpointHit returns whether execution has to stop before the instruction at PC.
// The instruction that a resumed machine continues with is not checked again.
func (m *Machine) breakpointHit() bool {
	pc := m.cpu.PC
	if m.resuming {
		m.resuming = false
		if pc == m.resumeAt {
			return false
		}
	}
	return m.breakpoints.Contains(pc)
}
