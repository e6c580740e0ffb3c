package machine

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
)

// execute runs a decoded instruction. The program counter already points
// to the following instruction.
func (m *Machine) execute(ins opcode.Instruction) error {
	switch ins.Op {
	case opcode.Invalid:
		return ErrInvalidOpcode

	case opcode.ClearScreen:
		m.display.Clear()
		return nil
	case opcode.Return:
		return m.ret()
	case opcode.Jump:
		m.cpu.PC = ins.NNN()
		return nil
	case opcode.Call:
		return m.call(ins.NNN())
	case opcode.JumpOffset:
		return m.jumpOffset(ins.NNN())

	case opcode.SkipEqualByte:
		return m.skipByte(ins, true)
	case opcode.SkipNotEqualByte:
		return m.skipByte(ins, false)
	case opcode.SkipEqualRegister:
		return m.skipRegister(ins, true)
	case opcode.SkipNotEqualRegister:
		return m.skipRegister(ins, false)
	case opcode.SkipKeyPressed:
		return m.skipKey(ins.X(), true)
	case opcode.SkipKeyNotPressed:
		return m.skipKey(ins.X(), false)

	case opcode.LoadByte:
		return m.cpu.SetRegister(ins.X(), ins.NN())
	case opcode.AddByte:
		return m.addByte(ins.X(), ins.NN())
	case opcode.Random:
		return m.cpu.SetRegister(ins.X(), byte(m.random.Uint32())&ins.NN())

	case opcode.LoadRegister, opcode.Or, opcode.And, opcode.Xor:
		return m.logical(ins)
	case opcode.AddRegister, opcode.Sub, opcode.SubNegated:
		return m.arithmetic(ins)
	case opcode.ShiftRight, opcode.ShiftLeft:
		return m.shift(ins)

	case opcode.LoadIndex:
		m.cpu.I = ins.NNN()
		return nil
	case opcode.AddIndex:
		return m.addIndex(ins.X())
	case opcode.LoadFontAddress:
		return m.loadFontAddress(ins.X())

	case opcode.Draw:
		return m.draw(ins.X(), ins.Y(), ins.N())

	case opcode.LoadDelayTimer:
		return m.cpu.SetRegister(ins.X(), m.cpu.DelayTimer)
	case opcode.SetDelayTimer, opcode.SetSoundTimer:
		return m.setTimer(ins)
	case opcode.WaitKeyRelease:
		return m.waitKeyRelease(ins.X())

	case opcode.StoreBCD:
		return m.storeBCD(ins.X())
	case opcode.StoreRegisters:
		return m.storeRegisters(ins.X())
	case opcode.LoadRegisters:
		return m.loadRegisters(ins.X())

	default:
		return fmt.Errorf("%w: %s", ErrUnhandledOpcode, ins.Op)
	}
}

func (m *Machine) ret() error {
	address, err := m.cpu.Pop()
	if err != nil {
		return fmt.Errorf("returning from subroutine: %w", err)
	}
	m.cpu.PC = address
	return nil
}

func (m *Machine) call(address uint16) error {
	if err := m.cpu.Push(m.cpu.PC); err != nil {
		return fmt.Errorf("calling subroutine: %w", err)
	}
	m.cpu.PC = address
	return nil
}

func (m *Machine) jumpOffset(address uint16) error {
	v0, err := m.cpu.Register(0)
	if err != nil {
		return err
	}
	m.cpu.PC = address + uint16(v0)
	return nil
}

// skip advances the program counter over the next instruction if cond is set.
func (m *Machine) skip(cond bool) {
	if cond {
		m.cpu.PC += opcode.Size
	}
}

func (m *Machine) skipByte(ins opcode.Instruction, equal bool) error {
	vx, err := m.cpu.Register(ins.X())
	if err != nil {
		return err
	}
	m.skip((vx == ins.NN()) == equal)
	return nil
}

func (m *Machine) skipRegister(ins opcode.Instruction, equal bool) error {
	vx, vy, err := m.registerPair(ins)
	if err != nil {
		return err
	}
	m.skip((vx == vy) == equal)
	return nil
}

func (m *Machine) skipKey(x uint8, pressed bool) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}
	m.skip(m.keypad.Pressed(vx&0xF) == pressed)
	return nil
}

func (m *Machine) registerPair(ins opcode.Instruction) (byte, byte, error) {
	vx, err := m.cpu.Register(ins.X())
	if err != nil {
		return 0, 0, err
	}
	vy, err := m.cpu.Register(ins.Y())
	if err != nil {
		return 0, 0, err
	}
	return vx, vy, nil
}

func (m *Machine) addByte(x uint8, value byte) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}
	return m.cpu.SetRegister(x, vx+value)
}

func (m *Machine) logical(ins opcode.Instruction) error {
	vx, vy, err := m.registerPair(ins)
	if err != nil {
		return err
	}

	var result byte
	switch ins.Op {
	case opcode.LoadRegister:
		result = vy
	case opcode.Or:
		result = vx | vy
	case opcode.And:
		result = vx & vy
	case opcode.Xor:
		result = vx ^ vy
	default:
		return fmt.Errorf("%w: %s", ErrUnhandledOpcode, ins.Op)
	}
	return m.cpu.SetRegister(ins.X(), result)
}

// arithmetic handles the flag setting add and subtract variants. The result is
// written before the flag, for VF as destination the flag wins.
func (m *Machine) arithmetic(ins opcode.Instruction) error {
	vx, vy, err := m.registerPair(ins)
	if err != nil {
		return err
	}

	var result byte
	var flag bool
	switch ins.Op {
	case opcode.AddRegister:
		sum := uint16(vx) + uint16(vy)
		result, flag = byte(sum), sum > 0xFF
	case opcode.Sub:
		result, flag = vx-vy, vx >= vy
	case opcode.SubNegated:
		result, flag = vy-vx, vy >= vx
	default:
		return fmt.Errorf("%w: %s", ErrUnhandledOpcode, ins.Op)
	}

	if err := m.cpu.SetRegister(ins.X(), result); err != nil {
		return err
	}
	m.cpu.SetFlag(flag)
	return nil
}

func (m *Machine) shift(ins opcode.Instruction) error {
	vx, err := m.cpu.Register(ins.X())
	if err != nil {
		return err
	}

	var result byte
	var flag bool
	if ins.Op == opcode.ShiftRight {
		result, flag = vx>>1, vx&0x01 != 0
	} else {
		result, flag = vx<<1, vx&0x80 != 0
	}

	if err := m.cpu.SetRegister(ins.X(), result); err != nil {
		return err
	}
	m.cpu.SetFlag(flag)
	return nil
}

func (m *Machine) addIndex(x uint8) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}
	m.cpu.I += uint16(vx)
	return nil
}

func (m *Machine) loadFontAddress(x uint8) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}
	m.cpu.I = uint16(vx&0xF) * memory.GlyphSize
	return nil
}

// draw composites n sprite rows read from memory at I. Only rows that end up
// on the display are read from memory.
func (m *Machine) draw(x, y uint8, n byte) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}
	vy, err := m.cpu.Register(y)
	if err != nil {
		return err
	}

	rows := display.VisibleRows(vy, int(n))
	sprite := make([]byte, rows)
	for row := range rows {
		address := int(m.cpu.I) + row
		if address >= memory.Size {
			return fmt.Errorf("reading sprite row %d: %w: $%04X", row, memory.ErrAddressOutOfRange, address)
		}
		sprite[row], err = m.memory.ReadMemory(uint16(address))
		if err != nil {
			return fmt.Errorf("reading sprite row %d: %w", row, err)
		}
	}

	collision := m.display.DrawSprite(vx, vy, sprite)
	m.cpu.SetFlag(collision)
	return nil
}

func (m *Machine) setTimer(ins opcode.Instruction) error {
	vx, err := m.cpu.Register(ins.X())
	if err != nil {
		return err
	}
	if ins.Op == opcode.SetDelayTimer {
		m.cpu.DelayTimer = vx
	} else {
		m.cpu.SoundTimer = vx
	}
	return nil
}

// waitKeyRelease stores the index of a key released since the previous tick. Without
// a released key the program counter is rewound, so the instruction executes again.
func (m *Machine) waitKeyRelease(x uint8) error {
	key, ok := m.keypad.Released()
	if !ok {
		m.cpu.PC -= opcode.Size
		return nil
	}
	return m.cpu.SetRegister(x, key)
}

func (m *Machine) storeBCD(x uint8) error {
	vx, err := m.cpu.Register(x)
	if err != nil {
		return err
	}

	address := int(m.cpu.I)
	if address+2 >= memory.Size {
		return fmt.Errorf("storing BCD: %w: $%04X", memory.ErrAddressOutOfRange, address)
	}

	digits := [3]byte{vx / 100, vx / 10 % 10, vx % 10}
	for i, digit := range digits {
		if err := m.memory.WriteMemory(uint16(address+i), digit); err != nil {
			return fmt.Errorf("storing BCD: %w", err)
		}
	}
	return nil
}

// storeRegisters writes V0..Vx inclusive to memory starting at I, the address
// wraps around the end of memory. I is not modified.
func (m *Machine) storeRegisters(x uint8) error {
	for r := range x + 1 {
		value, err := m.cpu.Register(r)
		if err != nil {
			return err
		}
		address := (m.cpu.I + uint16(r)) & (memory.Size - 1)
		if err := m.memory.WriteMemory(address, value); err != nil {
			return fmt.Errorf("storing registers: %w", err)
		}
	}
	return nil
}

// loadRegisters reads V0..Vx inclusive from memory starting at I, the address
// wraps around the end of memory. I is not modified.
func (m *Machine) loadRegisters(x uint8) error {
	for r := range x + 1 {
		address := (m.cpu.I + uint16(r)) & (memory.Size - 1)
		value, err := m.memory.ReadMemory(address)
		if err != nil {
			return fmt.Errorf("loading registers: %w", err)
		}
		if err := m.cpu.SetRegister(r, value); err != nil {
			return err
		}
	}
	return nil
}
