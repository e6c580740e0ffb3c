package opcode

import "github.com/retroenv/retrogolib/arch/cpu/chip8"

// Size is the size of an instruction word in bytes.
const Size = 2

// Instruction is a raw instruction word together with its classified opcode.
type Instruction struct {
	Word uint16
	Op   Op
}

// Decode classifies an instruction word. The high nibble selects the opcode group,
// groups 0x0, 0xE and 0xF are disambiguated by the low byte and group 0x8 by the
// low nibble. 0x5 and 0x9 words ignore the low nibble. Words that match no
// pattern decode to Invalid.
func Decode(word uint16) Instruction {
	return Instruction{
		Word: word,
		Op:   classify(word),
	}
}

// opcodeValues maps the opcode values of the retrogolib CHIP-8 opcode table to opcodes.
var opcodeValues = map[uint16]Op{
	chip8.Opcode00E0.Value: ClearScreen,
	chip8.Opcode00EE.Value: Return,
	chip8.Opcode1000.Value: Jump,
	chip8.Opcode2000.Value: Call,
	chip8.Opcode3000.Value: SkipEqualByte,
	chip8.Opcode4000.Value: SkipNotEqualByte,
	chip8.Opcode5000.Value: SkipEqualRegister,
	chip8.Opcode6000.Value: LoadByte,
	chip8.Opcode7000.Value: AddByte,
	chip8.Opcode8000.Value: LoadRegister,
	chip8.Opcode8001.Value: Or,
	chip8.Opcode8002.Value: And,
	chip8.Opcode8003.Value: Xor,
	chip8.Opcode8004.Value: AddRegister,
	chip8.Opcode8005.Value: Sub,
	chip8.Opcode8006.Value: ShiftRight,
	chip8.Opcode8007.Value: SubNegated,
	chip8.Opcode800E.Value: ShiftLeft,
	chip8.Opcode9000.Value: SkipNotEqualRegister,
	chip8.OpcodeA000.Value: LoadIndex,
	chip8.OpcodeB000.Value: JumpOffset,
	chip8.OpcodeC000.Value: Random,
	chip8.OpcodeD000.Value: Draw,
	chip8.OpcodeE09E.Value: SkipKeyPressed,
	chip8.OpcodeE0A1.Value: SkipKeyNotPressed,
	chip8.OpcodeF007.Value: LoadDelayTimer,
	chip8.OpcodeF00A.Value: WaitKeyRelease,
	chip8.OpcodeF015.Value: SetDelayTimer,
	chip8.OpcodeF018.Value: SetSoundTimer,
	chip8.OpcodeF01E.Value: AddIndex,
	chip8.OpcodeF029.Value: LoadFontAddress,
	chip8.OpcodeF033.Value: StoreBCD,
	chip8.OpcodeF055.Value: StoreRegisters,
	chip8.OpcodeF065.Value: LoadRegisters,
}

// instructions holds the retrogolib instruction of every opcode.
var instructions = buildInstructions()

func buildInstructions() [opCount]*chip8.Instruction {
	var result [opCount]*chip8.Instruction
	for _, group := range chip8.Opcodes {
		for _, entry := range group {
			if op, ok := opcodeValues[entry.Info.Value]; ok {
				result[op] = entry.Instruction
			}
		}
	}
	return result
}

// classify looks up the word in the opcode group of its high nibble.
func classify(word uint16) Op {
	nibble := word >> 12

	switch nibble {
	case 0x0:
		// only the low byte selects, the address nibble is ignored
		word &= 0x00FF
	case 0x5, 0x9:
		// register compares match on the high nibble alone
		word &= 0xF000
	}

	for _, entry := range chip8.Opcodes[nibble] {
		if word&entry.Info.Mask == entry.Info.Value {
			return opcodeValues[entry.Info.Value]
		}
	}
	return Invalid
}

// Mnemonic returns the assembler mnemonic of the opcode, for example "ld",
// or an empty string for Invalid.
func (o Op) Mnemonic() string {
	if o >= opCount || instructions[o] == nil {
		return ""
	}
	return instructions[o].Name
}

// NNN returns the 12-bit address operand.
func (i Instruction) NNN() uint16 {
	return i.Word & 0x0FFF
}

// NN returns the 8-bit immediate operand.
func (i Instruction) NN() byte {
	return byte(i.Word & 0x00FF)
}

// N returns the 4-bit immediate operand.
func (i Instruction) N() byte {
	return byte(i.Word & 0x000F)
}

// X returns the register index encoded in bits 8-11.
func (i Instruction) X() uint8 {
	return uint8((i.Word & 0x0F00) >> 8)
}

// Y returns the register index encoded in bits 4-7.
func (i Instruction) Y() uint8 {
	return uint8((i.Word & 0x00F0) >> 4)
}
