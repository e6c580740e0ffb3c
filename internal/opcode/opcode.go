// Package opcode classifies 16-bit CHIP-8 instruction words.
package opcode

// Op is the symbolic classification of an instruction word.
// The zero value is Invalid.
type Op uint8

// All CHIP-8 opcodes, the comment lists the nibble pattern of the instruction word.
const (
	Invalid              Op = iota
	ClearScreen             // 00E0
	Return                  // 00EE
	Jump                    // 1NNN
	Call                    // 2NNN
	SkipEqualByte           // 3XNN
	SkipNotEqualByte        // 4XNN
	SkipEqualRegister       // 5XY0
	LoadByte                // 6XNN
	AddByte                 // 7XNN
	LoadRegister            // 8XY0
	Or                      // 8XY1
	And                     // 8XY2
	Xor                     // 8XY3
	AddRegister             // 8XY4
	Sub                     // 8XY5
	ShiftRight              // 8XY6
	SubNegated              // 8XY7
	ShiftLeft               // 8XYE
	SkipNotEqualRegister    // 9XY0
	LoadIndex               // ANNN
	JumpOffset              // BNNN
	Random                  // CXNN
	Draw                    // DXYN
	SkipKeyPressed          // EX9E
	SkipKeyNotPressed       // EXA1
	LoadDelayTimer          // FX07
	WaitKeyRelease          // FX0A
	SetDelayTimer           // FX15
	SetSoundTimer           // FX18
	AddIndex                // FX1E
	LoadFontAddress         // FX29
	StoreBCD                // FX33
	StoreRegisters          // FX55
	LoadRegisters           // FX65

	opCount
)

// Count is the number of defined opcodes, excluding Invalid.
const Count = int(opCount) - 1

var patterns = [opCount]string{
	Invalid:              "invalid",
	ClearScreen:          "00E0",
	Return:               "00EE",
	Jump:                 "1NNN",
	Call:                 "2NNN",
	SkipEqualByte:        "3XNN",
	SkipNotEqualByte:     "4XNN",
	SkipEqualRegister:    "5XY0",
	LoadByte:             "6XNN",
	AddByte:              "7XNN",
	LoadRegister:         "8XY0",
	Or:                   "8XY1",
	And:                  "8XY2",
	Xor:                  "8XY3",
	AddRegister:          "8XY4",
	Sub:                  "8XY5",
	ShiftRight:           "8XY6",
	SubNegated:           "8XY7",
	ShiftLeft:            "8XYE",
	SkipNotEqualRegister: "9XY0",
	LoadIndex:            "ANNN",
	JumpOffset:           "BNNN",
	Random:               "CXNN",
	Draw:                 "DXYN",
	SkipKeyPressed:       "EX9E",
	SkipKeyNotPressed:    "EXA1",
	LoadDelayTimer:       "FX07",
	WaitKeyRelease:       "FX0A",
	SetDelayTimer:        "FX15",
	SetSoundTimer:        "FX18",
	AddIndex:             "FX1E",
	LoadFontAddress:      "FX29",
	StoreBCD:             "FX33",
	StoreRegisters:       "FX55",
	LoadRegisters:        "FX65",
}

// String returns the nibble pattern of the opcode, for example "8XY4".
func (o Op) String() string {
	if o >= opCount {
		return "unknown"
	}
	return patterns[o]
}

// Valid returns whether the opcode is a defined instruction.
func (o Op) Valid() bool {
	return o != Invalid && o < opCount
}

// Ops returns all defined opcodes in pattern order.
func Ops() []Op {
	ops := make([]Op, 0, Count)
	for op := Invalid + 1; op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}
