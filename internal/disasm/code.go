package disasm

import (
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%03x"
	labelNaming = "_label_%03x"
	dataNaming  = "_data_%03x"
)

// processJumpDestinations names all jump destinations and updates the jump and call
// instructions to use the label instead of the address.
func (dis *Disasm) processJumpDestinations() {
	destinations := sortedAddresses(dis.branchDestinations)

	for _, address := range destinations {
		offsetInfo := dis.prg.Offset(address)

		name := offsetInfo.Label
		if name == "" {
			if offsetInfo.IsType(program.CallDestination) {
				name = fmt.Sprintf(funcNaming, address)
			} else {
				name = fmt.Sprintf(labelNaming, address)
			}
			offsetInfo.Label = name
		}

		// the destination is inside an instruction or holds no valid instruction
		if len(offsetInfo.Data) != opcode.Size {
			offsetInfo.LabelComment = "branch destination is not a valid instruction"
		}
	}

	for address, ins := range dis.instructions {
		if ins.Op != opcode.Jump && ins.Op != opcode.Call {
			continue
		}
		target := dis.prg.Offset(ins.NNN())
		if target == nil || target.Label == "" {
			continue
		}
		dis.prg.Offset(address).Code = fmt.Sprintf("%s %s", ins.Op.Mnemonic(), target.Label)
	}
}

// processDataReferences names data offsets that get loaded into the index register.
func (dis *Disasm) processDataReferences() {
	for _, address := range sortedAddresses(dis.dataReferences) {
		offsetInfo := dis.prg.Offset(address)
		if offsetInfo.Label != "" || !offsetInfo.IsType(program.DataOffset) {
			continue
		}
		offsetInfo.SetType(program.DataReference)
		offsetInfo.Label = fmt.Sprintf(dataNaming, address)
	}

	for address, ins := range dis.instructions {
		if ins.Op != opcode.LoadIndex {
			continue
		}
		target := dis.prg.Offset(ins.NNN())
		if target == nil || !target.IsType(program.DataReference) {
			continue
		}
		dis.prg.Offset(address).Code = fmt.Sprintf("%s I, %s", ins.Op.Mnemonic(), target.Label)
	}
}

func sortedAddresses(addresses set.Set[uint16]) []uint16 {
	sorted := make([]uint16, 0, len(addresses))
	for address := range addresses {
		sorted = append(sorted, address)
	}
	slices.Sort(sorted)
	return sorted
}

// formatInstruction formats an instruction with its parameters.
func formatInstruction(ins opcode.Instruction) string {
	name := ins.Op.Mnemonic()
	if params := formatParameters(ins); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

func formatParameters(ins opcode.Instruction) string {
	x, y := ins.X(), ins.Y()

	switch ins.Op {
	case opcode.Jump, opcode.Call:
		return fmt.Sprintf("$%03X", ins.NNN())
	case opcode.JumpOffset:
		return fmt.Sprintf("V0, $%03X", ins.NNN())
	case opcode.LoadIndex:
		return fmt.Sprintf("I, $%03X", ins.NNN())

	case opcode.SkipEqualByte, opcode.SkipNotEqualByte, opcode.LoadByte, opcode.AddByte, opcode.Random:
		return fmt.Sprintf("V%X, $%02X", x, ins.NN())

	case opcode.SkipEqualRegister, opcode.SkipNotEqualRegister, opcode.LoadRegister,
		opcode.Or, opcode.And, opcode.Xor, opcode.AddRegister, opcode.Sub, opcode.SubNegated:
		return fmt.Sprintf("V%X, V%X", x, y)

	case opcode.ShiftRight, opcode.ShiftLeft, opcode.SkipKeyPressed, opcode.SkipKeyNotPressed:
		return fmt.Sprintf("V%X", x)

	case opcode.Draw:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, ins.N())

	case opcode.LoadDelayTimer:
		return fmt.Sprintf("V%X, DT", x)
	case opcode.WaitKeyRelease:
		return fmt.Sprintf("V%X, K", x)
	case opcode.SetDelayTimer:
		return fmt.Sprintf("DT, V%X", x)
	case opcode.SetSoundTimer:
		return fmt.Sprintf("ST, V%X", x)
	case opcode.AddIndex:
		return fmt.Sprintf("I, V%X", x)
	case opcode.LoadFontAddress:
		return fmt.Sprintf("F, V%X", x)
	case opcode.StoreBCD:
		return fmt.Sprintf("B, V%X", x)
	case opcode.StoreRegisters:
		return fmt.Sprintf("[I], V%X", x)
	case opcode.LoadRegisters:
		return fmt.Sprintf("V%X, [I]", x)

	default:
		return ""
	}
}
