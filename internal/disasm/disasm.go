// Package disasm implements a CHIP-8 disassembler that traces the execution flow
// of a program image and converts it to an assembly listing.
package disasm

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/retroenv/retrochip8/internal/memory"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/program"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	data         []byte
	prg          *program.Program
	instructions map[uint16]opcode.Instruction // decoded instructions by address

	branchDestinations set.Set[uint16] // set of all addresses that are branched to
	dataReferences     set.Set[uint16] // set of all addresses loaded into the index register

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the given program image, which gets
// located at the program start address.
func New(logger *log.Logger, data []byte, options options.Disassembler) (*Disasm, error) {
	if len(data) == 0 {
		return nil, memory.ErrEmptyProgram
	}
	if len(data) > memory.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", memory.ErrProgramTooLarge, len(data))
	}

	prg := program.New(memory.ProgramStart, len(data))
	prg.Checksum = crc32.ChecksumIEEE(data)

	return &Disasm{
		logger:              logger,
		options:             options,
		data:                data,
		prg:                 prg,
		instructions:        map[uint16]opcode.Instruction{},
		branchDestinations:  set.New[uint16](),
		dataReferences:      set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}, nil
}

// Process disassembles the program image.
func (dis *Disasm) Process(ctx context.Context) (*program.Program, error) {
	dis.addAddressToParse(memory.ProgramStart)
	dis.prg.Offsets[0].Label = "Start"

	if err := dis.followExecutionFlow(ctx); err != nil {
		return nil, err
	}

	dis.processData()
	dis.processJumpDestinations()
	dis.processDataReferences()

	dis.logger.Debug("Program disassembled",
		log.Int("instructions", len(dis.instructions)),
		log.Int("labels", len(dis.branchDestinations)))
	return dis.prg, nil
}

// followExecutionFlow parses opcodes and follows the execution flow to parse all code.
func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("disassembling: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]

		ins, ok := dis.decodeAt(address)
		if !ok {
			continue
		}

		offsetInfo := dis.prg.Offset(address)
		offsetInfo.SetType(program.CodeOffset)
		offsetInfo.Data = dis.data[address-memory.ProgramStart : address-memory.ProgramStart+opcode.Size]
		offsetInfo.Code = formatInstruction(ins)
		dis.prg.Offset(address + 1).SetType(program.CodeOffset)
		dis.instructions[address] = ins

		dis.handleControlFlow(address, ins)
	}
	return nil
}

// decodeAt decodes the instruction at the given address if the address holds a
// complete and valid instruction that does not overlap an already parsed one.
func (dis *Disasm) decodeAt(address uint16) (opcode.Instruction, bool) {
	index := int(address) - memory.ProgramStart
	if index+1 >= len(dis.data) {
		dis.logger.Debug("Instruction exceeds program", log.Hex("address", address))
		return opcode.Instruction{}, false
	}

	if dis.prg.Offset(address).IsType(program.CodeOffset) ||
		dis.prg.Offset(address+1).IsType(program.CodeOffset) {

		dis.logger.Debug("Branch into instruction detected", log.Hex("address", address))
		return opcode.Instruction{}, false
	}

	word := uint16(dis.data[index])<<8 | uint16(dis.data[index+1])
	ins := opcode.Decode(word)
	if !ins.Op.Valid() {
		dis.logger.Debug("Invalid instruction", log.Hex("address", address), log.Hex("word", word))
		return opcode.Instruction{}, false
	}
	return ins, true
}

// handleControlFlow adds all addresses that the instruction can continue execution at.
func (dis *Disasm) handleControlFlow(address uint16, ins opcode.Instruction) {
	next := address + opcode.Size

	switch ins.Op {
	case opcode.Jump:
		dis.addBranchDestination(ins.NNN(), program.JumpDestination)

	case opcode.Call:
		dis.addBranchDestination(ins.NNN(), program.CallDestination)
		dis.addAddressToParse(next)

	case opcode.Return, opcode.JumpOffset:
		// return address or computed destination is unknown

	case opcode.SkipEqualByte, opcode.SkipNotEqualByte, opcode.SkipEqualRegister,
		opcode.SkipNotEqualRegister, opcode.SkipKeyPressed, opcode.SkipKeyNotPressed:
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + opcode.Size)

	case opcode.LoadIndex:
		if dis.prg.Offset(ins.NNN()) != nil {
			dis.dataReferences.Add(ins.NNN())
		}
		dis.addAddressToParse(next)

	default:
		dis.addAddressToParse(next)
	}
}

func (dis *Disasm) addBranchDestination(address uint16, typ program.OffsetType) {
	offsetInfo := dis.prg.Offset(address)
	if offsetInfo == nil {
		return // outside of the program image
	}
	offsetInfo.SetType(typ)
	dis.branchDestinations.Add(address)
	dis.addAddressToParse(address)
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if dis.prg.Offset(address) == nil || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// processData marks all offsets that are not part of an instruction as data.
func (dis *Disasm) processData() {
	for i := range dis.prg.Offsets {
		offsetInfo := &dis.prg.Offsets[i]
		if offsetInfo.IsType(program.CodeOffset) {
			continue
		}
		offsetInfo.SetType(program.DataOffset)
		offsetInfo.Data = dis.data[i : i+1]
	}
}
