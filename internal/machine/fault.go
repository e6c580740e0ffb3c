package machine

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/opcode"
)

var (
	// ErrInvalidOpcode is the cause of a fault for words that decode to no instruction.
	ErrInvalidOpcode = errors.New("invalid opcode")
	// ErrUnhandledOpcode is the cause of a fault for decoded opcodes the executor does not know.
	ErrUnhandledOpcode = errors.New("unhandled opcode")
	// ErrNoProgram is returned when stepping a machine without a loaded program.
	ErrNoProgram = errors.New("no program loaded")
)

// Fault is a stop condition raised while executing an instruction.
type Fault struct {
	Address uint16    // address of the faulting instruction
	Word    uint16    // raw instruction word, 0 if it could not be fetched
	Op      opcode.Op // decoded opcode
	Err     error     // cause
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at $%03X executing $%04X (%s): %v", f.Address, f.Word, f.Op, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
