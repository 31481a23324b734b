package vm

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned by a call opcode (2NNN) when all 16
	// stack levels are in use.
	ErrStackOverflow = errors.New("call stack overflow")

	// ErrStackUnderflow is returned by a return opcode (00EE) executed with
	// an empty call stack.
	ErrStackUnderflow = errors.New("call stack underflow")

	// ErrInfiniteLoop is returned by a jump opcode (1NNN) that targets
	// itself. The machine state is valid; the program simply cannot make
	// further progress.
	ErrInfiniteLoop = errors.New("infinite loop")
)

// UndefinedInstructionError is returned when no dispatch pattern matches the
// fetched opcode. There are no defined semantics for such an opcode, so the
// caller must treat it as fatal.
type UndefinedInstructionError struct {
	Opcode uint16
}

func (e *UndefinedInstructionError) Error() string {
	return fmt.Sprintf("undefined instruction 0x%04X", e.Opcode)
}
