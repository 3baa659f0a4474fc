package vm

import (
	"errors"
	"fmt"

	"stackvm/pkg/isa"
	"stackvm/pkg/stack"
)

var (
	ErrStackOverflow    = stack.ErrOverflow
	ErrStackUnderflow   = stack.ErrUnderflow
	ErrInvalidAddress   = errors.New("invalid address")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidOperand   = errors.New("invalid operand")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrEmptyProgram     = errors.New("empty program")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)

// Error is a runtime failure at a given instruction. The VM state is left
// as it was when the failure happened.
type Error struct {
	PC    uint
	Instr isa.Instruction
	Err   error
}

func (e *Error) Error() string {
	if e.Instr.Op == "" {
		return fmt.Sprintf("vm: pc %d: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("vm: pc %d (%s): %v", e.PC, e.Instr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
