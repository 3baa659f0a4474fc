package linker

import (
	"errors"
	"fmt"
)

var (
	ErrNoFunctions       = errors.New("program has no functions")
	ErrUndefinedEntry    = errors.New("entry function not defined")
	ErrUndefinedFunction = errors.New("call to undefined function")
	ErrJumpOutOfRange    = errors.New("jump target outside function")
	ErrInvalidOp         = errors.New("operation not allowed in function body")
	ErrInvalidOperand    = errors.New("invalid operand")
)

// LinkError reports where in the structured program linking failed.
// Op is -1 when the error is not tied to a single operation.
type LinkError struct {
	Func int
	Op   int
	Err  error
}

func (e *LinkError) Error() string {
	if e.Func < 0 {
		return fmt.Sprintf("link: %v", e.Err)
	}
	if e.Op < 0 {
		return fmt.Sprintf("link: func %d: %v", e.Func, e.Err)
	}
	return fmt.Sprintf("link: func %d op %d: %v", e.Func, e.Op, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

func newLinkError(fn, op int, format string, args ...any) *LinkError {
	return &LinkError{Func: fn, Op: op, Err: fmt.Errorf(format, args...)}
}
