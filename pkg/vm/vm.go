package vm

import (
	"io"

	"stackvm/pkg/isa"
	"stackvm/pkg/stack"
)

const DefaultStackSize = 1024

// VM executes a flat program against one fixed-capacity stack that holds
// both operands and call frames.
type VM struct {
	program isa.Program // flat program being executed

	fp uint // slot holding the caller's saved frame pointer
	pc uint // address of the next instruction; 0 halts

	stack *stack.Stack // operand and call stack; its size is sp

	stackSize  int       // capacity in slots
	zeroLocals bool      // zero the locals area on frame entry
	trace      io.Writer // per-step diagnostic trace (nil = off)

	maxSteps int  // maximum steps (0 = unlimited)
	steps    int  // steps executed
	halted   bool // a successful step returned pc to 0
}

type Option func(*VM)

// WithStackSize sets the stack capacity in slots
func WithStackSize(n int) Option {
	return func(m *VM) { m.stackSize = n }
}

// WithMaxSteps sets a maximum number of steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(m *VM) { m.maxSteps = n }
}

// WithZeroLocals makes frame entry zero its locals. Without it, a local
// read before its first store yields whatever an earlier frame left there.
func WithZeroLocals(zero bool) Option {
	return func(m *VM) { m.zeroLocals = zero }
}

// WithTrace writes a trace of every executed instruction and the live stack to w
func WithTrace(w io.Writer) Option {
	return func(m *VM) { m.trace = w }
}

// New creates a VM for the given flat program
func New(program isa.Program, opts ...Option) *VM {
	m := &VM{
		program:   append(isa.Program(nil), program...),
		stackSize: DefaultStackSize,
	}

	for _, o := range opts {
		o(m)
	}

	if m.stackSize < 0 {
		m.stackSize = 0
	}
	m.stack = stack.NewStack(m.stackSize)

	return m
}

// Load replaces the current program with a new one, resetting state
func (m *VM) Load(program isa.Program) {
	m.program = append(isa.Program(nil), program...)
	m.Reset()
}

// Reset clears registers, the stack and the step counter
func (m *VM) Reset() {
	m.fp = 0
	m.pc = 0
	m.steps = 0
	m.halted = false
	m.stack = stack.NewStack(m.stackSize)
}

// Program returns the loaded program
func (m *VM) Program() isa.Program {
	return m.program
}

// PC returns the program counter
func (m *VM) PC() uint {
	return m.pc
}

// FP returns the frame pointer
func (m *VM) FP() uint {
	return m.fp
}

// SP returns the stack pointer, one past the highest live slot
func (m *VM) SP() uint {
	return uint(m.stack.Size())
}

// Steps returns the number of instructions executed since the last reset
func (m *VM) Steps() int {
	return m.steps
}

// Stack returns a copy of the live stack slots, bottom first
func (m *VM) Stack() []uint {
	return m.stack.Array()
}

// Halted reports whether execution has returned to the halt address
func (m *VM) Halted() bool {
	return m.halted
}

// Step executes a single instruction, returning (halted, error). Once the
// VM has halted, Step does nothing and keeps reporting halted.
func (m *VM) Step() (bool, error) {
	if m.Halted() {
		return true, nil
	}

	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	err := m.exec()
	m.steps++
	if err != nil {
		return false, err
	}

	m.halted = m.pc == 0
	return m.halted, nil
}

// Run executes until the program counter returns to 0 and returns the
// value left on top of the stack
func (m *VM) Run() (uint, error) {
	if len(m.program) == 0 {
		return 0, ErrEmptyProgram
	}

	for {
		halted, err := m.Step()
		if err != nil {
			return 0, err
		}

		if halted {
			return m.Result()
		}
	}
}

// Result returns the value on top of the stack
func (m *VM) Result() (uint, error) {
	v, err := m.stack.Peek()
	if err != nil {
		return 0, &Error{PC: m.pc, Err: ErrStackUnderflow}
	}
	return v, nil
}

// Exec runs a flat program with default options
func Exec(program isa.Program) (uint, error) {
	return New(program).Run()
}
