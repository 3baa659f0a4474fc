package vm

import (
	"errors"
	"fmt"

	"stackvm/pkg/isa"
	"stackvm/pkg/stack"

	"github.com/charmbracelet/log"
)

// exec fetches the instruction at pc and executes it
func (m *VM) exec() error {
	pc := m.pc
	if pc >= uint(len(m.program)) {
		return &Error{PC: pc, Err: fmt.Errorf("%w: pc %d outside program of %d instructions", ErrInvalidAddress, pc, len(m.program))}
	}

	in := m.program[pc]
	m.traceBefore(in)
	log.Debug("Step", "pc", pc, "instr", in.String(), "fp", m.fp, "sp", m.stack.Size())

	if err := m.apply(in); err != nil {
		return &Error{PC: pc, Instr: in, Err: err}
	}

	m.traceAfter()
	return nil
}

// apply performs the effect of one instruction on the registers and stack
func (m *VM) apply(in isa.Instruction) error {
	switch in.Op {
	case isa.OpEntry:
		// the entry call returns to the halt address
		if err := m.push(0); err != nil {
			return err
		}
		m.pc = in.Arg
		return nil

	case isa.OpFrame:
		if err := m.push(m.fp); err != nil {
			return err
		}
		m.fp = uint(m.stack.Size() - 1)

		free := uint(m.stack.Cap() - m.stack.Size())
		if in.Arg > free {
			return fmt.Errorf("%w: frame needs %d locals, %d slots free", ErrStackOverflow, in.Arg, free)
		}
		base := m.stack.Size()
		if err := m.stack.Resize(base + int(in.Arg)); err != nil {
			return err
		}
		if m.zeroLocals {
			m.stack.Clear(base, base+int(in.Arg))
		}
		m.pc++
		return nil

	case isa.OpReturn:
		res, err := m.stack.Peek()
		if err != nil {
			return err
		}
		ret, err := m.slot(int(m.fp) - 1)
		if err != nil {
			return err
		}
		savedFP, err := m.slot(int(m.fp))
		if err != nil {
			return err
		}
		if err := m.stack.Resize(int(m.fp)); err != nil {
			return err
		}
		m.pc = ret
		m.fp = savedFP
		return m.push(res)

	case isa.OpCall:
		if err := m.push(m.pc + 1); err != nil {
			return err
		}
		m.pc = in.Arg
		return nil

	case isa.OpLoadLocal:
		i, err := m.localIndex(in.Arg)
		if err != nil {
			return err
		}
		v, err := m.slot(i)
		if err != nil {
			return err
		}
		return m.next(m.push(v))

	case isa.OpStoreLocal:
		v, err := m.pop()
		if err != nil {
			return err
		}
		i, err := m.localIndex(in.Arg)
		if err != nil {
			return err
		}
		return m.next(m.setSlot(i, v))

	case isa.OpLoadArg:
		i, err := m.argIndex(in.Arg)
		if err != nil {
			return err
		}
		v, err := m.slot(i)
		if err != nil {
			return err
		}
		return m.next(m.push(v))

	case isa.OpStoreArg:
		v, err := m.pop()
		if err != nil {
			return err
		}
		i, err := m.argIndex(in.Arg)
		if err != nil {
			return err
		}
		return m.next(m.setSlot(i, v))

	case isa.OpSquash:
		if in.Arg == 0 {
			return fmt.Errorf("%w: squash 0", ErrInvalidOperand)
		}
		res, err := m.pop()
		if err != nil {
			return err
		}
		drop := in.Arg - 1
		if drop > uint(m.stack.Size()) {
			return fmt.Errorf("%w: squash %d with %d live slots", ErrStackUnderflow, in.Arg, m.stack.Size()+1)
		}
		if err := m.stack.Resize(m.stack.Size() - int(drop)); err != nil {
			return err
		}
		return m.next(m.push(res))

	case isa.OpPushConst:
		return m.next(m.push(in.Arg))

	case isa.OpAdd:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		return m.next(m.push(x + y))

	case isa.OpMod:
		// x, popped first, is the dividend
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		if y == 0 {
			return ErrDivisionByZero
		}
		return m.next(m.push(x % y))

	case isa.OpEqual:
		x, y, err := m.pop2()
		if err != nil {
			return err
		}
		var eq uint
		if x == y {
			eq = 1
		}
		return m.next(m.push(eq))

	case isa.OpJumpIf:
		x, err := m.pop()
		if err != nil {
			return err
		}
		if x != 0 {
			m.pc = in.Arg
		} else {
			m.pc++
		}
		return nil

	case isa.OpJump:
		m.pc = in.Arg
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOpcode, string(in.Op))
	}
}

// next advances pc when the instruction's effect succeeded
func (m *VM) next(err error) error {
	if err != nil {
		return err
	}
	m.pc++
	return nil
}

func (m *VM) push(v uint) error {
	return m.stack.Push(v)
}

func (m *VM) pop() (uint, error) {
	return m.stack.Pop()
}

// pop2 pops x then y
func (m *VM) pop2() (x, y uint, err error) {
	if x, err = m.pop(); err != nil {
		return 0, 0, err
	}
	if y, err = m.pop(); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// localIndex returns the stack slot of local i in the active frame. The
// slot must lie between the saved frame pointer and sp.
func (m *VM) localIndex(i uint) (int, error) {
	sp := uint(m.stack.Size())
	if sp <= m.fp+1 || i >= sp-m.fp-1 {
		return 0, fmt.Errorf("%w: local %d, fp %d, sp %d", ErrInvalidAddress, i, m.fp, sp)
	}
	return int(m.fp + 1 + i), nil
}

// argIndex returns the stack slot of argument i in the active frame. The
// slot must lie below the return address.
func (m *VM) argIndex(i uint) (int, error) {
	if m.fp < 2 || i > m.fp-2 {
		return 0, fmt.Errorf("%w: argument %d, fp %d", ErrInvalidAddress, i, m.fp)
	}
	return int(m.fp - 2 - i), nil
}

// slot reads a live stack slot
func (m *VM) slot(i int) (uint, error) {
	v, err := m.stack.Get(i)
	if errors.Is(err, stack.ErrOutOfRange) {
		return 0, fmt.Errorf("%w: stack slot %d, sp %d", ErrInvalidAddress, i, m.stack.Size())
	}
	return v, err
}

// setSlot writes a live stack slot
func (m *VM) setSlot(i int, v uint) error {
	err := m.stack.Set(i, v)
	if errors.Is(err, stack.ErrOutOfRange) {
		return fmt.Errorf("%w: stack slot %d, sp %d", ErrInvalidAddress, i, m.stack.Size())
	}
	return err
}
