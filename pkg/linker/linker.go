package linker

import (
	"stackvm/pkg/isa"

	"github.com/charmbracelet/log"
)

// Layout returns the absolute start address of every function, in program
// order. Address 0 is taken by the entry instruction, and each function
// occupies its ops plus the implied frame and return.
func Layout(p Program) []uint {
	starts := make([]uint, len(p.Funcs))
	addr := uint(1)
	for i, fn := range p.Funcs {
		starts[i] = addr
		addr += uint(len(fn.Ops)) + 2
	}
	return starts
}

// Link resolves a structured program into a flat program. It validates the
// whole program first and returns a *LinkError on the first problem, so no
// partially resolved output is ever produced.
func Link(p Program) (isa.Program, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}

	starts := Layout(p)
	size := starts[len(starts)-1] + uint(len(p.Funcs[len(p.Funcs)-1].Ops)) + 2

	out := make(isa.Program, 0, size)
	out = append(out, isa.Entry(starts[p.Entry]))

	for fi, fn := range p.Funcs {
		out = append(out, isa.Frame(fn.Locals))
		for _, op := range fn.Ops {
			out = append(out, resolve(op, starts, fi))
		}
		out = append(out, isa.Return())
	}

	log.Debug("Linked program", "funcs", len(p.Funcs), "entry", starts[p.Entry], "size", len(out))

	return out, nil
}

// resolve translates one structured op of function fi into its flat form
func resolve(op Op, starts []uint, fi int) isa.Instruction {
	switch op.Op {
	case isa.OpCall:
		return isa.Call(starts[op.Arg])
	case isa.OpJump, isa.OpJumpIf:
		// +1 skips the function's own frame instruction
		return isa.Instruction{Op: op.Op, Arg: starts[fi] + 1 + op.Arg}
	default:
		return isa.Instruction{Op: op.Op, Arg: op.Arg}
	}
}

// Validate checks every function and jump reference of p against its tables
func Validate(p Program) error {
	if len(p.Funcs) == 0 {
		return &LinkError{Func: -1, Op: -1, Err: ErrNoFunctions}
	}

	if p.Entry >= uint(len(p.Funcs)) {
		return newLinkError(-1, -1, "%w: entry %d, %d functions", ErrUndefinedEntry, p.Entry, len(p.Funcs))
	}

	for fi, fn := range p.Funcs {
		for oi, op := range fn.Ops {
			switch op.Op {
			case isa.OpCall:
				if op.Arg >= uint(len(p.Funcs)) {
					return newLinkError(fi, oi, "%w: %d", ErrUndefinedFunction, op.Arg)
				}

			case isa.OpJump, isa.OpJumpIf:
				// len(Ops) is allowed and lands on the function's return
				if op.Arg > uint(len(fn.Ops)) {
					return newLinkError(fi, oi, "%w: %d of %d ops", ErrJumpOutOfRange, op.Arg, len(fn.Ops))
				}

			case isa.OpSquash:
				if op.Arg == 0 {
					return newLinkError(fi, oi, "%w: squash 0", ErrInvalidOperand)
				}

			case isa.OpFrame, isa.OpReturn, isa.OpEntry:
				return newLinkError(fi, oi, "%w: %s", ErrInvalidOp, op.Op)

			default:
				if !op.Op.Valid() {
					return newLinkError(fi, oi, "%w: unknown opcode %q", ErrInvalidOp, string(op.Op))
				}
			}
		}
	}

	return nil
}
