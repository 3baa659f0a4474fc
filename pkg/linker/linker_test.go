package linker_test

import (
	"errors"
	"testing"

	"stackvm/pkg/isa"
	"stackvm/pkg/linker"
)

func gcd() linker.Program {
	return linker.Program{
		Entry: 0,
		Funcs: []linker.Function{
			{Ops: []linker.Op{
				linker.PushConst(182),
				linker.PushConst(1029),
				linker.Call(1),
				linker.Squash(2),
			}},
			{Ops: []linker.Op{
				linker.LoadArg(0),
				linker.PushConst(0),
				linker.Equal(),
				linker.JumpIf(5),
				linker.Jump(7),
				linker.LoadArg(1),
				linker.Jump(13),
				linker.LoadArg(0),
				linker.LoadArg(0),
				linker.LoadArg(1),
				linker.Mod(),
				linker.Call(1),
				linker.Squash(2),
			}},
		},
	}
}

func TestLinkGCD(t *testing.T) {
	flat, err := linker.Link(gcd())
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}

	expected := isa.Program{
		isa.Entry(1),
		isa.Frame(0),
		isa.PushConst(182),
		isa.PushConst(1029),
		isa.Call(7),
		isa.Squash(2),
		isa.Return(),
		isa.Frame(0),
		isa.LoadArg(0),
		isa.PushConst(0),
		isa.Equal(),
		isa.JumpIf(13),
		isa.Jump(15),
		isa.LoadArg(1),
		isa.Jump(21),
		isa.LoadArg(0),
		isa.LoadArg(0),
		isa.LoadArg(1),
		isa.Mod(),
		isa.Call(7),
		isa.Squash(2),
		isa.Return(),
	}

	if len(flat) != len(expected) {
		t.Fatalf("expected %d instructions, got %d", len(expected), len(flat))
	}
	for i := range expected {
		if flat[i] != expected[i] {
			t.Errorf("instruction %d: expected %s, got %s", i, expected[i], flat[i])
		}
	}
}

func TestLayout(t *testing.T) {
	p := linker.Program{
		Funcs: []linker.Function{
			{},
			{Ops: []linker.Op{linker.Add()}},
			{Ops: []linker.Op{linker.PushConst(1), linker.PushConst(2)}},
		},
	}

	starts := linker.Layout(p)
	expected := []uint{1, 3, 6}
	for i := range expected {
		if starts[i] != expected[i] {
			t.Errorf("func %d: expected start %d, got %d", i, expected[i], starts[i])
		}
	}
}

// Every resolved reference must land where the structured program pointed
func TestLinkResolvesReferences(t *testing.T) {
	p := linker.Program{
		Entry: 2,
		Funcs: []linker.Function{
			{Locals: 1, Ops: []linker.Op{linker.LoadArg(0), linker.JumpIf(3), linker.PushConst(1), linker.Call(1)}},
			{Locals: 0, Ops: []linker.Op{linker.PushConst(2), linker.Jump(0)}},
			{Locals: 3, Ops: []linker.Op{linker.PushConst(0), linker.Call(0), linker.Squash(2), linker.Jump(3)}},
		},
	}

	flat, err := linker.Link(p)
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}

	starts := linker.Layout(p)

	if flat[0] != isa.Entry(starts[p.Entry]) {
		t.Errorf("entry: expected %s, got %s", isa.Entry(starts[p.Entry]), flat[0])
	}

	for fi, fn := range p.Funcs {
		start := starts[fi]
		if flat[start] != isa.Frame(fn.Locals) {
			t.Errorf("func %d: expected %s at %d, got %s", fi, isa.Frame(fn.Locals), start, flat[start])
		}
		end := start + uint(len(fn.Ops)) + 1
		if flat[end].Op != isa.OpReturn {
			t.Errorf("func %d: expected ret at %d, got %s", fi, end, flat[end])
		}

		for oi, op := range fn.Ops {
			got := flat[start+1+uint(oi)]
			switch op.Op {
			case isa.OpCall:
				if flat[got.Arg].Op != isa.OpFrame || got.Arg != starts[op.Arg] {
					t.Errorf("func %d op %d: call resolved to %d", fi, oi, got.Arg)
				}
			case isa.OpJump, isa.OpJumpIf:
				if got.Arg <= start || got.Arg > end {
					t.Errorf("func %d op %d: jump to %d leaves function [%d, %d]", fi, oi, got.Arg, start, end)
				}
				if got.Arg != start+1+op.Arg {
					t.Errorf("func %d op %d: expected jump to %d, got %d", fi, oi, start+1+op.Arg, got.Arg)
				}
			default:
				if got.Op != op.Op || got.Arg != op.Arg {
					t.Errorf("func %d op %d: expected %v, got %s", fi, oi, op, got)
				}
			}
		}
	}
}

func TestLinkErrors(t *testing.T) {
	tests := []struct {
		program  linker.Program
		expected error
		fn, op   int
		desc     string
	}{
		{linker.Program{}, linker.ErrNoFunctions, -1, -1, "no functions"},
		{linker.Program{Entry: 1, Funcs: []linker.Function{{}}}, linker.ErrUndefinedEntry, -1, -1, "entry out of range"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{linker.PushConst(1), linker.Call(3)}}}}, linker.ErrUndefinedFunction, 0, 1, "call out of range"},
		{linker.Program{Funcs: []linker.Function{{}, {Ops: []linker.Op{linker.Jump(2)}}}}, linker.ErrJumpOutOfRange, 1, 0, "jump past return"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{linker.PushConst(0), linker.JumpIf(9)}}}}, linker.ErrJumpOutOfRange, 0, 1, "conditional jump past return"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{{Op: isa.OpFrame, Arg: 1}}}}}, linker.ErrInvalidOp, 0, 0, "explicit frame"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{{Op: isa.OpEntry}}}}}, linker.ErrInvalidOp, 0, 0, "explicit entry"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{{Op: "sub"}}}}}, linker.ErrInvalidOp, 0, 0, "unknown opcode"},
		{linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{linker.Squash(0)}}}}, linker.ErrInvalidOperand, 0, 0, "squash 0"},
	}

	for _, test := range tests {
		flat, err := linker.Link(test.program)
		if !errors.Is(err, test.expected) {
			t.Errorf("%s: expected %v, got %v", test.desc, test.expected, err)
			continue
		}
		if flat != nil {
			t.Errorf("%s: expected no output on failure", test.desc)
		}

		var linkErr *linker.LinkError
		if !errors.As(err, &linkErr) {
			t.Errorf("%s: expected *LinkError, got %T", test.desc, err)
			continue
		}
		if linkErr.Func != test.fn || linkErr.Op != test.op {
			t.Errorf("%s: expected position %d/%d, got %d/%d", test.desc, test.fn, test.op, linkErr.Func, linkErr.Op)
		}
	}
}

func TestJumpToEndLandsOnReturn(t *testing.T) {
	p := linker.Program{Funcs: []linker.Function{{Ops: []linker.Op{linker.PushConst(1), linker.Jump(2)}}}}

	flat, err := linker.Link(p)
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	if target := flat[3].Arg; flat[target].Op != isa.OpReturn {
		t.Errorf("expected jump to land on ret, got %s", flat[target])
	}
}
