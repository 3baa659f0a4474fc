package vm

import (
	"fmt"

	"stackvm/pkg/color"
	"stackvm/pkg/isa"
)

func (m *VM) traceBefore(in isa.Instruction) {
	if m.trace == nil {
		return
	}
	fmt.Fprintf(m.trace, "%s %s\n", color.GrayText("[run]"), color.Instruction(string(in.Op), in.String()))
	fmt.Fprintf(m.trace, "%s %s\n", color.GrayText("[state]"), m.State())
}

func (m *VM) traceAfter() {
	if m.trace == nil {
		return
	}
	fmt.Fprintf(m.trace, "%s %s\n", color.GrayText("[result]"), m.State())
}

// State renders the registers and the live stack, e.g. "pc:4 fp:2 stack:[0 1 2]"
func (m *VM) State() string {
	return fmt.Sprintf("pc:%s fp:%s stack:%v",
		color.Address(m.pc),
		color.Address(m.fp),
		m.stack.Array())
}
