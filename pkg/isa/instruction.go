package isa

import (
	"fmt"
	"strings"
)

type Opcode string

// List of machine operations
const (
	OpFrame      Opcode = "frame"
	OpReturn     Opcode = "ret"
	OpCall       Opcode = "call"
	OpLoadLocal  Opcode = "lload"
	OpStoreLocal Opcode = "lstore"
	OpLoadArg    Opcode = "aload"
	OpStoreArg   Opcode = "astore"
	OpSquash     Opcode = "squash"
	OpPushConst  Opcode = "const"
	OpAdd        Opcode = "add"
	OpMod        Opcode = "mod"
	OpEqual      Opcode = "eq"
	OpJumpIf     Opcode = "jmpif"
	OpJump       Opcode = "jmp"
	OpEntry      Opcode = "entry"
)

// opcodes maps each opcode to whether it carries an operand
var opcodes = map[Opcode]bool{
	OpFrame:      true,
	OpReturn:     false,
	OpCall:       true,
	OpLoadLocal:  true,
	OpStoreLocal: true,
	OpLoadArg:    true,
	OpStoreArg:   true,
	OpSquash:     true,
	OpPushConst:  true,
	OpAdd:        false,
	OpMod:        false,
	OpEqual:      false,
	OpJumpIf:     true,
	OpJump:       true,
	OpEntry:      true,
}

// Valid reports whether op is part of the instruction set
func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

// HasArg reports whether op carries an operand
func (op Opcode) HasArg() bool {
	return opcodes[op]
}

// IsBranch reports whether the operand of op is an absolute instruction address
func (op Opcode) IsBranch() bool {
	switch op {
	case OpCall, OpJump, OpJumpIf, OpEntry:
		return true
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler
func (op Opcode) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("unknown opcode %q", string(op))
	}
	return []byte(op), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; mnemonics are case-insensitive
func (op *Opcode) UnmarshalText(text []byte) error {
	parsed, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

// ParseOpcode maps a mnemonic to its opcode
func ParseOpcode(s string) (Opcode, error) {
	op := Opcode(strings.ToLower(strings.TrimSpace(s)))
	if !op.Valid() {
		return "", fmt.Errorf("unknown opcode %q", s)
	}
	return op, nil
}

// Instruction is one flat, fully resolved machine instruction.
// Arg is zero for opcodes that take no operand.
type Instruction struct {
	Op  Opcode
	Arg uint
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	if !i.Op.HasArg() {
		return string(i.Op)
	}
	return fmt.Sprintf("%s %d", i.Op, i.Arg)
}

// Program is a flat instruction sequence. Address 0 holds the entry
// instruction and doubles as the halt address.
type Program []Instruction

// Constructors for each instruction, handy when assembling by hand

func Frame(n uint) Instruction      { return Instruction{OpFrame, n} }
func Return() Instruction           { return Instruction{Op: OpReturn} }
func Call(addr uint) Instruction    { return Instruction{OpCall, addr} }
func LoadLocal(i uint) Instruction  { return Instruction{OpLoadLocal, i} }
func StoreLocal(i uint) Instruction { return Instruction{OpStoreLocal, i} }
func LoadArg(i uint) Instruction    { return Instruction{OpLoadArg, i} }
func StoreArg(i uint) Instruction   { return Instruction{OpStoreArg, i} }
func Squash(n uint) Instruction     { return Instruction{OpSquash, n} }
func PushConst(v uint) Instruction  { return Instruction{OpPushConst, v} }
func Add() Instruction              { return Instruction{Op: OpAdd} }
func Mod() Instruction              { return Instruction{Op: OpMod} }
func Equal() Instruction            { return Instruction{Op: OpEqual} }
func JumpIf(addr uint) Instruction  { return Instruction{OpJumpIf, addr} }
func Jump(addr uint) Instruction    { return Instruction{OpJump, addr} }
func Entry(addr uint) Instruction   { return Instruction{OpEntry, addr} }
