package linker

import "stackvm/pkg/isa"

// Op is one structured instruction. For OpCall, Arg is a function index;
// for OpJump and OpJumpIf, Arg is an index into the enclosing function's Ops.
type Op struct {
	Op  isa.Opcode `toml:"op"`
	Arg uint       `toml:"arg"`
}

type Function struct {
	Locals uint `toml:"locals"` // number of local slots reserved by the frame
	Ops    []Op `toml:"ops"`    // body, without the implied frame and return
}

type Program struct {
	Entry uint       `toml:"entry"` // index of the function run first
	Funcs []Function `toml:"funcs"`
}

// Helpers for building structured programs in code

func Call(fn uint) Op       { return Op{isa.OpCall, fn} }
func LoadLocal(i uint) Op   { return Op{isa.OpLoadLocal, i} }
func StoreLocal(i uint) Op  { return Op{isa.OpStoreLocal, i} }
func LoadArg(i uint) Op     { return Op{isa.OpLoadArg, i} }
func StoreArg(i uint) Op    { return Op{isa.OpStoreArg, i} }
func Squash(n uint) Op      { return Op{isa.OpSquash, n} }
func PushConst(v uint) Op   { return Op{isa.OpPushConst, v} }
func Add() Op               { return Op{Op: isa.OpAdd} }
func Mod() Op               { return Op{Op: isa.OpMod} }
func Equal() Op             { return Op{Op: isa.OpEqual} }
func JumpIf(index uint) Op  { return Op{isa.OpJumpIf, index} }
func Jump(index uint) Op    { return Op{isa.OpJump, index} }
