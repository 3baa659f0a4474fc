package image

import (
	"errors"
	"fmt"
	"os"

	"stackvm/pkg/isa"

	"github.com/fxamacker/cbor/v2"
)

const magic = "SVM1"

var (
	ErrBadMagic       = errors.New("not a linked image")
	ErrBadInstruction = errors.New("bad instruction in image")
)

// file is the on-disk layout of a linked image
type file struct {
	Magic string `cbor:"magic"`
	Code  []word `cbor:"code"`
}

// word encodes one instruction as a two-element array [op, arg]
type word struct {
	_   struct{} `cbor:",toarray"`
	Op  isa.Opcode
	Arg uint
}

// Canonical mode keeps images byte-for-byte reproducible
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Encode serializes a flat program to CBOR bytes
func Encode(p isa.Program) ([]byte, error) {
	f := file{Magic: magic, Code: make([]word, len(p))}
	for i, in := range p {
		if !in.Op.Valid() {
			return nil, fmt.Errorf("%w: %d: %q", ErrBadInstruction, i, string(in.Op))
		}
		f.Code[i] = word{Op: in.Op, Arg: in.Arg}
	}
	return cborEncMode.Marshal(f)
}

// Decode deserializes a flat program from CBOR bytes
func Decode(data []byte) (isa.Program, error) {
	var f file
	if err := cbor.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}

	if f.Magic != magic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, f.Magic)
	}

	p := make(isa.Program, len(f.Code))
	for i, w := range f.Code {
		if !w.Op.Valid() {
			return nil, fmt.Errorf("%w: %d: %q", ErrBadInstruction, i, string(w.Op))
		}
		p[i] = isa.Instruction{Op: w.Op, Arg: w.Arg}
	}

	return p, nil
}

// WriteFile writes a linked image to path
func WriteFile(path string, p isa.Program) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ReadFile reads a linked image from path
func ReadFile(path string) (isa.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
