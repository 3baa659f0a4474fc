package image

import (
	"bytes"
	"fmt"
	"os"

	"stackvm/pkg/linker"

	"github.com/BurntSushi/toml"
)

// ParseSource decodes a structured program from TOML:
//
//	entry = 0
//
//	[[funcs]]
//	locals = 0
//	ops = [
//	  { op = "const", arg = 1 },
//	  { op = "call", arg = 1 },
//	]
//
// Opcodes are checked while decoding; function and jump references are
// left to the linker.
func ParseSource(data []byte) (linker.Program, error) {
	var p linker.Program
	if err := toml.Unmarshal(data, &p); err != nil {
		return linker.Program{}, err
	}
	return p, nil
}

// LoadSource reads and decodes a TOML program file
func LoadSource(path string) (linker.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return linker.Program{}, fmt.Errorf("cannot read %s: %w", path, err)
	}

	p, err := ParseSource(data)
	if err != nil {
		return linker.Program{}, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return p, nil
}

// EncodeSource renders a structured program back to TOML
func EncodeSource(p linker.Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
