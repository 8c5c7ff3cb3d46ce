package vm

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dgryski/go-farm"
)

// Program is an encoded instruction stream together with its content
// fingerprint.
type Program struct {
	Code        []byte
	Fingerprint uint64
}

func NewProgram(code []byte) *Program {
	return &Program{
		Code:        code,
		Fingerprint: farm.Hash64(code),
	}
}

func LoadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Program, error) {
	code, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}
	return NewProgram(code), nil
}

// Stream returns a fresh seekable view of the program.
func (p *Program) Stream() io.ReadSeeker {
	return bytes.NewReader(p.Code)
}

func (p *Program) DebugPrint(w io.Writer) error {
	fmt.Fprintf(w, "; fingerprint %016x, %d bytes\n", p.Fingerprint, len(p.Code))
	return Disassemble(p.Stream(), w)
}
