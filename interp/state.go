package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/shamaton/msgpack/v2"
)

// Snapshot is a serializable summary of an interpreter after a run.
type Snapshot struct {
	InterpID    string
	Fingerprint uint64
	Functions   []FunctionInfo
	Classes     []ClassInfo
	Globals     []GlobalInfo
	LiveHandles int
}

type FunctionInfo struct {
	Name        string
	Params      []string
	Invocations int
	Native      bool
}

type ClassInfo struct {
	Name    string
	Super   string
	Fields  []string
	Methods []string
	Type    uint64
}

type GlobalInfo struct {
	Name  string
	Value string
}

func (in *Interp) Snapshot() *Snapshot {
	s := &Snapshot{
		InterpID:    in.ID,
		LiveHandles: in.heap.Live(),
	}
	if in.program != nil {
		s.Fingerprint = in.program.Fingerprint
	}
	for _, fn := range in.functions {
		s.Functions = append(s.Functions, FunctionInfo{
			Name:        fn.Name,
			Params:      fn.Params,
			Invocations: fn.Invocations,
			Native:      fn.IsNative(),
		})
	}
	for _, c := range in.classes {
		info := ClassInfo{Name: c.Name, Super: c.Super, Fields: c.Fields, Type: uint64(c.Type)}
		for _, m := range c.Methods {
			info.Methods = append(info.Methods, m.Name)
		}
		s.Classes = append(s.Classes, info)
	}
	for _, name := range in.scopes.Names(GlobalScope) {
		s.Globals = append(s.Globals, GlobalInfo{
			Name:  name,
			Value: in.Format(in.scopes.Peek(GlobalScope, name)),
		})
	}
	return s
}

func (s *Snapshot) Serialize(w io.Writer) error {
	return msgpack.MarshalWrite(w, s)
}

func (s *Snapshot) Deserialize(r io.Reader) error {
	return msgpack.UnmarshalRead(r, s)
}

// PrettyPrint returns a readable listing of the snapshot.
func (s *Snapshot) PrettyPrint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interpreter %s (program %016x)\n", s.InterpID, s.Fingerprint)
	b.WriteString("Global Variables:\n")
	if len(s.Globals) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, g := range s.Globals {
		fmt.Fprintf(&b, "  %s = %s\n", g.Name, g.Value)
	}
	b.WriteString("Functions:\n")
	for _, f := range s.Functions {
		kind := ""
		if f.Native {
			kind = " [native]"
		}
		fmt.Fprintf(&b, "  %s(%s)%s calls=%d\n", f.Name, strings.Join(f.Params, ", "), kind, f.Invocations)
	}
	if len(s.Classes) > 0 {
		b.WriteString("Classes:\n")
	}
	for _, c := range s.Classes {
		super := ""
		if c.Super != "" {
			super = " : " + c.Super
		}
		fmt.Fprintf(&b, "  %s%s fields(%s) methods(%s)\n", c.Name, super, strings.Join(c.Fields, ", "), strings.Join(c.Methods, ", "))
	}
	fmt.Fprintf(&b, "Live handles: %d\n", s.LiveHandles)
	return b.String()
}
