package native

import (
	"errors"
	"fmt"
	"plugin"

	"github.com/rs/zerolog/log"
	"github.com/starbytes-lang/starbytes/object"
)

// EntrySymbol is the symbol every extension exports. Its value must be a
// func() *Module.
const EntrySymbol = "StarbytesModuleMain"

// Variadic marks a callback that accepts any number of arguments.
const Variadic = -1

var (
	ErrOpen     = errors.New("cannot open native module")
	ErrNoEntry  = errors.New("native module has no entry point")
	ErrBadEntry = errors.New("native module entry point has the wrong type")
)

// Callback implements a native function. Arguments are borrowed; the returned
// handle, if any, is owned by the caller.
type Callback func(h *object.Heap, args []*object.Object) (*object.Object, error)

type FuncDesc struct {
	Name     string
	Callback Callback
	ArgCount int
}

// Module is the descriptor table an extension hands back from its entry point.
type Module struct {
	Name  string
	Path  string
	Funcs []FuncDesc
}

func NewModule(name string, funcs ...FuncDesc) *Module {
	return &Module{Name: name, Funcs: funcs}
}

// Lookup finds a callback by name. Later entries win over earlier ones.
func (m *Module) Lookup(name string) (FuncDesc, bool) {
	for i := len(m.Funcs) - 1; i >= 0; i-- {
		if m.Funcs[i].Name == name {
			return m.Funcs[i], true
		}
	}
	return FuncDesc{}, false
}

// Load opens a Go plugin and resolves its entry point.
func Load(path string) (*Module, error) {
	log.Debug().Str("path", path).Msg("loading native module")
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	sym, err := p.Lookup(EntrySymbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoEntry, path, err)
	}
	m, err := resolveEntry(sym)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	for _, f := range m.Funcs {
		log.Trace().Str("module", m.Name).Str("func", f.Name).Int("args", f.ArgCount).Msg("native function")
	}
	return m, nil
}

// resolveEntry calls the entry function behind sym, which is either the
// function itself or a pointer to a function variable.
func resolveEntry(sym any) (*Module, error) {
	var entry func() *Module
	switch fn := sym.(type) {
	case func() *Module:
		entry = fn
	case *func() *Module:
		if fn != nil {
			entry = *fn
		}
	default:
		return nil, fmt.Errorf("%w: entry symbol has type %T", ErrBadEntry, sym)
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: entry symbol is nil", ErrBadEntry)
	}
	m := entry()
	if m == nil {
		return nil, fmt.Errorf("%w: entry returned no module", ErrBadEntry)
	}
	return m, nil
}

// Names lists the module's function names in first-seen order, once each.
func (m *Module) Names() []string {
	seen := make(map[string]bool, len(m.Funcs))
	var names []string
	for _, f := range m.Funcs {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}
