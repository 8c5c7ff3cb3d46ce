package interp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/starbytes-lang/starbytes/native"
	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

type Options struct {
	// Out receives output of the print builtin. Defaults to stdout.
	Out io.Writer
	// Color renders print output with terminal colors.
	Color bool
	// MaxDepth limits nested invocations; zero means unlimited.
	MaxDepth int
	// Strict turns a truncated or malformed stream into an error from Exec.
	Strict bool
	// RegexCacheSize bounds the regex validation cache; zero uses the default.
	RegexCacheSize int
}

// Interp owns all state of one program run: the heap, the scope table and
// the function and class registries.
type Interp struct {
	ID   string
	opts Options
	log  zerolog.Logger

	heap      *object.Heap
	scopes    *ScopeTable
	functions []*FuncTemplate
	classes   []*Class

	classTypes map[string]object.ClassType
	classNames map[object.ClassType]string

	regexes *regexCache

	// diagnostic is the single-slot sink read by the nearest secure block.
	diagnostic string
	depth      int
	program    *vm.Program
}

func New(opts Options) *Interp {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	id := uuid.NewString()
	in := &Interp{
		ID:         id,
		opts:       opts,
		log:        log.With().Str("interp", id).Logger(),
		heap:       object.NewHeap(),
		scopes:     NewScopeTable(),
		classTypes: make(map[string]object.ClassType),
		classNames: make(map[object.ClassType]string),
		regexes:    newRegexCache(opts.RegexCacheSize),
	}
	in.registerBuiltins()
	return in
}

func (in *Interp) Heap() *object.Heap {
	return in.heap
}

func (in *Interp) Scopes() *ScopeTable {
	return in.scopes
}

// Global returns a borrowed reference to a top-level variable, or nil.
func (in *Interp) Global(name string) *object.Object {
	return in.scopes.Peek(GlobalScope, name)
}

// AddModule registers a native module's functions, resolving each name
// through the module's own table.
func (in *Interp) AddModule(m *native.Module) {
	names := m.Names()
	for _, name := range names {
		desc, ok := m.Lookup(name)
		if !ok || desc.Callback == nil {
			in.log.Warn().Str("module", m.Name).Str("func", name).Msg("native function has no callback")
			continue
		}
		in.register(&FuncTemplate{Name: name, Native: &desc})
	}
	in.log.Debug().Str("module", m.Name).Int("funcs", len(names)).Msg("registered native module")
}

// LoadModules loads and registers native modules from disk.
func (in *Interp) LoadModules(paths ...string) error {
	for _, p := range paths {
		m, err := native.Load(p)
		if err != nil {
			return err
		}
		in.AddModule(m)
	}
	return nil
}

// Exec runs a program's top-level statements. Globals stay bound after it
// returns so callers can inspect them; Close releases them.
func (in *Interp) Exec(prog *vm.Program) error {
	in.program = prog
	in.scopes.SetActive(GlobalScope)
	r := vm.NewReader(prog.Stream())
	in.log.Debug().Uint64("fingerprint", prog.Fingerprint).Int("bytes", len(prog.Code)).Msg("exec")
	for {
		code, ok := r.ReadCode()
		if !ok || code == vm.ModuleEnd {
			break
		}
		var c control
		in.execute(r, code, &c)
		if c.returning {
			in.log.Debug().Msg("return at top level")
		}
		c.release()
	}
	err := r.Err()
	if err == nil {
		return nil
	}
	in.log.Warn().Err(err).Msg("instruction stream ended early")
	if in.opts.Strict || !errors.Is(err, vm.ErrTruncated) && !errors.Is(err, vm.ErrMalformed) {
		return fmt.Errorf("executing program: %w", err)
	}
	return nil
}

// Close clears the global scope, releasing every top-level binding.
func (in *Interp) Close() {
	in.scopes.Clear(GlobalScope)
	in.log.Debug().Int("live", in.heap.Live()).Int("overreleased", in.heap.OverReleased()).Msg("closed")
}

// Diagnostic returns the message currently held by the sink.
func (in *Interp) Diagnostic() string {
	return in.diagnostic
}

func (in *Interp) Functions() []*FuncTemplate {
	return in.functions
}

func (in *Interp) Classes() []*Class {
	return in.classes
}
