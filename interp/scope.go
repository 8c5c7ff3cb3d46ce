package interp

import (
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/starbytes-lang/starbytes/object"
)

// GlobalScope is the scope active while top-level statements run.
const GlobalScope = "GLOBAL"

// ScopeTable maps scope names to their variable bindings. Every bound handle
// holds one reference owned by the table.
type ScopeTable struct {
	scopes map[string]map[string]*object.Object
	active string
}

func NewScopeTable() *ScopeTable {
	return &ScopeTable{
		scopes: make(map[string]map[string]*object.Object),
		active: GlobalScope,
	}
}

func (s *ScopeTable) Active() string {
	return s.active
}

func (s *ScopeTable) SetActive(name string) {
	s.active = name
}

// Bind stores v under name in the active scope, taking over the caller's
// reference. A previous binding is released.
func (s *ScopeTable) Bind(name string, v *object.Object) {
	s.BindIn(s.active, name, v)
}

func (s *ScopeTable) BindIn(scope, name string, v *object.Object) {
	vars, ok := s.scopes[scope]
	if !ok {
		vars = make(map[string]*object.Object)
		s.scopes[scope] = vars
	}
	if old, ok := vars[name]; ok {
		old.Release()
	}
	vars[name] = v
	log.Trace().Str("scope", scope).Str("name", name).Msg("bind")
}

// Lookup returns the bound handle with an extra reference the caller must
// release.
func (s *ScopeTable) Lookup(scope, name string) (*object.Object, bool) {
	v, ok := s.scopes[scope][name]
	if !ok {
		return nil, false
	}
	return v.Retain(), true
}

// Peek returns a borrowed reference, or nil.
func (s *ScopeTable) Peek(scope, name string) *object.Object {
	return s.scopes[scope][name]
}

func (s *ScopeTable) Has(scope string) bool {
	_, ok := s.scopes[scope]
	return ok
}

// Clear releases every binding in scope and removes it. Clearing an unknown
// scope does nothing.
func (s *ScopeTable) Clear(scope string) {
	vars, ok := s.scopes[scope]
	if !ok {
		return
	}
	delete(s.scopes, scope)
	for _, v := range vars {
		v.Release()
	}
	log.Trace().Str("scope", scope).Int("released", len(vars)).Msg("clear scope")
}

// Len returns the number of live scopes.
func (s *ScopeTable) Len() int {
	return len(s.scopes)
}

// Names returns the sorted variable names bound in scope.
func (s *ScopeTable) Names(scope string) []string {
	var names []string
	for k := range s.scopes[scope] {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
