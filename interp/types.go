package interp

import (
	"github.com/starbytes-lang/starbytes/native"
	"github.com/starbytes-lang/starbytes/object"
)

// FuncTemplate is a registered function. Bytecode functions carry the offset
// of their body; native functions carry a callback instead.
type FuncTemplate struct {
	Name        string
	Params      []string
	Invocations int
	BodyOffset  int64
	Native      *native.FuncDesc
}

func (f *FuncTemplate) IsNative() bool {
	return f.Native != nil
}

// Class is the metadata recorded by a class definition. Member templates keep
// their declared names; the registry holds copies under mangled names.
type Class struct {
	Name         string
	Super        string
	Fields       []string
	Methods      []*FuncTemplate
	Constructors []*FuncTemplate
	FieldInit    *FuncTemplate
	Type         object.ClassType
}

func (c *Class) method(name string) *FuncTemplate {
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (c *Class) constructor(arity int) *FuncTemplate {
	for _, m := range c.Constructors {
		if len(m.Params) == arity {
			return m
		}
	}
	return nil
}

// control is the per-block execution context: whether a return has been
// recorded and the value it produced.
type control struct {
	returning bool
	value     *object.Object
}

func (c *control) release() {
	c.value.Release()
	c.value = nil
	c.returning = false
}
