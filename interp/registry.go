package interp

import (
	"strconv"

	"github.com/starbytes-lang/starbytes/object"
)

// funcRefType seeds the class-type hash with the type id of function
// references so class types never start inside the builtin range.
const funcRefType = 5

// ClassTypeOf derives the rolling class-type value for a class name.
func ClassTypeOf(name string) object.ClassType {
	t := uint64(funcRefType)
	for i := 0; i < len(name); i++ {
		t = (t + uint64(^uint32(name[i]))) >> 1
	}
	return object.ClassType(t)
}

func mangle(class, member string) string {
	return "__" + class + "__" + member
}

// mangleCtor adds the arity so constructors sharing a name stay distinct.
func mangleCtor(class, name string, arity int) string {
	return mangle(class, name) + "/" + strconv.Itoa(arity)
}

func (in *Interp) register(fn *FuncTemplate) {
	in.functions = append(in.functions, fn)
}

// findFunction returns the most recent template registered under name.
func (in *Interp) findFunction(name string) *FuncTemplate {
	for i := len(in.functions) - 1; i >= 0; i-- {
		if in.functions[i].Name == name {
			return in.functions[i]
		}
	}
	return nil
}

// findClass returns the most recent definition of name.
func (in *Interp) findClass(name string) *Class {
	for i := len(in.classes) - 1; i >= 0; i-- {
		if in.classes[i].Name == name {
			return in.classes[i]
		}
	}
	return nil
}

// classType resolves the class type of name, allocating one on first use.
// Hash collisions between different names are resolved by probing.
func (in *Interp) classType(name string) object.ClassType {
	if t, ok := in.classTypes[name]; ok {
		return t
	}
	t := ClassTypeOf(name)
	for {
		if _, taken := in.classNames[t]; !taken {
			break
		}
		t++
	}
	in.classTypes[name] = t
	in.classNames[t] = name
	return t
}

// classOf returns the class definition behind an instance handle.
func (in *Interp) classOf(o *object.Object) *Class {
	if !o.Is(object.KindInstance) {
		return nil
	}
	name, ok := in.classNames[o.Class()]
	if !ok {
		return nil
	}
	return in.findClass(name)
}

// hierarchy returns the class chain of name, most derived first. A missing
// superclass ends the chain; a cycle collapses it to the class itself.
func (in *Interp) hierarchy(name string) []*Class {
	var chain []*Class
	seen := make(map[string]bool)
	for cur := name; cur != ""; {
		if seen[cur] {
			in.log.Warn().Str("class", name).Str("at", cur).Msg("cyclic class hierarchy")
			return chain[:1]
		}
		seen[cur] = true
		c := in.findClass(cur)
		if c == nil {
			if cur != name {
				in.log.Debug().Str("class", name).Str("super", cur).Msg("superclass is not defined")
			}
			break
		}
		chain = append(chain, c)
		cur = c.Super
	}
	return chain
}

// instanceOf reports whether o is an instance of name or one of its
// subclasses.
func (in *Interp) instanceOf(o *object.Object, name string) bool {
	c := in.classOf(o)
	if c == nil {
		return false
	}
	for _, k := range in.hierarchy(c.Name) {
		if k.Name == name {
			return true
		}
	}
	return false
}
