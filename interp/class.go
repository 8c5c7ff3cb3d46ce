package interp

import (
	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

// defineClass decodes a class record and registers the class together with
// its members under mangled names.
func (in *Interp) defineClass(r *vm.Reader) {
	cls := &Class{Name: r.ReadID()}
	if r.ReadBool() {
		cls.Super = r.ReadID()
	}
	n := r.ReadCount()
	for i := uint32(0); i < n && r.Healthy(); i++ {
		cls.Fields = append(cls.Fields, r.ReadID())
	}
	cls.Methods = in.readMembers(r)
	cls.Constructors = in.readMembers(r)
	if r.ReadBool() && expect(r, vm.Func) {
		cls.FieldInit = in.readFunction(r)
	}
	if !r.Healthy() {
		return
	}

	for _, m := range cls.Methods {
		in.registerMember(m, mangle(cls.Name, m.Name))
	}
	for _, m := range cls.Constructors {
		in.registerMember(m, mangleCtor(cls.Name, m.Name, len(m.Params)))
	}
	if cls.FieldInit != nil {
		in.registerMember(cls.FieldInit, mangle(cls.Name, cls.FieldInit.Name))
	}
	cls.Type = in.classType(cls.Name)
	in.classes = append(in.classes, cls)
	in.log.Debug().
		Str("class", cls.Name).
		Str("super", cls.Super).
		Strs("fields", cls.Fields).
		Int("methods", len(cls.Methods)).
		Int("constructors", len(cls.Constructors)).
		Uint64("type", uint64(cls.Type)).
		Msg("defined class")
}

func (in *Interp) readMembers(r *vm.Reader) []*FuncTemplate {
	var out []*FuncTemplate
	n := r.ReadCount()
	for i := uint32(0); i < n && r.Healthy(); i++ {
		if !expect(r, vm.Func) {
			break
		}
		out = append(out, in.readFunction(r))
	}
	return out
}

func (in *Interp) registerMember(m *FuncTemplate, mangled string) {
	in.register(&FuncTemplate{
		Name:       mangled,
		Params:     m.Params,
		BodyOffset: m.BodyOffset,
	})
}

// construct builds an instance of class, consuming argc constructor
// arguments from the stream. Field defaults run from the base upward, then
// field initializers, then the constructor matching argc.
func (in *Interp) construct(r *vm.Reader, class string, argc uint32) (*object.Object, error) {
	inst := in.heap.NewInstance(in.classType(class))
	chain := in.hierarchy(class)
	if len(chain) == 0 {
		in.log.Debug().Str("class", class).Msg("constructing undefined class")
		in.discardArgs(r, argc)
		return inst, nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if inst.HasProperty(f) {
				continue
			}
			def := in.heap.NewBool(false)
			inst.SetProperty(f, def)
			def.Release()
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		fi := chain[i].FieldInit
		if fi == nil {
			continue
		}
		fn := in.findFunction(mangle(chain[i].Name, fi.Name))
		if fn == nil {
			continue
		}
		res, err := in.invoke(r, fn, 0, inst)
		if err != nil {
			in.log.Debug().Err(err).Str("class", chain[i].Name).Msg("field initializer failed")
		}
		res.Release()
	}

	ctor := chain[0].constructor(int(argc))
	if ctor == nil {
		if argc > 0 || len(chain[0].Constructors) > 0 {
			in.log.Debug().Str("class", class).Uint32("args", argc).Msg("no constructor for arity")
		}
		in.discardArgs(r, argc)
		return inst, nil
	}
	fn := in.findFunction(mangleCtor(class, ctor.Name, int(argc)))
	if fn == nil {
		in.discardArgs(r, argc)
		return inst, nil
	}
	res, err := in.invoke(r, fn, argc, inst)
	if err != nil {
		in.log.Debug().Err(err).Str("class", class).Msg("constructor failed")
	}
	res.Release()
	return inst, nil
}
