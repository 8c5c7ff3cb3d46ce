package interp

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/starbytes-lang/starbytes/native"
	"github.com/starbytes-lang/starbytes/object"
)

func (in *Interp) registerBuiltins() {
	in.AddModule(native.NewModule("builtins",
		native.FuncDesc{Name: "print", Callback: in.print, ArgCount: 1},
	))
}

// print writes its argument on its own line. Strings are written bare at the
// top level.
func (in *Interp) print(_ *object.Heap, args []*object.Object) (*object.Object, error) {
	v := args[0]
	s := in.render(v, in.opts.Color)
	if v.Is(object.KindString) {
		s = v.Str()
		if in.opts.Color {
			s = color.Green.Sprint(s)
		}
	}
	_, err := fmt.Fprintln(in.opts.Out, s)
	return nil, err
}
