package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/starbytes-lang/starbytes/object"
)

// Format renders a handle for display without colors.
func (in *Interp) Format(o *object.Object) string {
	return in.render(o, false)
}

func (in *Interp) render(o *object.Object, colored bool) string {
	paint := func(c color.Color, s string) string {
		if colored {
			return c.Sprint(s)
		}
		return s
	}
	if o == nil {
		return "none"
	}
	switch o.Kind() {
	case object.KindString:
		return paint(color.Green, strconv.Quote(o.Str()))
	case object.KindNumber:
		if o.IsFloat() {
			return paint(color.Yellow, strconv.FormatFloat(o.Float(), 'g', -1, 64))
		}
		return paint(color.Yellow, strconv.FormatInt(o.Int(), 10))
	case object.KindBool:
		return paint(color.Magenta, strconv.FormatBool(o.Bool()))
	case object.KindRegex:
		return paint(color.Cyan, "/"+o.Pattern()+"/"+o.Flags())
	case object.KindArray:
		parts := make([]string, o.Len())
		for i := range parts {
			parts[i] = in.render(o.Index(i), colored)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case object.KindDict:
		parts := make([]string, o.Len())
		for i := range parts {
			parts[i] = in.render(o.KeyAt(i), colored) + ": " + in.render(o.ValueAt(i), colored)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case object.KindFuncRef:
		if fn, ok := o.Target().(*FuncTemplate); ok {
			return fmt.Sprintf("<func %s>", fn.Name)
		}
		return "<func>"
	case object.KindInstance:
		name, ok := in.classNames[o.Class()]
		if !ok {
			name = fmt.Sprintf("<class %d>", o.Class())
		}
		parts := make([]string, o.PropertyCount())
		for i := range parts {
			p := o.PropertyAt(i)
			parts[i] = p.Name + "=" + in.render(p.Value, colored)
		}
		return name + "(" + strings.Join(parts, ",") + ")"
	case object.KindTask:
		return "<task>"
	}
	return fmt.Sprintf("<%s>", o.Kind())
}
