package vm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type disassembler struct {
	r     *Reader
	w     io.Writer
	depth int
}

// Disassemble writes a readable listing of a program. Statements go one per
// line with nested blocks indented; expressions are printed in prefix form.
func Disassemble(src io.ReadSeeker, w io.Writer) error {
	d := &disassembler{r: NewReader(src), w: w}
	for {
		code, ok := d.r.ReadCode()
		if !ok {
			return d.r.Err()
		}
		if code == ModuleEnd {
			d.line("%s", ModuleEnd)
			return nil
		}
		d.stmt(code)
		if !d.r.Healthy() {
			return d.r.Err()
		}
	}
}

func (d *disassembler) line(format string, args ...any) {
	fmt.Fprintf(d.w, "%s%s\n", strings.Repeat("  ", d.depth), fmt.Sprintf(format, args...))
}

func (d *disassembler) body(end Code) {
	d.depth++
	defer func() { d.depth-- }()
	for {
		code, ok := d.r.ReadCode()
		if !ok || code == end {
			return
		}
		d.stmt(code)
		if !d.r.Healthy() {
			return
		}
	}
}

func (d *disassembler) expect(c Code) bool {
	code, ok := d.r.ReadCode()
	if ok && code != c {
		d.r.Fail(fmt.Errorf("%w: expected %s, got %s", ErrMalformed, c, code))
		return false
	}
	return ok
}

func (d *disassembler) function(prefix string) {
	name := d.r.ReadID()
	n := d.r.ReadCount()
	var params []string
	for i := uint32(0); i < n && d.r.Healthy(); i++ {
		params = append(params, d.r.ReadID())
	}
	d.line("%s%s %s(%s)", prefix, Func, name, strings.Join(params, ", "))
	if d.expect(FuncBlockBegin) {
		d.body(FuncBlockEnd)
	}
}

func (d *disassembler) stmt(code Code) {
	switch code {
	case Var:
		name := d.r.ReadID()
		if d.r.ReadBool() {
			d.line("%s %s = %s", Var, name, d.expr())
		} else {
			d.line("%s %s", Var, name)
		}
	case Return:
		if d.r.ReadBool() {
			d.line("%s %s", Return, d.expr())
		} else {
			d.line("%s", Return)
		}
	case Func:
		d.function("")
	case ClassDef:
		name := d.r.ReadID()
		super := ""
		if d.r.ReadBool() {
			super = " : " + d.r.ReadID()
		}
		n := d.r.ReadCount()
		var fields []string
		for i := uint32(0); i < n && d.r.Healthy(); i++ {
			fields = append(fields, d.r.ReadID())
		}
		d.line("%s %s%s fields(%s)", ClassDef, name, super, strings.Join(fields, ", "))
		d.depth++
		for _, prefix := range []string{"method ", "ctor "} {
			n := d.r.ReadCount()
			for i := uint32(0); i < n && d.r.Healthy(); i++ {
				if d.expect(Func) {
					d.function(prefix)
				}
			}
		}
		if d.r.ReadBool() && d.expect(Func) {
			d.function("fieldinit ")
		}
		d.depth--
	case Conditional:
		n := d.r.ReadCount()
		d.line("%s %d", Conditional, n)
		for i := uint32(0); i < n && d.r.Healthy(); i++ {
			kind := CondKind(d.r.ReadU8())
			if kind == CondElse {
				d.line("%s", kind)
			} else {
				d.line("%s %s", kind, d.expr())
			}
			if d.expect(BlockBegin) {
				d.body(BlockEnd)
			}
		}
		if d.expect(ConditionalEnd) {
			d.line("%s", ConditionalEnd)
		}
	case SecureDecl:
		target := d.r.ReadID()
		catch, typ := "", ""
		if d.r.ReadBool() {
			catch = d.r.ReadID()
		}
		if d.r.ReadBool() {
			typ = d.r.ReadID()
		}
		d.line("%s %s = %s catch(%s %s)", SecureDecl, target, d.expr(), catch, typ)
		if d.expect(BlockBegin) {
			d.body(BlockEnd)
		}
	default:
		if code.IsExpr() {
			d.line("%s", d.exprBody(code))
			return
		}
		d.r.Fail(fmt.Errorf("%w: unexpected %s in statement position", ErrMalformed, code))
	}
}

func (d *disassembler) expr() string {
	code, ok := d.r.ReadCode()
	if !ok {
		return "<truncated>"
	}
	return d.exprBody(code)
}

func (d *disassembler) args() string {
	n := d.r.ReadCount()
	parts := make([]string, 0, n)
	for i := uint32(0); i < n && d.r.Healthy(); i++ {
		parts = append(parts, d.expr())
	}
	return strings.Join(parts, " ")
}

func (d *disassembler) exprBody(code Code) string {
	switch code {
	case IntObjCreate:
		switch LiteralKind(d.r.ReadU8()) {
		case LitString:
			return strconv.Quote(d.r.ReadID())
		case LitBool:
			return strconv.FormatBool(d.r.ReadBool())
		case LitNumber:
			isFloat, i, f := d.r.ReadNumber()
			if isFloat {
				return strconv.FormatFloat(f, 'g', -1, 64) + "f"
			}
			return strconv.FormatInt(i, 10)
		case LitArray:
			return "[" + d.args() + "]"
		}
		d.r.Fail(fmt.Errorf("%w: bad literal kind", ErrMalformed))
		return "?"
	case VarRef:
		return d.r.ReadID()
	case FuncRef:
		return "&" + d.r.ReadID()
	case VarSet:
		name := d.r.ReadID()
		return fmt.Sprintf("(%s %s %s)", code, name, d.expr())
	case InvokeFunc:
		callee := d.expr()
		return fmt.Sprintf("(%s %s %s)", code, callee, d.args())
	case UnaryOperator:
		op := UnaryOp(d.r.ReadU8())
		return fmt.Sprintf("(%s %s)", op, d.expr())
	case BinaryOperator:
		op := BinaryOp(d.r.ReadU8())
		lhs := d.expr()
		return fmt.Sprintf("(%s %s %s)", op, lhs, d.expr())
	case NewObj:
		class := d.r.ReadID()
		return fmt.Sprintf("(%s %s %s)", code, class, d.args())
	case MemberGet:
		obj := d.expr()
		return fmt.Sprintf("%s.%s", obj, d.r.ReadID())
	case MemberSet:
		obj := d.expr()
		name := d.r.ReadID()
		return fmt.Sprintf("(%s %s.%s %s)", code, obj, name, d.expr())
	case MemberInvoke:
		obj := d.expr()
		name := d.r.ReadID()
		return fmt.Sprintf("(%s %s.%s %s)", code, obj, name, d.args())
	case IndexGet:
		coll := d.expr()
		return fmt.Sprintf("%s[%s]", coll, d.expr())
	case IndexSet:
		coll := d.expr()
		idx := d.expr()
		return fmt.Sprintf("(%s %s[%s] %s)", code, coll, idx, d.expr())
	case DictLiteral:
		n := d.r.ReadCount()
		parts := make([]string, 0, n)
		for i := uint32(0); i < n && d.r.Healthy(); i++ {
			k := d.expr()
			parts = append(parts, k+":"+d.expr())
		}
		return "{" + strings.Join(parts, " ") + "}"
	case RegexLiteral:
		pattern := d.r.ReadID()
		return fmt.Sprintf("/%s/%s", pattern, d.r.ReadID())
	case TypeCheck:
		e := d.expr()
		return fmt.Sprintf("(%s %s %s)", code, e, d.r.ReadID())
	}
	d.r.Fail(fmt.Errorf("%w: unexpected %s in expression position", ErrMalformed, code))
	return "?"
}
