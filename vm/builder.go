package vm

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Builder assembles instruction records. It is the producer used by tooling
// and tests; the compiler front end emits the same layouts.
type Builder struct {
	buf bytes.Buffer
}

// Emit writes one record (or a sequence of records) into a Builder.
type Emit func(b *Builder)

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *Builder) Len() int {
	return b.buf.Len()
}

func (b *Builder) Code(c Code) *Builder {
	b.buf.WriteByte(byte(c))
	return b
}

func (b *Builder) U8(v byte) *Builder {
	b.buf.WriteByte(v)
	return b
}

func (b *Builder) Bool(v bool) *Builder {
	if v {
		return b.U8(1)
	}
	return b.U8(0)
}

func (b *Builder) Count(n int) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(n))
	b.buf.Write(tmp[:])
	return b
}

func (b *Builder) ID(s string) *Builder {
	b.Count(len(s))
	b.buf.WriteString(s)
	return b
}

func (b *Builder) number(isFloat bool, bits uint64) *Builder {
	b.Bool(isFloat)
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], bits)
	b.buf.Write(tmp[:])
	return b
}

// Raw appends already encoded bytes.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf.Write(p)
	return b
}

// Add runs each emitter in order.
func (b *Builder) Add(es ...Emit) *Builder {
	for _, e := range es {
		if e != nil {
			e(b)
		}
	}
	return b
}

// Assemble builds a complete program terminated by ModuleEnd.
func Assemble(stmts ...Emit) []byte {
	b := NewBuilder()
	b.Add(stmts...)
	b.Code(ModuleEnd)
	return b.Bytes()
}

func emitArgs(b *Builder, args []Emit) {
	b.Count(len(args))
	b.Add(args...)
}

// Expressions.

func Int(i int64) Emit {
	return func(b *Builder) {
		b.Code(IntObjCreate).U8(byte(LitNumber)).number(false, uint64(i))
	}
}

func Float(f float64) Emit {
	return func(b *Builder) {
		b.Code(IntObjCreate).U8(byte(LitNumber)).number(true, math.Float64bits(f))
	}
}

func Str(s string) Emit {
	return func(b *Builder) {
		b.Code(IntObjCreate).U8(byte(LitString)).ID(s)
	}
}

func BoolLit(v bool) Emit {
	return func(b *Builder) {
		b.Code(IntObjCreate).U8(byte(LitBool)).Bool(v)
	}
}

func Array(elems ...Emit) Emit {
	return func(b *Builder) {
		b.Code(IntObjCreate).U8(byte(LitArray))
		emitArgs(b, elems)
	}
}

// Dict takes alternating key and value expressions.
func Dict(pairs ...Emit) Emit {
	return func(b *Builder) {
		b.Code(DictLiteral).Count(len(pairs) / 2)
		b.Add(pairs...)
	}
}

func Ref(name string) Emit {
	return func(b *Builder) {
		b.Code(VarRef).ID(name)
	}
}

func Assign(name string, v Emit) Emit {
	return func(b *Builder) {
		b.Code(VarSet).ID(name).Add(v)
	}
}

func FnRef(name string) Emit {
	return func(b *Builder) {
		b.Code(FuncRef).ID(name)
	}
}

// CallExpr invokes the function produced by callee.
func CallExpr(callee Emit, args ...Emit) Emit {
	return func(b *Builder) {
		b.Code(InvokeFunc).Add(callee)
		emitArgs(b, args)
	}
}

// Call invokes a function by name.
func Call(name string, args ...Emit) Emit {
	return CallExpr(FnRef(name), args...)
}

func Unary(op UnaryOp, e Emit) Emit {
	return func(b *Builder) {
		b.Code(UnaryOperator).U8(byte(op)).Add(e)
	}
}

func Binary(op BinaryOp, lhs, rhs Emit) Emit {
	return func(b *Builder) {
		b.Code(BinaryOperator).U8(byte(op)).Add(lhs, rhs)
	}
}

func New(class string, args ...Emit) Emit {
	return func(b *Builder) {
		b.Code(NewObj).ID(class)
		emitArgs(b, args)
	}
}

func Member(obj Emit, name string) Emit {
	return func(b *Builder) {
		b.Code(MemberGet).Add(obj).ID(name)
	}
}

func SetMember(obj Emit, name string, v Emit) Emit {
	return func(b *Builder) {
		b.Code(MemberSet).Add(obj).ID(name).Add(v)
	}
}

func Invoke(obj Emit, method string, args ...Emit) Emit {
	return func(b *Builder) {
		b.Code(MemberInvoke).Add(obj).ID(method)
		emitArgs(b, args)
	}
}

func Index(coll, idx Emit) Emit {
	return func(b *Builder) {
		b.Code(IndexGet).Add(coll, idx)
	}
}

func SetIndex(coll, idx, v Emit) Emit {
	return func(b *Builder) {
		b.Code(IndexSet).Add(coll, idx, v)
	}
}

func Regex(pattern, flags string) Emit {
	return func(b *Builder) {
		b.Code(RegexLiteral).ID(pattern).ID(flags)
	}
}

func IsType(e Emit, typeName string) Emit {
	return func(b *Builder) {
		b.Code(TypeCheck).Add(e).ID(typeName)
	}
}

// Statements.

// Declare binds name; a nil init declares it without binding.
func Declare(name string, init Emit) Emit {
	return func(b *Builder) {
		b.Code(Var).ID(name).Bool(init != nil).Add(init)
	}
}

func Ret(v Emit) Emit {
	return func(b *Builder) {
		b.Code(Return).Bool(v != nil).Add(v)
	}
}

func block(b *Builder, body []Emit) {
	b.Code(BlockBegin).Add(body...).Code(BlockEnd)
}

// Clause is one arm of a conditional chain. Cond is ignored for CondElse.
type Clause struct {
	Kind CondKind
	Cond Emit
	Body []Emit
}

func IfClause(cond Emit, body ...Emit) Clause {
	return Clause{Kind: CondIf, Cond: cond, Body: body}
}

func ElseClause(body ...Emit) Clause {
	return Clause{Kind: CondElse, Body: body}
}

func If(clauses ...Clause) Emit {
	return func(b *Builder) {
		b.Code(Conditional).Count(len(clauses))
		for _, c := range clauses {
			b.U8(byte(c.Kind))
			if c.Kind != CondElse {
				b.Add(c.Cond)
			}
			block(b, c.Body)
		}
		b.Code(ConditionalEnd)
	}
}

// While is a chain holding a single loop-if clause.
func While(cond Emit, body ...Emit) Emit {
	return If(Clause{Kind: CondLoopIf, Cond: cond, Body: body})
}

// Secure emits a guarded evaluation. Empty catchBinding or catchType omit
// those fields.
func Secure(target, catchBinding, catchType string, guarded Emit, catch ...Emit) Emit {
	return func(b *Builder) {
		b.Code(SecureDecl).ID(target)
		b.Bool(catchBinding != "")
		if catchBinding != "" {
			b.ID(catchBinding)
		}
		b.Bool(catchType != "")
		if catchType != "" {
			b.ID(catchType)
		}
		b.Add(guarded)
		block(b, catch)
	}
}

func Function(name string, params []string, body ...Emit) Emit {
	return func(b *Builder) {
		b.Code(Func).ID(name).Count(len(params))
		for _, p := range params {
			b.ID(p)
		}
		b.Code(FuncBlockBegin).Add(body...).Code(FuncBlockEnd)
	}
}

// Method describes a method, constructor or field initializer body.
type Method struct {
	Name   string
	Params []string
	Body   []Emit
}

type ClassSpec struct {
	Name         string
	Super        string
	Fields       []string
	Methods      []Method
	Constructors []Method
	FieldInit    []Emit
}

func Class(c ClassSpec) Emit {
	return func(b *Builder) {
		b.Code(ClassDef).ID(c.Name).Bool(c.Super != "")
		if c.Super != "" {
			b.ID(c.Super)
		}
		b.Count(len(c.Fields))
		for _, f := range c.Fields {
			b.ID(f)
		}
		b.Count(len(c.Methods))
		for _, m := range c.Methods {
			b.Add(Function(m.Name, m.Params, m.Body...))
		}
		b.Count(len(c.Constructors))
		for _, m := range c.Constructors {
			b.Add(Function(m.Name, m.Params, m.Body...))
		}
		b.Bool(c.FieldInit != nil)
		if c.FieldInit != nil {
			b.Add(Function("fieldinit", nil, c.FieldInit...))
		}
	}
}
