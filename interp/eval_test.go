package interp

import (
	"testing"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
	"github.com/stretchr/testify/require"
)

func requireInt(t *testing.T, want int64, v *object.Object) {
	t.Helper()
	require.True(t, v.Is(object.KindNumber), "got %s", kindName(v))
	require.False(t, v.IsFloat())
	require.Equal(t, want, v.Int())
}

func requireFloat(t *testing.T, want float64, v *object.Object) {
	t.Helper()
	require.True(t, v.Is(object.KindNumber), "got %s", kindName(v))
	require.True(t, v.IsFloat())
	require.Equal(t, want, v.Float())
}

func requireStr(t *testing.T, want string, v *object.Object) {
	t.Helper()
	require.True(t, v.Is(object.KindString), "got %s", kindName(v))
	require.Equal(t, want, v.Str())
}

func requireBool(t *testing.T, want bool, v *object.Object) {
	t.Helper()
	require.True(t, v.Is(object.KindBool), "got %s", kindName(v))
	require.Equal(t, want, v.Bool())
}

func TestOperators(t *testing.T) {
	bin := vm.Binary
	tests := []struct {
		name    string
		expr    vm.Emit
		check   func(t *testing.T, v *object.Object)
		wantErr error
	}{
		{
			name:  "int addition",
			expr:  bin(vm.BinaryAdd, vm.Int(3), vm.Int(4)),
			check: func(t *testing.T, v *object.Object) { requireInt(t, 7, v) },
		},
		{
			name:  "mixed addition promotes",
			expr:  bin(vm.BinaryAdd, vm.Int(3), vm.Float(4.0)),
			check: func(t *testing.T, v *object.Object) { requireFloat(t, 7.0, v) },
		},
		{
			name:    "int division by zero",
			expr:    bin(vm.BinaryDiv, vm.Int(5), vm.Int(0)),
			wantErr: ErrDivideByZero,
		},
		{
			name:    "float modulo by zero",
			expr:    bin(vm.BinaryMod, vm.Float(5), vm.Int(0)),
			wantErr: ErrDivideByZero,
		},
		{
			name:  "integer division truncates",
			expr:  bin(vm.BinaryDiv, vm.Int(7), vm.Int(2)),
			check: func(t *testing.T, v *object.Object) { requireInt(t, 3, v) },
		},
		{
			name:  "float division",
			expr:  bin(vm.BinaryDiv, vm.Float(7), vm.Int(2)),
			check: func(t *testing.T, v *object.Object) { requireFloat(t, 3.5, v) },
		},
		{
			name:  "text concatenation coerces",
			expr:  bin(vm.BinaryAdd, vm.Str("a"), vm.Int(1)),
			check: func(t *testing.T, v *object.Object) { requireStr(t, "a1", v) },
		},
		{
			name:  "text on the right",
			expr:  bin(vm.BinaryAdd, vm.BoolLit(true), vm.Str("!")),
			check: func(t *testing.T, v *object.Object) { requireStr(t, "true!", v) },
		},
		{
			name:    "bool plus int",
			expr:    bin(vm.BinaryAdd, vm.BoolLit(true), vm.Int(1)),
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "subtracting text",
			expr:    bin(vm.BinarySub, vm.Str("a"), vm.Int(1)),
			wantErr: ErrTypeMismatch,
		},
		{
			name:  "text ordering",
			expr:  bin(vm.BinaryLess, vm.Str("a"), vm.Str("b")),
			check: func(t *testing.T, v *object.Object) { requireBool(t, true, v) },
		},
		{
			name:  "numeric ordering across kinds",
			expr:  bin(vm.BinaryGreaterEqual, vm.Int(2), vm.Float(2)),
			check: func(t *testing.T, v *object.Object) { requireBool(t, true, v) },
		},
		{
			name:    "ordering mixed kinds",
			expr:    bin(vm.BinaryLess, vm.Str("a"), vm.Int(1)),
			wantErr: ErrTypeMismatch,
		},
		{
			name:  "equality of mixed kinds is identity",
			expr:  bin(vm.BinaryEqual, vm.Str("1"), vm.Int(1)),
			check: func(t *testing.T, v *object.Object) { requireBool(t, false, v) },
		},
		{
			name:  "text equality",
			expr:  bin(vm.BinaryNotEqual, vm.Str("x"), vm.Str("x")),
			check: func(t *testing.T, v *object.Object) { requireBool(t, false, v) },
		},
		{
			name:  "logical and",
			expr:  bin(vm.BinaryAnd, vm.BoolLit(true), vm.BoolLit(false)),
			check: func(t *testing.T, v *object.Object) { requireBool(t, false, v) },
		},
		{
			name:    "logical or needs bools",
			expr:    bin(vm.BinaryOr, vm.BoolLit(true), vm.Int(1)),
			wantErr: ErrTypeMismatch,
		},
		{
			name:  "negation",
			expr:  vm.Unary(vm.UnaryMinus, vm.Float(1.5)),
			check: func(t *testing.T, v *object.Object) { requireFloat(t, -1.5, v) },
		},
		{
			name:  "not",
			expr:  vm.Unary(vm.UnaryNot, vm.BoolLit(true)),
			check: func(t *testing.T, v *object.Object) { requireBool(t, false, v) },
		},
		{
			name:    "negating text",
			expr:    vm.Unary(vm.UnaryMinus, vm.Str("x")),
			wantErr: ErrTypeMismatch,
		},
		{
			name:    "failing operand propagates",
			expr:    bin(vm.BinaryAdd, vm.Ref("missing"), vm.Int(1)),
			wantErr: ErrLookupMiss,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(Options{})
			v, err := evalExpr(in, tt.expr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, v)
			} else {
				require.NoError(t, err)
				tt.check(t, v)
			}
			v.Release()
			requireClean(t, in)
		})
	}
}

func TestCollections(t *testing.T) {
	in, _ := run(t,
		vm.Declare("xs", vm.Array(vm.Int(1), vm.Int(2))),
		vm.SetIndex(vm.Ref("xs"), vm.Int(0), vm.Int(9)),
		vm.SetIndex(vm.Ref("xs"), vm.Int(5), vm.Int(1)),
		vm.Declare("first", vm.Index(vm.Ref("xs"), vm.Int(0))),
		vm.Declare("oob", vm.Index(vm.Ref("xs"), vm.Int(2))),
		vm.Declare("d", vm.Dict(vm.Str("k"), vm.Int(1), vm.Int(2), vm.Str("two"))),
		vm.SetIndex(vm.Ref("d"), vm.Str("k"), vm.Int(3)),
		vm.Declare("k", vm.Index(vm.Ref("d"), vm.Str("k"))),
		vm.Declare("two", vm.Index(vm.Ref("d"), vm.Float(2))),
		vm.Declare("none", vm.Index(vm.Ref("d"), vm.Str("absent"))),
	)
	requireInt(t, 9, in.Global("first"))
	require.Equal(t, 2, in.Global("xs").Len())
	require.Nil(t, in.Global("oob"))
	requireInt(t, 3, in.Global("k"))
	requireStr(t, "two", in.Global("two"))
	require.Nil(t, in.Global("none"))
	require.Equal(t, 2, in.Global("d").Len())
	requireClean(t, in)
}

func TestIndexErrors(t *testing.T) {
	in := New(Options{})
	in.scopes.Bind("xs", in.heap.NewArray())

	_, err := evalExpr(in, vm.Index(vm.Ref("xs"), vm.Int(0)))
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = evalExpr(in, vm.Index(vm.Ref("xs"), vm.Str("a")))
	require.ErrorIs(t, err, ErrTypeMismatch)
	_, err = evalExpr(in, vm.Index(vm.Int(1), vm.Int(0)))
	require.ErrorIs(t, err, ErrTypeMismatch)
	requireClean(t, in)
}

func TestRegexLiteral(t *testing.T) {
	in := New(Options{})
	v, err := evalExpr(in, vm.Regex("a+b", "ig"))
	require.NoError(t, err)
	require.True(t, v.Is(object.KindRegex))
	require.Equal(t, "a+b", v.Pattern())
	require.Equal(t, "ig", v.Flags())
	v.Release()

	v, err = evalExpr(in, vm.Regex("[a-", ""))
	require.ErrorIs(t, err, ErrInvalidRegex)
	require.Nil(t, v)
	require.Contains(t, in.Diagnostic(), "invalid regular expression")

	_, err = evalExpr(in, vm.Regex("a", "x"))
	require.ErrorIs(t, err, ErrInvalidRegex)
	requireClean(t, in)
}

func TestTypeCheck(t *testing.T) {
	tests := []struct {
		expr     vm.Emit
		typeName string
		want     bool
	}{
		{vm.Int(1), "Int", true},
		{vm.Int(1), "Float", false},
		{vm.Float(1), "Number", true},
		{vm.Str("s"), "String", true},
		{vm.Array(), "Array", true},
		{vm.Dict(), "Dict", true},
		{vm.Regex("x", ""), "Regex", true},
		{vm.FnRef("print"), "Func", true},
		{vm.BoolLit(false), "String", false},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			in := New(Options{})
			v, err := evalExpr(in, vm.IsType(tt.expr, tt.typeName))
			require.NoError(t, err)
			requireBool(t, tt.want, v)
			v.Release()
			requireClean(t, in)
		})
	}
}

func TestVariables(t *testing.T) {
	in, _ := run(t,
		vm.Declare("x", vm.Int(1)),
		vm.Assign("x", vm.Binary(vm.BinaryAdd, vm.Ref("x"), vm.Int(1))),
		vm.Declare("unset", nil),
		vm.Declare("y", vm.Assign("z", vm.Str("both"))),
	)
	requireInt(t, 2, in.Global("x"))
	require.Nil(t, in.Global("unset"))
	requireStr(t, "both", in.Global("y"))
	require.Same(t, in.Global("y"), in.Global("z"))

	v, err := evalExpr(in, vm.Ref("nope"))
	require.ErrorIs(t, err, ErrLookupMiss)
	require.Nil(t, v)
	_, err = evalExpr(in, vm.FnRef("nope"))
	require.ErrorIs(t, err, ErrLookupMiss)
	_, err = evalExpr(in, vm.CallExpr(vm.Int(3)))
	require.ErrorIs(t, err, ErrNotCallable)
	requireClean(t, in)
}
