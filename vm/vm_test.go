package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.Code(Var).ID("answer").Bool(true).Count(7)
	b.Add(Int(-3), Float(2.5))

	r := NewReader(bytes.NewReader(b.Bytes()))
	code, ok := r.ReadCode()
	require.True(t, ok)
	require.Equal(t, Var, code)
	require.Equal(t, "answer", r.ReadID())
	require.True(t, r.ReadBool())
	require.Equal(t, uint32(7), r.ReadCount())

	code, _ = r.ReadCode()
	require.Equal(t, IntObjCreate, code)
	require.Equal(t, byte(LitNumber), r.ReadU8())
	isFloat, i, _ := r.ReadNumber()
	require.False(t, isFloat)
	require.Equal(t, int64(-3), i)

	pos := r.Pos()
	r.ReadCode()
	r.ReadU8()
	isFloat, _, f := r.ReadNumber()
	require.True(t, isFloat)
	require.Equal(t, 2.5, f)

	r.Seek(pos)
	code, _ = r.ReadCode()
	require.Equal(t, IntObjCreate, code)
	r.Unread()
	require.Equal(t, pos, r.Pos())
	require.True(t, r.Healthy())
}

func TestReaderTruncated(t *testing.T) {
	data := NewBuilder().Code(Var).ID("abcdef").Bytes()
	r := NewReader(bytes.NewReader(data[:4]))
	r.ReadCode()
	require.Equal(t, "", r.ReadID())
	require.False(t, r.Healthy())
	require.ErrorIs(t, r.Err(), ErrTruncated)

	// Later reads stay quiet.
	_, ok := r.ReadCode()
	require.False(t, ok)
	require.Equal(t, uint32(0), r.ReadCount())
}

func TestReaderRejectsHugeIdentifier(t *testing.T) {
	data := NewBuilder().Count(maxIDLen + 1).Bytes()
	r := NewReader(bytes.NewReader(data))
	r.ReadID()
	require.ErrorIs(t, r.Err(), ErrMalformed)
}

func TestDisassemble(t *testing.T) {
	prog := NewProgram(Assemble(
		Function("fact", []string{"n"},
			If(
				IfClause(Binary(BinaryLessEqual, Ref("n"), Int(1)), Ret(Int(1))),
				ElseClause(Ret(Binary(BinaryMul, Ref("n"),
					Call("fact", Binary(BinarySub, Ref("n"), Int(1)))))),
			),
		),
		Class(ClassSpec{
			Name:         "Point",
			Fields:       []string{"x"},
			Constructors: []Method{{Name: "init", Params: []string{"x"}}},
		}),
		Secure("m", "err", "", Regex("[a-", ""), Call("print", Ref("err"))),
		Declare("r", Call("fact", Int(5))),
	))

	var out bytes.Buffer
	require.NoError(t, prog.DebugPrint(&out))
	listing := out.String()
	for _, want := range []string{
		"FUNC fact(n)",
		"IF (<= n 1)",
		"ELSE",
		"RETURN (* n (IVK_FUNC &fact (- n 1)))",
		"CLASS_DEF Point fields(x)",
		"ctor FUNC init(x)",
		"SECURE_DECL m = /[a-/ catch(err )",
		"VAR r = (IVK_FUNC &fact 5)",
		"MODULE_END",
	} {
		require.True(t, strings.Contains(listing, want), "missing %q in\n%s", want, listing)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	a := NewProgram(Assemble(Declare("x", Int(1))))
	b := NewProgram(Assemble(Declare("x", Int(1))))
	c := NewProgram(Assemble(Declare("x", Int(2))))
	require.Equal(t, a.Fingerprint, b.Fingerprint)
	require.NotEqual(t, a.Fingerprint, c.Fingerprint)
}
