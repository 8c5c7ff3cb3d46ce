package interp

import (
	"bytes"
	"testing"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
	"github.com/stretchr/testify/require"
)

// run executes stmts in a fresh interpreter whose print output is captured.
func run(t *testing.T, stmts ...vm.Emit) (*Interp, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	in := New(Options{Out: &out})
	require.NoError(t, in.Exec(vm.NewProgram(vm.Assemble(stmts...))))
	return in, &out
}

// evalExpr evaluates a single expression against in's active scope.
func evalExpr(in *Interp, e vm.Emit) (*object.Object, error) {
	b := vm.NewBuilder().Add(e)
	return in.eval(vm.NewReader(bytes.NewReader(b.Bytes())))
}

// requireClean closes in and checks every handle was released exactly once.
func requireClean(t *testing.T, in *Interp) {
	t.Helper()
	in.Close()
	require.Equal(t, 0, in.Heap().Live(), "leaked handles")
	require.Equal(t, 0, in.Heap().OverReleased(), "released dead handles")
}

func factorial() vm.Emit {
	return vm.Function("fact", []string{"n"},
		vm.If(
			vm.IfClause(vm.Binary(vm.BinaryLessEqual, vm.Ref("n"), vm.Int(1)),
				vm.Ret(vm.Int(1))),
			vm.ElseClause(
				vm.Ret(vm.Binary(vm.BinaryMul, vm.Ref("n"),
					vm.Call("fact", vm.Binary(vm.BinarySub, vm.Ref("n"), vm.Int(1)))))),
		),
	)
}

func self() vm.Emit {
	return vm.Ref("self")
}
