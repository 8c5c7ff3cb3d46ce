package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/starbytes-lang/starbytes/config"
	"github.com/starbytes-lang/starbytes/interp"
	"github.com/starbytes-lang/starbytes/vm"
	"github.com/stretchr/testify/require"
)

// writeProgram assembles stmts into a bytecode file under dir.
func writeProgram(t *testing.T, dir, name string, stmts ...vm.Emit) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, vm.Assemble(stmts...), 0o644))
	return path
}

func runFile(t *testing.T, path string) (*interp.Interp, string, error) {
	t.Helper()
	cfg, err := config.LoadFile(filepath.Join(filepath.Dir(path), config.DefaultFile))
	require.NoError(t, err)
	prog, err := vm.LoadFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	opts := cfg.Options(&out)
	opts.Color = false
	in := interp.New(opts)
	require.NoError(t, in.LoadModules(cfg.Modules.Paths...))
	err = in.Exec(prog)
	return in, out.String(), err
}

func TestPrograms(t *testing.T) {
	fact := vm.Function("fact", []string{"n"},
		vm.If(
			vm.IfClause(vm.Binary(vm.BinaryLessEqual, vm.Ref("n"), vm.Int(1)), vm.Ret(vm.Int(1))),
			vm.ElseClause(vm.Ret(vm.Binary(vm.BinaryMul, vm.Ref("n"),
				vm.Call("fact", vm.Binary(vm.BinarySub, vm.Ref("n"), vm.Int(1)))))),
		),
	)
	counter := vm.Class(vm.ClassSpec{
		Name:      "Counter",
		Fields:    []string{"count"},
		FieldInit: []vm.Emit{vm.SetMember(vm.Ref("self"), "count", vm.Int(0))},
		Methods: []vm.Method{{
			Name: "bump",
			Body: []vm.Emit{
				vm.SetMember(vm.Ref("self"), "count",
					vm.Binary(vm.BinaryAdd, vm.Member(vm.Ref("self"), "count"), vm.Int(1))),
				vm.Ret(vm.Member(vm.Ref("self"), "count")),
			},
		}},
	})

	tests := []struct {
		name  string
		stmts []vm.Emit
		want  string
	}{
		{
			name:  "factorial",
			stmts: []vm.Emit{fact, vm.Call("print", vm.Call("fact", vm.Int(10)))},
			want:  "3628800\n",
		},
		{
			name: "counter",
			stmts: []vm.Emit{
				counter,
				vm.Declare("c", vm.New("Counter")),
				vm.Declare("i", vm.Int(0)),
				vm.While(vm.Binary(vm.BinaryLess, vm.Ref("i"), vm.Int(3)),
					vm.Invoke(vm.Ref("c"), "bump"),
					vm.Assign("i", vm.Binary(vm.BinaryAdd, vm.Ref("i"), vm.Int(1))),
				),
				vm.Call("print", vm.Ref("c")),
			},
			want: "Counter(count=3)\n",
		},
		{
			name: "guarded regex",
			stmts: []vm.Emit{
				vm.Secure("r", "err", "", vm.Regex("(", ""),
					vm.Call("print", vm.Str("caught"))),
				vm.Call("print", vm.IsType(vm.Ref("err"), "String")),
			},
			want: "caught\ntrue\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeProgram(t, dir, "main.sbc", tt.stmts...)
			in, out, err := runFile(t, path)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
			in.Close()
			require.Equal(t, 0, in.Heap().Live())
		})
	}
}

func TestStrictConfigReportsTruncation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultFile),
		[]byte("[runtime]\nstrict = true\nmax_depth = 100\n"), 0o644))
	path := filepath.Join(dir, "cut.sbc")
	code := vm.Assemble(vm.Call("print", vm.Str("before")), vm.Call("print", vm.Str("after")))
	require.NoError(t, os.WriteFile(path, code[:len(code)-4], 0o644))

	in, out, err := runFile(t, path)
	require.ErrorIs(t, err, vm.ErrTruncated)
	require.Equal(t, "before\n", out)
	in.Close()
}

func TestSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "main.sbc",
		vm.Declare("greeting", vm.Binary(vm.BinaryAdd, vm.Str("hello "), vm.Int(42))),
	)
	in, _, err := runFile(t, path)
	require.NoError(t, err)

	snapPath := filepath.Join(dir, "run.snap")
	f, err := os.Create(snapPath)
	require.NoError(t, err)
	require.NoError(t, in.Snapshot().Serialize(f))
	require.NoError(t, f.Close())
	in.Close()

	f, err = os.Open(snapPath)
	require.NoError(t, err)
	defer f.Close()
	var snap interp.Snapshot
	require.NoError(t, snap.Deserialize(f))
	require.Equal(t, []interp.GlobalInfo{{Name: "greeting", Value: `"hello 42"`}}, snap.Globals)
	require.Contains(t, snap.PrettyPrint(), `greeting = "hello 42"`)
}
