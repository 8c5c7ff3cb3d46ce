package interp

import (
	"fmt"

	"github.com/starbytes-lang/starbytes/vm"
)

// The skip path walks records exactly like the executor but evaluates,
// binds and invokes nothing. Blocks carry no length prefix, so walking the
// structure is the only way past an untaken branch.

func expect(r *vm.Reader, want vm.Code) bool {
	code, ok := r.ReadCode()
	if !ok {
		return false
	}
	if code != want {
		r.Fail(fmt.Errorf("%w: expected %s, got %s", vm.ErrMalformed, want, code))
		return false
	}
	return true
}

// skipBody consumes statements up to and including end.
func skipBody(r *vm.Reader, end vm.Code) {
	for {
		code, ok := r.ReadCode()
		if !ok || code == end {
			return
		}
		if code == vm.ModuleEnd {
			r.Fail(fmt.Errorf("%w: program ended inside a block", vm.ErrMalformed))
			return
		}
		skipStmt(r, code)
	}
}

// skipClause consumes the rest of a conditional clause after its kind byte.
func skipClause(r *vm.Reader, kind vm.CondKind) {
	if kind != vm.CondElse {
		skipExpr(r)
	}
	if expect(r, vm.BlockBegin) {
		skipBody(r, vm.BlockEnd)
	}
}

func skipFunction(r *vm.Reader) {
	r.ReadID()
	n := r.ReadCount()
	for i := uint32(0); i < n && r.Healthy(); i++ {
		r.ReadID()
	}
	if expect(r, vm.FuncBlockBegin) {
		skipBody(r, vm.FuncBlockEnd)
	}
}

func skipStmt(r *vm.Reader, code vm.Code) {
	switch code {
	case vm.Var, vm.Return:
		if code == vm.Var {
			r.ReadID()
		}
		if r.ReadBool() {
			skipExpr(r)
		}
	case vm.Func:
		skipFunction(r)
	case vm.ClassDef:
		r.ReadID()
		if r.ReadBool() {
			r.ReadID()
		}
		n := r.ReadCount()
		for i := uint32(0); i < n && r.Healthy(); i++ {
			r.ReadID()
		}
		for j := 0; j < 2; j++ {
			n := r.ReadCount()
			for i := uint32(0); i < n && r.Healthy(); i++ {
				if expect(r, vm.Func) {
					skipFunction(r)
				}
			}
		}
		if r.ReadBool() && expect(r, vm.Func) {
			skipFunction(r)
		}
	case vm.Conditional:
		n := r.ReadCount()
		for i := uint32(0); i < n && r.Healthy(); i++ {
			skipClause(r, vm.CondKind(r.ReadU8()))
		}
		expect(r, vm.ConditionalEnd)
	case vm.SecureDecl:
		r.ReadID()
		if r.ReadBool() {
			r.ReadID()
		}
		if r.ReadBool() {
			r.ReadID()
		}
		skipExpr(r)
		if expect(r, vm.BlockBegin) {
			skipBody(r, vm.BlockEnd)
		}
	default:
		if !code.IsExpr() {
			r.Fail(fmt.Errorf("%w: unexpected %s in statement position", vm.ErrMalformed, code))
			return
		}
		skipExprBody(r, code)
	}
}

func skipExpr(r *vm.Reader) {
	code, ok := r.ReadCode()
	if ok {
		skipExprBody(r, code)
	}
}

func skipArgs(r *vm.Reader) {
	n := r.ReadCount()
	for i := uint32(0); i < n && r.Healthy(); i++ {
		skipExpr(r)
	}
}

func skipExprBody(r *vm.Reader, code vm.Code) {
	switch code {
	case vm.IntObjCreate:
		switch vm.LiteralKind(r.ReadU8()) {
		case vm.LitString:
			r.ReadID()
		case vm.LitBool:
			r.ReadBool()
		case vm.LitNumber:
			r.ReadNumber()
		case vm.LitArray:
			skipArgs(r)
		default:
			r.Fail(fmt.Errorf("%w: bad literal kind", vm.ErrMalformed))
		}
	case vm.VarRef, vm.FuncRef:
		r.ReadID()
	case vm.VarSet:
		r.ReadID()
		skipExpr(r)
	case vm.InvokeFunc:
		skipExpr(r)
		skipArgs(r)
	case vm.UnaryOperator:
		r.ReadU8()
		skipExpr(r)
	case vm.BinaryOperator:
		r.ReadU8()
		skipExpr(r)
		skipExpr(r)
	case vm.NewObj:
		r.ReadID()
		skipArgs(r)
	case vm.MemberGet:
		skipExpr(r)
		r.ReadID()
	case vm.MemberSet:
		skipExpr(r)
		r.ReadID()
		skipExpr(r)
	case vm.MemberInvoke:
		skipExpr(r)
		r.ReadID()
		skipArgs(r)
	case vm.IndexGet:
		skipExpr(r)
		skipExpr(r)
	case vm.IndexSet:
		skipExpr(r)
		skipExpr(r)
		skipExpr(r)
	case vm.DictLiteral:
		n := r.ReadCount()
		for i := uint32(0); i < n && r.Healthy(); i++ {
			skipExpr(r)
			skipExpr(r)
		}
	case vm.RegexLiteral:
		r.ReadID()
		r.ReadID()
	case vm.TypeCheck:
		skipExpr(r)
		r.ReadID()
	default:
		r.Fail(fmt.Errorf("%w: unexpected %s in expression position", vm.ErrMalformed, code))
	}
}
