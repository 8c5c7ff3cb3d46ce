package interp

import (
	"fmt"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

// execute runs one statement whose tag has already been read.
func (in *Interp) execute(r *vm.Reader, code vm.Code, c *control) {
	in.log.Trace().Stringer("code", code).Str("scope", in.scopes.Active()).Msg("execute")
	switch code {
	case vm.Var:
		name := r.ReadID()
		if !r.ReadBool() {
			return
		}
		v, err := in.eval(r)
		if err != nil {
			in.log.Debug().Err(err).Str("var", name).Msg("initializer failed")
			return
		}
		if v != nil {
			in.scopes.Bind(name, v)
		}
	case vm.Return:
		var v *object.Object
		if r.ReadBool() {
			var err error
			v, err = in.eval(r)
			if err != nil {
				in.log.Debug().Err(err).Msg("return value failed")
			}
		}
		c.value.Release()
		c.value = v
		c.returning = true
	case vm.Conditional:
		in.execConditional(r, c)
	case vm.SecureDecl:
		in.execSecure(r, c)
	case vm.Func:
		fn := in.readFunction(r)
		if r.Healthy() {
			in.register(fn)
			in.log.Debug().Str("func", fn.Name).Strs("params", fn.Params).Int64("body", fn.BodyOffset).Msg("defined function")
		}
	case vm.ClassDef:
		in.defineClass(r)
	default:
		if !code.IsExpr() {
			r.Fail(fmt.Errorf("%w: unexpected %s in statement position", vm.ErrMalformed, code))
			return
		}
		v, err := in.evalCode(r, code)
		if err != nil {
			in.log.Debug().Err(err).Stringer("code", code).Msg("expression statement failed")
		}
		v.Release()
	}
}

// runBlock executes statements up to end. Once a return is recorded the rest
// of the block is skipped.
func (in *Interp) runBlock(r *vm.Reader, end vm.Code, c *control) {
	for {
		code, ok := r.ReadCode()
		if !ok || code == end {
			return
		}
		if code == vm.ModuleEnd {
			r.Fail(fmt.Errorf("%w: program ended inside a block", vm.ErrMalformed))
			return
		}
		if c.returning {
			skipStmt(r, code)
		} else {
			in.execute(r, code, c)
		}
	}
}

// condition evaluates a clause condition. Anything but Bool true is false.
func (in *Interp) condition(r *vm.Reader) bool {
	v, err := in.eval(r)
	defer v.Release()
	if err != nil {
		in.log.Debug().Err(err).Msg("condition failed")
		return false
	}
	if !v.Is(object.KindBool) {
		in.log.Debug().Str("kind", kindName(v)).Msg("condition is not a Bool")
		return false
	}
	return v.Bool()
}

func (in *Interp) execConditional(r *vm.Reader, c *control) {
	n := r.ReadCount()
	taken := false
	for i := uint32(0); i < n && r.Healthy(); i++ {
		kind := vm.CondKind(r.ReadU8())
		switch kind {
		case vm.CondIf:
			if taken || c.returning {
				skipClause(r, kind)
				continue
			}
			ok := in.condition(r)
			if !expect(r, vm.BlockBegin) {
				return
			}
			if ok {
				taken = true
				in.runBlock(r, vm.BlockEnd, c)
			} else {
				skipBody(r, vm.BlockEnd)
			}
		case vm.CondElse:
			if taken || c.returning {
				skipClause(r, kind)
				continue
			}
			if !expect(r, vm.BlockBegin) {
				return
			}
			taken = true
			in.runBlock(r, vm.BlockEnd, c)
		case vm.CondLoopIf:
			if taken || c.returning {
				skipClause(r, kind)
				continue
			}
			start := r.Pos()
			for r.Healthy() {
				ok := in.condition(r)
				if !expect(r, vm.BlockBegin) {
					return
				}
				if !ok {
					skipBody(r, vm.BlockEnd)
					break
				}
				taken = true
				in.runBlock(r, vm.BlockEnd, c)
				if c.returning {
					break
				}
				r.Seek(start)
			}
		default:
			r.Fail(fmt.Errorf("%w: clause kind %d", vm.ErrMalformed, kind))
			return
		}
	}
	expect(r, vm.ConditionalEnd)
}

func (in *Interp) execSecure(r *vm.Reader, c *control) {
	target := r.ReadID()
	var binding, catchType string
	if r.ReadBool() {
		binding = r.ReadID()
	}
	if r.ReadBool() {
		catchType = r.ReadID()
	}
	in.diagnostic = ""
	v, err := in.eval(r)
	if !expect(r, vm.BlockBegin) {
		v.Release()
		return
	}
	if err == nil && v != nil {
		in.scopes.Bind(target, v)
		skipBody(r, vm.BlockEnd)
		in.diagnostic = ""
		return
	}
	msg := in.diagnostic
	if msg == "" {
		if err == nil {
			err = ErrNoValue
		}
		msg = err.Error()
	}
	in.log.Debug().Str("target", target).Str("catch_type", catchType).Str("diagnostic", msg).Msg("secure block caught failure")
	if binding != "" {
		in.scopes.Bind(binding, in.heap.NewString(msg))
	}
	in.runBlock(r, vm.BlockEnd, c)
	in.diagnostic = ""
}

// readFunction decodes a function record after its tag and skips its body.
func (in *Interp) readFunction(r *vm.Reader) *FuncTemplate {
	fn := &FuncTemplate{Name: r.ReadID()}
	n := r.ReadCount()
	for i := uint32(0); i < n && r.Healthy(); i++ {
		fn.Params = append(fn.Params, r.ReadID())
	}
	if !expect(r, vm.FuncBlockBegin) {
		return fn
	}
	fn.BodyOffset = r.Pos()
	skipBody(r, vm.FuncBlockEnd)
	return fn
}
