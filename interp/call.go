package interp

import (
	"fmt"
	"strconv"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

// discardArgs evaluates and releases argc call-site arguments.
func (in *Interp) discardArgs(r *vm.Reader, argc uint32) {
	for i := uint32(0); i < argc && r.Healthy(); i++ {
		v, err := in.eval(r)
		if err != nil {
			in.log.Debug().Err(err).Msg("discarded argument failed")
		}
		v.Release()
	}
}

// scopeName picks the scope for the next invocation of fn and advances its
// counter.
func (in *Interp) scopeName(fn *FuncTemplate) string {
	for {
		name := fn.Name + "#" + strconv.Itoa(fn.Invocations)
		fn.Invocations++
		if !in.scopes.Has(name) {
			return name
		}
	}
}

// invoke calls fn with argc arguments read from the call site. self, when
// non-nil, is borrowed and bound as "self" in the callee scope. The returned
// handle is owned by the caller.
func (in *Interp) invoke(r *vm.Reader, fn *FuncTemplate, argc uint32, self *object.Object) (*object.Object, error) {
	if fn.IsNative() {
		return in.invokeNative(r, fn, argc)
	}
	if in.opts.MaxDepth > 0 && in.depth >= in.opts.MaxDepth {
		in.discardArgs(r, argc)
		return nil, fmt.Errorf("%w: calling %s at depth %d", ErrDepthExceeded, fn.Name, in.depth)
	}
	caller := in.scopes.Active()
	scope := in.scopeName(fn)
	in.log.Trace().Str("func", fn.Name).Str("scope", scope).Uint32("args", argc).Msg("invoke")

	if self != nil {
		in.scopes.BindIn(scope, "self", self.Retain())
	}
	for i := uint32(0); i < argc && r.Healthy(); i++ {
		v, err := in.eval(r)
		if err != nil {
			in.log.Debug().Err(err).Str("func", fn.Name).Uint32("arg", i).Msg("argument failed")
		}
		if int(i) < len(fn.Params) && v != nil {
			in.scopes.BindIn(scope, fn.Params[i], v)
		} else {
			v.Release()
		}
	}
	if !r.Healthy() {
		in.scopes.Clear(scope)
		return nil, r.Err()
	}

	resume := r.Pos()
	in.scopes.SetActive(scope)
	in.depth++
	r.Seek(fn.BodyOffset)

	var c control
	in.runBlock(r, vm.FuncBlockEnd, &c)

	in.depth--
	r.Seek(resume)
	in.scopes.Clear(scope)
	in.scopes.SetActive(caller)
	return c.value, nil
}

func (in *Interp) invokeNative(r *vm.Reader, fn *FuncTemplate, argc uint32) (*object.Object, error) {
	args := make([]*object.Object, 0, argc)
	defer func() {
		for _, a := range args {
			a.Release()
		}
	}()
	var argErr error
	for i := uint32(0); i < argc && r.Healthy(); i++ {
		v, err := in.eval(r)
		if err != nil && argErr == nil {
			argErr = err
		}
		if v != nil {
			args = append(args, v)
		}
	}
	if argErr != nil {
		return nil, argErr
	}
	desc := fn.Native
	if desc.ArgCount >= 0 && desc.ArgCount != len(args) {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, fn.Name, desc.ArgCount, len(args))
	}
	if desc.Callback == nil {
		return nil, fmt.Errorf("%w: %s has no callback", ErrNotCallable, fn.Name)
	}
	in.log.Trace().Str("func", fn.Name).Int("args", len(args)).Msg("invoke native")
	fn.Invocations++
	return desc.Callback(in.heap, args)
}

// invokeMethod dispatches name on obj, searching from the most derived class
// toward the base. obj is borrowed.
func (in *Interp) invokeMethod(r *vm.Reader, obj *object.Object, name string, argc uint32) (*object.Object, error) {
	cls := in.classOf(obj)
	if cls == nil {
		in.discardArgs(r, argc)
		return nil, fmt.Errorf("%w: method %q on %s", ErrTypeMismatch, name, kindName(obj))
	}
	for _, owner := range in.hierarchy(cls.Name) {
		if owner.method(name) == nil {
			continue
		}
		fn := in.findFunction(mangle(owner.Name, name))
		if fn == nil {
			break
		}
		return in.invoke(r, fn, argc, obj)
	}
	in.discardArgs(r, argc)
	return nil, fmt.Errorf("%w: method %s.%s", ErrLookupMiss, cls.Name, name)
}
