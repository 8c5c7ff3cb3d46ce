package interp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

// eval reads and evaluates one expression. The returned handle, if any, is
// owned by the caller. Every sub-expression is consumed even when an earlier
// one fails, so the stream stays aligned.
func (in *Interp) eval(r *vm.Reader) (*object.Object, error) {
	code, ok := r.ReadCode()
	if !ok {
		return nil, r.Err()
	}
	return in.evalCode(r, code)
}

func (in *Interp) evalCode(r *vm.Reader, code vm.Code) (*object.Object, error) {
	in.log.Trace().Stringer("code", code).Str("scope", in.scopes.Active()).Msg("eval")
	switch code {
	case vm.IntObjCreate:
		return in.evalLiteral(r)
	case vm.VarRef:
		name := r.ReadID()
		v, ok := in.scopes.Lookup(in.scopes.Active(), name)
		if !ok {
			return nil, fmt.Errorf("%w: variable %q", ErrLookupMiss, name)
		}
		return v, nil
	case vm.VarSet:
		name := r.ReadID()
		v, err := in.eval(r)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("assigning %q: %w", name, ErrNoValue)
		}
		in.scopes.Bind(name, v.Retain())
		return v, nil
	case vm.FuncRef:
		name := r.ReadID()
		fn := in.findFunction(name)
		if fn == nil {
			return nil, fmt.Errorf("%w: function %q", ErrLookupMiss, name)
		}
		return in.heap.NewFuncRef(fn), nil
	case vm.InvokeFunc:
		return in.evalInvoke(r)
	case vm.UnaryOperator:
		op := vm.UnaryOp(r.ReadU8())
		v, err := in.eval(r)
		defer v.Release()
		if err != nil {
			return nil, err
		}
		return in.unary(op, v)
	case vm.BinaryOperator:
		op := vm.BinaryOp(r.ReadU8())
		lhs, lerr := in.eval(r)
		defer lhs.Release()
		rhs, rerr := in.eval(r)
		defer rhs.Release()
		if err := errors.Join(lerr, rerr); err != nil {
			return nil, err
		}
		return in.binary(op, lhs, rhs)
	case vm.NewObj:
		class := r.ReadID()
		argc := r.ReadCount()
		return in.construct(r, class, argc)
	case vm.MemberGet:
		obj, err := in.eval(r)
		defer obj.Release()
		name := r.ReadID()
		if err != nil {
			return nil, err
		}
		if !obj.Is(object.KindInstance) {
			return nil, fmt.Errorf("%w: member %q on %s", ErrTypeMismatch, name, kindName(obj))
		}
		if !obj.HasProperty(name) {
			return nil, fmt.Errorf("%w: member %q", ErrLookupMiss, name)
		}
		return obj.Property(name).Retain(), nil
	case vm.MemberSet:
		obj, oerr := in.eval(r)
		defer obj.Release()
		name := r.ReadID()
		v, verr := in.eval(r)
		if err := errors.Join(oerr, verr); err != nil {
			v.Release()
			return nil, err
		}
		if !obj.Is(object.KindInstance) {
			v.Release()
			return nil, fmt.Errorf("%w: setting member %q on %s", ErrTypeMismatch, name, kindName(obj))
		}
		if v == nil {
			return nil, fmt.Errorf("setting member %q: %w", name, ErrNoValue)
		}
		obj.SetProperty(name, v)
		return v, nil
	case vm.MemberInvoke:
		obj, err := in.eval(r)
		defer obj.Release()
		name := r.ReadID()
		argc := r.ReadCount()
		if err != nil {
			in.discardArgs(r, argc)
			return nil, err
		}
		return in.invokeMethod(r, obj, name, argc)
	case vm.IndexGet:
		coll, cerr := in.eval(r)
		defer coll.Release()
		idx, ierr := in.eval(r)
		defer idx.Release()
		if err := errors.Join(cerr, ierr); err != nil {
			return nil, err
		}
		return in.indexGet(coll, idx)
	case vm.IndexSet:
		coll, cerr := in.eval(r)
		defer coll.Release()
		idx, ierr := in.eval(r)
		defer idx.Release()
		v, verr := in.eval(r)
		if err := errors.Join(cerr, ierr, verr); err != nil {
			v.Release()
			return nil, err
		}
		if err := in.indexSet(coll, idx, v); err != nil {
			v.Release()
			return nil, err
		}
		return v, nil
	case vm.DictLiteral:
		return in.evalDict(r)
	case vm.RegexLiteral:
		pattern := r.ReadID()
		flags := r.ReadID()
		if err := in.regexes.validate(pattern, flags); err != nil {
			in.diagnostic = err.Error()
			return nil, err
		}
		return in.heap.NewRegex(pattern, flags), nil
	case vm.TypeCheck:
		v, err := in.eval(r)
		defer v.Release()
		name := r.ReadID()
		if err != nil {
			return nil, err
		}
		return in.heap.NewBool(in.isType(v, name)), nil
	}
	r.Fail(fmt.Errorf("%w: unexpected %s in expression position", vm.ErrMalformed, code))
	return nil, r.Err()
}

func (in *Interp) evalLiteral(r *vm.Reader) (*object.Object, error) {
	switch vm.LiteralKind(r.ReadU8()) {
	case vm.LitString:
		s := r.ReadID()
		if !r.Healthy() {
			return nil, r.Err()
		}
		return in.heap.NewString(s), nil
	case vm.LitBool:
		b := r.ReadBool()
		if !r.Healthy() {
			return nil, r.Err()
		}
		return in.heap.NewBool(b), nil
	case vm.LitNumber:
		isFloat, i, f := r.ReadNumber()
		if !r.Healthy() {
			return nil, r.Err()
		}
		if isFloat {
			return in.heap.NewFloat(f), nil
		}
		return in.heap.NewInt(i), nil
	case vm.LitArray:
		n := r.ReadCount()
		arr := in.heap.NewArray()
		var errs []error
		for i := uint32(0); i < n && r.Healthy(); i++ {
			v, err := in.eval(r)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if v == nil {
				errs = append(errs, fmt.Errorf("array element %d: %w", i, ErrNoValue))
				continue
			}
			arr.Push(v)
			v.Release()
		}
		if err := errors.Join(errs...); err != nil {
			arr.Release()
			return nil, err
		}
		if !r.Healthy() {
			arr.Release()
			return nil, r.Err()
		}
		return arr, nil
	}
	r.Fail(fmt.Errorf("%w: bad literal kind", vm.ErrMalformed))
	return nil, r.Err()
}

func (in *Interp) evalDict(r *vm.Reader) (*object.Object, error) {
	n := r.ReadCount()
	dict := in.heap.NewDict()
	var errs []error
	for i := uint32(0); i < n && r.Healthy(); i++ {
		k, kerr := in.eval(r)
		v, verr := in.eval(r)
		switch {
		case kerr != nil || verr != nil:
			errs = append(errs, kerr, verr)
		case !validKey(k):
			errs = append(errs, fmt.Errorf("%w: dictionary key must be String or Number", ErrTypeMismatch))
		case v == nil:
			errs = append(errs, fmt.Errorf("dictionary value: %w", ErrNoValue))
		default:
			dict.Set(k, v)
		}
		k.Release()
		v.Release()
	}
	if err := errors.Join(errs...); err != nil {
		dict.Release()
		return nil, err
	}
	if !r.Healthy() {
		dict.Release()
		return nil, r.Err()
	}
	return dict, nil
}

func validKey(k *object.Object) bool {
	return k.Is(object.KindString) || k.Is(object.KindNumber)
}

func (in *Interp) evalInvoke(r *vm.Reader) (*object.Object, error) {
	callee, err := in.eval(r)
	defer callee.Release()
	argc := r.ReadCount()
	if err != nil {
		in.discardArgs(r, argc)
		return nil, err
	}
	var fn *FuncTemplate
	if callee.Is(object.KindFuncRef) {
		fn, _ = callee.Target().(*FuncTemplate)
	}
	if fn == nil {
		in.discardArgs(r, argc)
		return nil, fmt.Errorf("%w: %s", ErrNotCallable, kindName(callee))
	}
	return in.invoke(r, fn, argc, nil)
}

func (in *Interp) indexGet(coll, idx *object.Object) (*object.Object, error) {
	switch {
	case coll.Is(object.KindArray):
		if !idx.Is(object.KindNumber) || idx.IsFloat() {
			return nil, fmt.Errorf("%w: array index must be an integer, got %s", ErrTypeMismatch, kindName(idx))
		}
		v := coll.Index(int(idx.Int()))
		if v == nil {
			return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx.Int(), coll.Len())
		}
		return v.Retain(), nil
	case coll.Is(object.KindDict):
		if !validKey(idx) {
			return nil, fmt.Errorf("%w: dictionary key must be String or Number", ErrTypeMismatch)
		}
		v := coll.Get(idx)
		if v == nil {
			return nil, fmt.Errorf("%w: key %s", ErrLookupMiss, in.render(idx, false))
		}
		return v.Retain(), nil
	}
	return nil, fmt.Errorf("%w: cannot index %s", ErrTypeMismatch, kindName(coll))
}

func (in *Interp) indexSet(coll, idx, v *object.Object) error {
	if v == nil {
		return ErrNoValue
	}
	switch {
	case coll.Is(object.KindArray):
		if !idx.Is(object.KindNumber) || idx.IsFloat() {
			return fmt.Errorf("%w: array index must be an integer, got %s", ErrTypeMismatch, kindName(idx))
		}
		if !coll.SetIndex(int(idx.Int()), v) {
			return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, idx.Int(), coll.Len())
		}
		return nil
	case coll.Is(object.KindDict):
		if !validKey(idx) {
			return fmt.Errorf("%w: dictionary key must be String or Number", ErrTypeMismatch)
		}
		coll.Set(idx, v)
		return nil
	}
	return fmt.Errorf("%w: cannot index %s", ErrTypeMismatch, kindName(coll))
}

// compileRegex validates a pattern with its flags. The compiled form is not
// kept.
func compileRegex(pattern, flags string) error {
	var mods strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			mods.WriteRune(f)
		case 'g':
		default:
			return fmt.Errorf("%w /%s/%s: unknown flag %q", ErrInvalidRegex, pattern, flags, f)
		}
	}
	expr := pattern
	if mods.Len() > 0 {
		expr = "(?" + mods.String() + ")" + pattern
	}
	if _, err := regexp.Compile(expr); err != nil {
		return fmt.Errorf("%w /%s/%s: %w", ErrInvalidRegex, pattern, flags, err)
	}
	return nil
}

func (in *Interp) isType(v *object.Object, name string) bool {
	if v == nil {
		return false
	}
	switch name {
	case "Int":
		return v.Is(object.KindNumber) && !v.IsFloat()
	case "Float":
		return v.Is(object.KindNumber) && v.IsFloat()
	case "String", "Number", "Bool", "Array", "Dict", "Regex", "Func", "Task":
		return v.Kind().String() == name
	}
	return in.instanceOf(v, name)
}

func kindName(o *object.Object) string {
	if o == nil {
		return "nothing"
	}
	return o.Kind().String()
}
