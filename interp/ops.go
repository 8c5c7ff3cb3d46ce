package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/starbytes-lang/starbytes/object"
	"github.com/starbytes-lang/starbytes/vm"
)

// unary and binary borrow their operands; the caller releases them.

func (in *Interp) unary(op vm.UnaryOp, v *object.Object) (*object.Object, error) {
	switch op {
	case vm.UnaryPlus:
		if v.Is(object.KindNumber) {
			return v.Retain(), nil
		}
	case vm.UnaryMinus:
		if v.Is(object.KindNumber) {
			if v.IsFloat() {
				return in.heap.NewFloat(-v.Float()), nil
			}
			return in.heap.NewInt(-v.Int()), nil
		}
	case vm.UnaryNot:
		if v.Is(object.KindBool) {
			return in.heap.NewBool(!v.Bool()), nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown unary operator %d", vm.ErrMalformed, op)
	}
	return nil, fmt.Errorf("%w: %s%s", ErrTypeMismatch, op, kindName(v))
}

func (in *Interp) binary(op vm.BinaryOp, a, b *object.Object) (*object.Object, error) {
	switch op {
	case vm.BinaryAdd:
		return in.add(a, b)
	case vm.BinarySub, vm.BinaryMul, vm.BinaryDiv, vm.BinaryMod:
		return in.numericOp(op, a, b)
	case vm.BinaryEqual:
		return in.heap.NewBool(equal(a, b)), nil
	case vm.BinaryNotEqual:
		return in.heap.NewBool(!equal(a, b)), nil
	case vm.BinaryLess, vm.BinaryLessEqual, vm.BinaryGreater, vm.BinaryGreaterEqual:
		return in.compare(op, a, b)
	case vm.BinaryAnd, vm.BinaryOr:
		if !a.Is(object.KindBool) || !b.Is(object.KindBool) {
			return nil, mismatch(op, a, b)
		}
		if op == vm.BinaryAnd {
			return in.heap.NewBool(a.Bool() && b.Bool()), nil
		}
		return in.heap.NewBool(a.Bool() || b.Bool()), nil
	}
	return nil, fmt.Errorf("%w: unknown binary operator %d", vm.ErrMalformed, op)
}

func mismatch(op vm.BinaryOp, a, b *object.Object) error {
	return fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, kindName(a), op, kindName(b))
}

func (in *Interp) add(a, b *object.Object) (*object.Object, error) {
	if a.Is(object.KindNumber) && b.Is(object.KindNumber) {
		return in.numericOp(vm.BinaryAdd, a, b)
	}
	if a.Is(object.KindString) || b.Is(object.KindString) {
		if a == nil || b == nil {
			return nil, mismatch(vm.BinaryAdd, a, b)
		}
		return in.heap.NewString(in.text(a) + in.text(b)), nil
	}
	return nil, mismatch(vm.BinaryAdd, a, b)
}

func (in *Interp) numericOp(op vm.BinaryOp, a, b *object.Object) (*object.Object, error) {
	if !a.Is(object.KindNumber) || !b.Is(object.KindNumber) {
		return nil, mismatch(op, a, b)
	}
	if a.IsFloat() || b.IsFloat() {
		f, err := floatOp(op, a.Float(), b.Float())
		if err != nil {
			return nil, err
		}
		return in.heap.NewFloat(f), nil
	}
	i, err := intOp(op, a.Int(), b.Int())
	if err != nil {
		return nil, err
	}
	return in.heap.NewInt(i), nil
}

func floatOp(op vm.BinaryOp, a, b float64) (float64, error) {
	switch op {
	case vm.BinaryAdd:
		return a + b, nil
	case vm.BinarySub:
		return a - b, nil
	case vm.BinaryMul:
		return a * b, nil
	case vm.BinaryDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case vm.BinaryMod:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return math.Mod(a, b), nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", vm.ErrMalformed, op)
}

func intOp(op vm.BinaryOp, a, b int64) (int64, error) {
	switch op {
	case vm.BinaryAdd:
		return a + b, nil
	case vm.BinarySub:
		return a - b, nil
	case vm.BinaryMul:
		return a * b, nil
	case vm.BinaryDiv:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	case vm.BinaryMod:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a % b, nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", vm.ErrMalformed, op)
}

// equal compares same-kind primitives by value and everything else by handle
// identity.
func equal(a, b *object.Object) bool {
	switch {
	case a.Is(object.KindNumber) && b.Is(object.KindNumber):
		return object.CompareNumbers(a, b) == 0
	case a.Is(object.KindString) && b.Is(object.KindString):
		return a.Str() == b.Str()
	case a.Is(object.KindBool) && b.Is(object.KindBool):
		return a.Bool() == b.Bool()
	}
	return a == b
}

func (in *Interp) compare(op vm.BinaryOp, a, b *object.Object) (*object.Object, error) {
	var c int
	switch {
	case a.Is(object.KindNumber) && b.Is(object.KindNumber):
		c = object.CompareNumbers(a, b)
	case a.Is(object.KindString) && b.Is(object.KindString):
		c = strings.Compare(a.Str(), b.Str())
	default:
		return nil, mismatch(op, a, b)
	}
	var res bool
	switch op {
	case vm.BinaryLess:
		res = c < 0
	case vm.BinaryLessEqual:
		res = c <= 0
	case vm.BinaryGreater:
		res = c > 0
	case vm.BinaryGreaterEqual:
		res = c >= 0
	}
	return in.heap.NewBool(res), nil
}

// text coerces a handle for string concatenation.
func (in *Interp) text(o *object.Object) string {
	switch o.Kind() {
	case object.KindString:
		return o.Str()
	case object.KindNumber:
		if o.IsFloat() {
			return strconv.FormatFloat(o.Float(), 'g', -1, 64)
		}
		return strconv.FormatInt(o.Int(), 10)
	case object.KindBool:
		return strconv.FormatBool(o.Bool())
	}
	return in.render(o, false)
}
