package interp

import "errors"

// Evaluation failures. A nil handle with a nil error is a legitimate "no
// value"; any of these marks a failed operation.
var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrLookupMiss      = errors.New("unresolved name")
	ErrDivideByZero    = errors.New("division by zero")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidRegex    = errors.New("invalid regular expression")
	ErrNotCallable     = errors.New("value is not callable")
	ErrArity           = errors.New("wrong number of arguments")
	ErrNoValue         = errors.New("expression produced no value")
	ErrDepthExceeded   = errors.New("maximum call depth exceeded")
)
