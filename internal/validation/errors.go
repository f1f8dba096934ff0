package validation

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the simulator wraps exactly one of these.
var (
	ErrArityMismatch             = errors.New("arity mismatch")
	ErrLengthMismatch            = errors.New("length mismatch")
	ErrUnknownOperation          = errors.New("unknown operation")
	ErrUnsupportedKernel         = errors.New("unsupported kernel for operation")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrUnsupportedForAdjointDiff = errors.New("operation not supported by adjoint differentiation")
)

// Error carries the operation that failed alongside the error kind.
type Error struct {
	Op   string
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(op string, kind error, format string, args ...interface{}) *Error {
	return &Error{
		Op:   op,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// KindLabel returns a short metric-friendly label for err's kind.
func KindLabel(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrArityMismatch):
		return "arity_mismatch"
	case errors.Is(err, ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, ErrUnknownOperation):
		return "unknown_operation"
	case errors.Is(err, ErrUnsupportedKernel):
		return "unsupported_kernel"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnsupportedForAdjointDiff):
		return "unsupported_adjoint"
	default:
		return "other"
	}
}
