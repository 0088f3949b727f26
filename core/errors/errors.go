package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure so callers can react without matching on the
// specific module error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindInsufficientFunds
	KindNotFound
	KindStateConflict
	KindOverflow
	KindInvariantViolation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindOverflow:
		return "overflow"
	case KindInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is a kinded sentinel. Two errors match under errors.Is when they are
// the same value, or when the target is a bare kind sentinel of the same kind.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

// Is reports whether target is the kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t == e {
		return true
	}
	return t.Msg == "" && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrInsufficientFunds  = &Error{Kind: KindInsufficientFunds}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrStateConflict      = &Error{Kind: KindStateConflict}
	ErrOverflow           = &Error{Kind: KindOverflow}
	ErrInvariantViolation = &Error{Kind: KindInvariantViolation}
)

// New declares a module-specific sentinel of the supplied kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Invariant builds an InvariantViolation carrying a formatted detail. These
// are never expected in a consistent state and abort the operation.
func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}

// KindOf extracts the kind of the first kinded error in the chain.
func KindOf(err error) Kind {
	var kinded *Error
	if stderrors.As(err, &kinded) {
		return kinded.Kind
	}
	return KindUnknown
}
