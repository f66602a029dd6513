package reconcile

import (
	"errors"
	"fmt"
)

// ErrorKind classifies reconciliation failures.
type ErrorKind int

const (
	// KindUnknown is the zero kind.
	KindUnknown ErrorKind = iota
	// KindInvariant means the engine's own bookkeeping became inconsistent.
	KindInvariant
	// KindAdapter means an adapter callback returned an error.
	KindAdapter
	// KindPanic means a callback panicked. Produced by drivers that recover.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvariant:
		return "invariant"
	case KindAdapter:
		return "adapter"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ErrInvariant matches every error of kind KindInvariant via errors.Is.
var ErrInvariant = errors.New("reconciliation invariant violated")

// Error is the error type returned by every reconciler in this package.
type Error struct {
	// Op names the step that failed, e.g. "map.create" or "tree.children".
	Op string
	// Kind classifies the failure.
	Kind ErrorKind
	// Err is the underlying error. For KindAdapter it is the callback's error.
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrInvariant and e is an invariant failure.
func (e *Error) Is(target error) bool {
	return target == ErrInvariant && e.Kind == KindInvariant
}

// IsInvariant reports whether err carries an invariant violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

func invariantf(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindInvariant, Err: fmt.Errorf(format, args...)}
}

// adapterErr wraps a callback error. Errors that already carry a kind, for
// example from a nested SyncMap inside an adapter, pass through untouched.
func adapterErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	return &Error{Op: op, Kind: KindAdapter, Err: err}
}
