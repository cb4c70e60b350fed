package accessor

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for the accessor engine. Every failure wraps one of these
// so callers can classify with errors.Is while the message still carries the
// offending member and declaring type.
var (
	// ErrNotFound reports a failed member or method lookup. It always reaches
	// the caller: a missing member means a marker refers to something that no
	// longer exists, which is an integration bug, not a runtime condition.
	ErrNotFound = errors.New("accessor: not found")

	// ErrArgument reports a nil instance on an instance member, a non-nil
	// instance on a static member, a wrong indexer arity, or an
	// argument-count mismatch on invocation.
	ErrArgument = errors.New("accessor: invalid argument")

	// ErrInvalidOperation reports a write on a read-only or constant member,
	// an invocation of an unresolved generic method, or indexer access
	// through the non-indexed API.
	ErrInvalidOperation = errors.New("accessor: invalid operation")

	// ErrUnsupported reports a member shape the engine cannot represent
	// (channels, funcs, unsafe pointers). Scanners treat it as "skip this
	// member" rather than a hard failure.
	ErrUnsupported = errors.New("accessor: unsupported member shape")
)

func notFoundErr(t reflect.Type, name string) error {
	return fmt.Errorf("%w: %s on %s", ErrNotFound, name, t)
}

func argumentErr(t reflect.Type, name, detail string) error {
	return fmt.Errorf("%w: %s on %s: %s", ErrArgument, name, t, detail)
}

func invalidOpErr(t reflect.Type, name, detail string) error {
	return fmt.Errorf("%w: %s on %s: %s", ErrInvalidOperation, name, t, detail)
}

func unsupportedErr(t reflect.Type, name string, ft reflect.Type) error {
	return fmt.Errorf("%w: %s on %s has type %s", ErrUnsupported, name, t, ft)
}
