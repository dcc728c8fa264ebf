package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPointer is returned for strings that are not RFC 6901 pointers.
	ErrInvalidPointer = errors.New("store: invalid pointer")
	// ErrConflict is returned when a write cannot be applied to the document
	// shape, for example traversing a scalar or using a non-numeric index on
	// an array.
	ErrConflict = errors.New("store: write conflict")
	// ErrDestroyed is returned by writes issued after Destroy.
	ErrDestroyed = errors.New("store: destroyed")
)

// PointerError carries the pointer and operation that failed.
type PointerError struct {
	Op      string
	Pointer string
	Err     error
}

func (e *PointerError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: %s %q: %v", e.Op, e.Pointer, e.Err)
}

func (e *PointerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func pointerError(op, pointer string, err error) error {
	var existing *PointerError
	if errors.As(err, &existing) {
		return err
	}
	return &PointerError{Op: op, Pointer: pointer, Err: err}
}
