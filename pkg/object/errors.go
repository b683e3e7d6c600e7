package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no object is stored under a hash.
	ErrNotFound = errors.New("object not found")
	// ErrTypeMismatch is returned when a decoded object is not the variant
	// the caller asked for.
	ErrTypeMismatch = errors.New("object type mismatch")
	// ErrCorruptObject is returned when stored bytes do not parse into the
	// shape their type tag declares.
	ErrCorruptObject = errors.New("corrupt object")
	// ErrAmbiguousPrefix is returned when a short hash matches more than one
	// object.
	ErrAmbiguousPrefix = errors.New("ambiguous object prefix")
)

// TypeMismatchError records the stored and expected types of an object.
type TypeMismatchError struct {
	Hash Hash
	Got  ObjectType
	Want ObjectType
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object %s: %s: got %q, want %q", e.Hash, ErrTypeMismatch, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
