package propertylist

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPropertyList = errors.New("invalid property list")
	ErrMissingField        = errors.New("missing field")
	ErrSerialization       = errors.New("property list serialization failed")
)

// TypeError reports an accessor used on a Value of another Kind.
type TypeError struct {
	Want Kind
	Got  Kind
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: want %s, got %s", ErrInvalidPropertyList, e.Want, e.Got)
}

func (e *TypeError) Is(target error) bool {
	return target == ErrInvalidPropertyList
}

// MissingFieldError reports a required dictionary key that is absent.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s %s", ErrMissingField, e.Key)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// FieldError attaches the dictionary key to an error about its value.
type FieldError struct {
	Key string
	Err error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
