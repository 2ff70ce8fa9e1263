package registry

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedFields indicates fields that need a bound resolver but have none.
	ErrUnresolvedFields = errors.New("registry: fields without resolver")
	// ErrUnknownField indicates a resolver bound to a key that names no
	// compiled field.
	ErrUnknownField = errors.New("registry: resolver bound to unknown field")
	// ErrInvalidSchema indicates a compiled schema rejected by the schema
	// validator.
	ErrInvalidSchema = errors.New("registry: compiled schema is invalid")
)

// UnresolvedFieldsError lists every field key lacking a resolver.
type UnresolvedFieldsError struct {
	Keys []string
}

func (e *UnresolvedFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnresolvedFields.Error(), strings.Join(e.Keys, ", "))
}

func (e *UnresolvedFieldsError) Is(target error) bool { return target == ErrUnresolvedFields }

// UnknownFieldsError lists resolver keys that match no field.
type UnknownFieldsError struct {
	Keys []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownField.Error(), strings.Join(e.Keys, ", "))
}

func (e *UnknownFieldsError) Is(target error) bool { return target == ErrUnknownField }
