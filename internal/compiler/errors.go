package compiler

import (
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/hanpama/typegraph/internal/typemodel"
)

var (
	// ErrMissingIdentifier indicates a named type, input type or scalar
	// transform without a stable name.
	ErrMissingIdentifier = errors.New("missing identifier in schema")
	// ErrUnsupportedSchemaShape indicates a node with no compilation rule in
	// the position it was found.
	ErrUnsupportedSchemaShape = errors.New("schema support is not implemented")
	// ErrTransformMisuse indicates a raw transform where a scalar transform
	// carrying both sides is required.
	ErrTransformMisuse = errors.New("use DefineTransform instead of RawTransform")
	// ErrReservedField indicates a declared field using the discriminator name.
	ErrReservedField = errors.New("field name " + typemodel.TagField + " is reserved for the discriminator")
	// ErrNameConflict indicates two different kinds of named types sharing a name.
	ErrNameConflict = errors.New("type name is used by more than one kind of type")
)

// Error reports a fatal compilation failure. Kind is one of the sentinel
// errors of this package and is matched by errors.Is.
type Error struct {
	Kind error
	// Trail lists the compilation contexts active when the failure occurred,
	// outermost first.
	Trail []string
	// Schema is the offending node serialized as JSON.
	Schema []byte
}

func (e *Error) Error() string {
	parts := make([]string, 0, 3)
	if len(e.Trail) > 0 {
		parts = append(parts, strings.Join(e.Trail, " > "))
	}
	parts = append(parts, e.Kind.Error())
	if len(e.Schema) > 0 {
		parts = append(parts, string(e.Schema))
	}
	return strings.Join(parts, "\n")
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, trail []string, subject any) *Error {
	e := &Error{Kind: kind, Trail: append([]string(nil), trail...)}
	if subject != nil {
		if b, err := json.MarshalIndent(subject, "", "  "); err == nil {
			e.Schema = b
		}
	}
	return e
}
