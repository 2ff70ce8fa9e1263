// Package scalars provides ready-made scalar transforms.
package scalars

import (
	"time"

	"github.com/google/uuid"
	"github.com/hanpama/typegraph/internal/typemodel"
)

// DateTime carries time.Time values as RFC 3339 strings.
var DateTime = typemodel.DefineTransform(typemodel.String(), typemodel.String(), typemodel.Codec[string, time.Time]{
	Decode: func(s string) (time.Time, error) { return time.Parse(time.RFC3339Nano, s) },
	Encode: func(t time.Time) (string, error) { return t.UTC().Format(time.RFC3339Nano), nil },
},
	typemodel.WithID("DateTime"),
	typemodel.Describe("An instant in time, encoded as an RFC 3339 string."),
)

// UUID carries uuid.UUID values in their canonical string form.
var UUID = typemodel.DefineTransform(typemodel.String(), typemodel.String(), typemodel.Codec[string, uuid.UUID]{
	Decode: uuid.Parse,
	Encode: func(id uuid.UUID) (string, error) { return id.String(), nil },
},
	typemodel.WithID("UUID"),
	typemodel.Describe("A universally unique identifier in canonical 8-4-4-4-12 form."),
)

// All lists the transforms of this package by id.
func All() map[string]*typemodel.ScalarTransform {
	return map[string]*typemodel.ScalarTransform{
		DateTime.ID: DateTime,
		UUID.ID:     UUID,
	}
}
