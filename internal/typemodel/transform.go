package typemodel

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// ErrTransformValue reports a value of the wrong Go type handed to a transform.
var ErrTransformValue = errors.New("typemodel: unexpected transform value")

// Codec converts between the wire form E and the domain form I of a scalar.
type Codec[E, I any] struct {
	Decode func(E) (I, error)
	Encode func(I) (E, error)
}

// ScalarTransform is a custom scalar: an external wire node, an internal node
// and a bidirectional conversion between their values. The id becomes the
// compiled scalar's name.
type ScalarTransform struct {
	Meta
	ID       string
	External Node
	Internal Node

	decode func(any) (any, error)
	encode func(any) (any, error)
}

func (*ScalarTransform) Kind() Kind { return KindScalarTransform }

// Decode converts a wire value into the domain form.
func (t *ScalarTransform) Decode(v any) (any, error) { return t.decode(v) }

// Encode converts a domain value into the wire form.
func (t *ScalarTransform) Encode(v any) (any, error) { return t.encode(v) }

// DefineTransform builds a ScalarTransform from a typed codec. Give it an id
// with WithID; compiling a transform without one fails.
func DefineTransform[E, I any](external, internal Node, codec Codec[E, I], opts ...Option) *ScalarTransform {
	o := applyOptions(opts)
	return &ScalarTransform{
		Meta:     o.meta,
		ID:       o.id,
		External: external,
		Internal: internal,
		decode: func(v any) (any, error) {
			e, err := assertValue[E](v)
			if err != nil {
				return nil, err
			}
			return codec.Decode(e)
		},
		encode: func(v any) (any, error) {
			i, err := assertValue[I](v)
			if err != nil {
				return nil, err
			}
			return codec.Encode(i)
		},
	}
}

// assertValue converts v to T, accepting pointers to T and numeric values that
// convert to T without losing precision or range.
func assertValue[T any](v any) (T, error) {
	var zero T
	if t, ok := v.(T); ok {
		return t, nil
	}
	if p, ok := v.(*T); ok && p != nil {
		return *p, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if rv.IsValid() && isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		if !fits(rv, target) {
			return zero, fmt.Errorf("%w: %v does not fit %s", ErrTransformValue, v, target)
		}
		return rv.Convert(target).Interface().(T), nil
	}
	return zero, fmt.Errorf("%w: want %s, got %T", ErrTransformValue, target, v)
}

// fits reports whether the numeric value rv converts to target exactly.
func fits(rv reflect.Value, target reflect.Type) bool {
	dst := reflect.New(target).Elem()
	switch {
	case dst.CanInt():
		switch {
		case rv.CanInt():
			return !dst.OverflowInt(rv.Int())
		case rv.CanUint():
			return rv.Uint() <= math.MaxInt64 && !dst.OverflowInt(int64(rv.Uint()))
		default:
			f := rv.Float()
			return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !dst.OverflowInt(int64(f))
		}
	case dst.CanUint():
		switch {
		case rv.CanInt():
			return rv.Int() >= 0 && !dst.OverflowUint(uint64(rv.Int()))
		case rv.CanUint():
			return !dst.OverflowUint(rv.Uint())
		default:
			f := rv.Float()
			return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !dst.OverflowUint(uint64(f))
		}
	default:
		if rv.CanFloat() {
			return !dst.OverflowFloat(rv.Float())
		}
		return true
	}
}

// Transform is a one-sided mapping of a wire node. It describes how a value
// is read but has no typed codec or identity, so it cannot be compiled; use
// DefineTransform instead.
type Transform struct {
	Meta
	Wire   Node
	Decode func(any) (any, error)
	Encode func(any) (any, error)
}

func (*Transform) Kind() Kind { return KindTransform }

func RawTransform(wire Node, decode, encode func(any) (any, error)) *Transform {
	return &Transform{Wire: wire, Decode: decode, Encode: encode}
}
