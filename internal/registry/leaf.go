package registry

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/hanpama/typegraph/internal/schema"
)

func serializeBuiltin(typeName string, value any) (any, error) {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch typeName {
	case "Int":
		switch {
		case rv.CanInt():
			if n := rv.Int(); n >= math.MinInt32 && n <= math.MaxInt32 {
				return int(n), nil
			}
		case rv.CanUint():
			if n := rv.Uint(); n <= math.MaxInt32 {
				return int(n), nil
			}
		case rv.CanFloat():
			if f := rv.Float(); f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
				return int(f), nil
			}
		}
	case "Float":
		switch {
		case rv.CanInt():
			return float64(rv.Int()), nil
		case rv.CanUint():
			return float64(rv.Uint()), nil
		case rv.CanFloat():
			if f := rv.Float(); !math.IsInf(f, 0) && !math.IsNaN(f) {
				return f, nil
			}
		}
	case "String":
		switch rv.Kind() {
		case reflect.String:
			return rv.String(), nil
		case reflect.Bool:
			return strconv.FormatBool(rv.Bool()), nil
		}
		if rv.CanInt() {
			return strconv.FormatInt(rv.Int(), 10), nil
		}
		if rv.CanFloat() {
			return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
		}
		if s, ok := value.(fmt.Stringer); ok {
			return s.String(), nil
		}
	case "Boolean":
		if rv.Kind() == reflect.Bool {
			return rv.Bool(), nil
		}
	case "ID":
		switch {
		case rv.Kind() == reflect.String:
			return rv.String(), nil
		case rv.CanInt():
			return strconv.FormatInt(rv.Int(), 10), nil
		case rv.CanUint():
			return strconv.FormatUint(rv.Uint(), 10), nil
		}
		if s, ok := value.(fmt.Stringer); ok {
			return s.String(), nil
		}
	}
	return nil, fmt.Errorf("%s cannot represent value: %v", typeName, value)
}

func serializeEnum(t *schema.Type, value any) (any, error) {
	var name string
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.String:
		name = rv.String()
	default:
		s, ok := value.(fmt.Stringer)
		if !ok {
			return nil, fmt.Errorf("enum %s cannot represent non-string value: %v", t.Name, value)
		}
		name = s.String()
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("enum %s cannot represent value: %q", t.Name, name)
}
