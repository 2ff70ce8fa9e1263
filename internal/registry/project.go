package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// project reads field from a parent value. It understands maps with string
// keys, structs (matched by graphql tag, json tag, then case-insensitive
// name) and exported methods without arguments returning a value and an
// optional error. Absent fields read as nil.
func project(source any, field string) (any, error) {
	if source == nil {
		return nil, nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}
	rv := reflect.ValueOf(source)
	if idx, ok := methodIndex(rv.Type(), field); ok {
		return callMethod(rv.Method(idx), field)
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("registry: cannot read %s from %s", field, rv.Type())
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Struct:
		if idx, ok := structField(rv.Type(), field); ok {
			return rv.FieldByIndex(idx).Interface(), nil
		}
		if idx, ok := methodIndex(rv.Type(), field); ok {
			return callMethod(rv.Method(idx), field)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("registry: cannot read %s from %T", field, source)
}

func callMethod(m reflect.Value, field string) (any, error) {
	out := m.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

type memberKey struct {
	t     reflect.Type
	field string
}

var (
	methodCache sync.Map // memberKey -> int (-1 when absent)
	fieldCache  sync.Map // memberKey -> []int (nil when absent)
)

func methodIndex(t reflect.Type, field string) (int, bool) {
	key := memberKey{t, field}
	if v, ok := methodCache.Load(key); ok {
		idx := v.(int)
		return idx, idx >= 0
	}
	idx := -1
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.EqualFold(m.Name, field) || !getter(m.Type) {
			continue
		}
		idx = i
		break
	}
	methodCache.Store(key, idx)
	return idx, idx >= 0
}

// getter reports whether a method takes no arguments besides its receiver
// and returns a value, optionally followed by an error.
func getter(mt reflect.Type) bool {
	if mt.NumIn() != 1 {
		return false
	}
	switch mt.NumOut() {
	case 1:
		return true
	case 2:
		return mt.Out(1) == errorType
	}
	return false
}

func structField(t reflect.Type, field string) ([]int, bool) {
	key := memberKey{t, field}
	if v, ok := fieldCache.Load(key); ok {
		idx := v.([]int)
		return idx, idx != nil
	}
	var byName []int
	var found []int
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tagName(f.Tag.Get("graphql")) == field || tagName(f.Tag.Get("json")) == field {
			found = f.Index
			break
		}
		if byName == nil && strings.EqualFold(f.Name, field) {
			byName = f.Index
		}
	}
	if found == nil {
		found = byName
	}
	fieldCache.Store(key, found)
	return found, found != nil
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
