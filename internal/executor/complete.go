package executor

import (
	"fmt"
	"reflect"

	language "github.com/hanpama/typegraph/internal/language"
	schema "github.com/hanpama/typegraph/internal/schema"
)

// executeFields resolves the collected fields of one object into out. It
// returns nil when a non-null field came out null, in which case the whole
// object is null.
func (ex *execution) executeFields(obj *schema.Type, source any, groups []fieldGroup, path Path, out map[string]any, bound boundary) map[string]any {
	for _, g := range groups {
		if !ex.executeField(obj, source, g, path, out, bound) {
			ex.prune(path)
			return nil
		}
	}
	return out
}

// executeField resolves one response key. Async fields are queued and
// written once their batch resolves. It reports false when a non-null field
// resolved to null.
func (ex *execution) executeField(obj *schema.Type, source any, g fieldGroup, path Path, out map[string]any, bound boundary) bool {
	field := g.fields[0]
	fieldPath := path.child(g.name)
	if field.Name == "__typename" {
		out[g.name] = obj.Name
		return true
	}
	def := obj.Field(field.Name)
	if def == nil {
		ex.fail(fieldPath, g.fields, fmt.Sprintf("field %q is not defined on %s", field.Name, obj.Name))
		return true
	}
	at := slot{object: out, key: g.name}

	args, err := coerceArgumentValues(ex.schema, def, field.Arguments, ex.vars)
	if err != nil {
		ex.fail(fieldPath, g.fields, err.Error())
		return ex.settleSync(def, at, nil)
	}
	if def.Async {
		ex.queue = append(ex.queue, &pending{
			task:   AsyncResolveTask{ObjectType: obj.Name, Field: field.Name, Source: source, Args: args},
			ref:    def.Type,
			fields: g.fields,
			path:   fieldPath,
			at:     at,
			bound:  bound,
		})
		return true
	}

	raw, err := ex.runtime.ResolveSync(ex.ctx, obj.Name, field.Name, source, args)
	if err != nil {
		ex.fail(fieldPath, g.fields, err.Error())
		return ex.settleSync(def, at, nil)
	}
	return ex.settleSync(def, at, ex.complete(def.Type, g.fields, raw, fieldPath, at, bound))
}

func (ex *execution) settleSync(def *schema.Field, at slot, value any) bool {
	if value == nil && def.Type.IsNonNull() {
		return false
	}
	at.set(value)
	return true
}

// complete turns a resolved value into its response form. A nil result
// means null; errors are recorded where they happen. A nullable position
// becomes the boundary for null propagation from below it.
func (ex *execution) complete(ref *schema.TypeRef, fields []*language.Field, value any, path Path, at slot, bound boundary) any {
	if ref.IsNonNull() {
		if isNullish(value) {
			ex.fail(path, fields, fmt.Sprintf("cannot return null for non-null field %s", path))
			return nil
		}
		return ex.completeValue(ref.OfType, fields, value, path, bound)
	}
	if isNullish(value) {
		return nil
	}
	return ex.completeValue(ref, fields, value, path, boundary{at: at, path: path, ok: true})
}

func (ex *execution) completeValue(ref *schema.TypeRef, fields []*language.Field, value any, path Path, bound boundary) any {
	if ref.IsList() {
		return ex.completeList(ref.OfType, fields, value, path, bound)
	}
	name := ref.BaseName()
	t := ex.schema.Types[name]
	if t == nil {
		ex.fail(path, fields, fmt.Sprintf("unknown type %s", name))
		return nil
	}
	switch t.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		out, err := ex.runtime.SerializeLeafValue(ex.ctx, name, value)
		if err != nil {
			ex.fail(path, fields, err.Error())
			return nil
		}
		if isNullish(out) {
			return nil
		}
		return out
	case schema.TypeKindObject:
		return ex.completeObject(t, fields, value, path, bound)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		typeName, err := ex.runtime.ResolveType(ex.ctx, name, value)
		if err != nil {
			ex.fail(path, fields, err.Error())
			return nil
		}
		concrete := ex.schema.Types[typeName]
		if concrete == nil || concrete.Kind != schema.TypeKindObject || !t.HasPossibleType(typeName) {
			ex.fail(path, fields, fmt.Sprintf("%s resolved to %q, which is not one of its object types", name, typeName))
			return nil
		}
		return ex.completeObject(concrete, fields, value, path, bound)
	}
	ex.fail(path, fields, fmt.Sprintf("%s is not an output type", name))
	return nil
}

func (ex *execution) completeObject(obj *schema.Type, fields []*language.Field, value any, path Path, bound boundary) any {
	groups := ex.collectSubfields(obj, fields)
	if out := ex.executeFields(obj, value, groups, path, make(map[string]any, len(groups)), bound); out != nil {
		return out
	}
	return nil
}

func (ex *execution) completeList(item *schema.TypeRef, fields []*language.Field, value any, path Path, bound boundary) any {
	items, ok := value.([]any)
	if !ok {
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			ex.fail(path, fields, fmt.Sprintf("expected a list, got %T", value))
			return nil
		}
		items = make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
	}
	out := make([]any, len(items))
	for i, v := range items {
		c := ex.complete(item, fields, v, path.child(i), slot{list: out, index: i}, bound)
		if c == nil && item.IsNonNull() {
			ex.prune(path)
			return nil
		}
		out[i] = c
	}
	return out
}
