package executor

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"

	language "github.com/hanpama/typegraph/internal/language"
	schema "github.com/hanpama/typegraph/internal/schema"
)

var errNull = errors.New("null is not allowed here")

// coerceVariableValues coerces the provided variables to the types the
// operation declares. Missing variables take their declared default.
func coerceVariableValues(sch *schema.Schema, op *language.OperationDefinition, provided map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		ref := typeRefOf(def.Type)
		v, ok := provided[def.Variable]
		if !ok {
			if def.DefaultValue != nil {
				cv, err := coerceLiteral(sch, def.DefaultValue, ref, nil)
				if err != nil {
					return nil, fmt.Errorf("variable $%s: invalid default: %w", def.Variable, err)
				}
				out[def.Variable] = cv
			} else if def.Type.NonNull {
				return nil, fmt.Errorf("variable $%s of type %s is required", def.Variable, def.Type)
			}
			continue
		}
		cv, err := coerceInput(sch, v, ref)
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s: %w", def.Variable, def.Type, err)
		}
		out[def.Variable] = cv
	}
	return out, nil
}

// coerceArgumentValues coerces the arguments given to a field and fills in
// defaults. An argument bound to an unset variable counts as not given.
func coerceArgumentValues(sch *schema.Schema, def *schema.Field, given language.ArgumentList, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(def.Arguments))
	for _, argDef := range def.Arguments {
		arg := given.ForName(argDef.Name)
		if arg != nil && arg.Value != nil && arg.Value.Kind == language.Variable {
			if _, set := vars[arg.Value.Raw]; !set {
				arg = nil
			}
		}
		if arg == nil {
			if argDef.DefaultValue != nil {
				cv, err := coerceInput(sch, argDef.DefaultValue, argDef.Type)
				if err != nil {
					return nil, fmt.Errorf("argument %q: invalid default: %w", argDef.Name, err)
				}
				out[argDef.Name] = cv
			} else if argDef.Type.IsNonNull() {
				return nil, fmt.Errorf("argument %q of type %s is required", argDef.Name, argDef.Type)
			}
			continue
		}
		cv, err := coerceLiteral(sch, arg.Value, argDef.Type, vars)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", argDef.Name, err)
		}
		out[argDef.Name] = cv
	}
	return out, nil
}

// coerceLiteral coerces a value written in the document. Variables resolve to
// their already coerced values.
func coerceLiteral(sch *schema.Schema, v *language.Value, ref *schema.TypeRef, vars map[string]any) (any, error) {
	if v != nil && v.Kind == language.Variable {
		val := vars[v.Raw]
		if val == nil && ref.IsNonNull() {
			return nil, fmt.Errorf("variable $%s: %w", v.Raw, errNull)
		}
		return val, nil
	}
	if v == nil || v.Kind == language.NullValue {
		if ref.IsNonNull() {
			return nil, errNull
		}
		return nil, nil
	}
	if ref.IsNonNull() {
		return coerceLiteral(sch, v, ref.OfType, vars)
	}
	if ref.IsList() {
		if v.Kind != language.ListValue {
			item, err := coerceLiteral(sch, v, ref.OfType, vars)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			item, err := coerceLiteral(sch, c.Value, ref.OfType, vars)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = item
		}
		return out, nil
	}

	t := sch.Types[ref.BaseName()]
	if t != nil && t.Kind == schema.TypeKindInputObject {
		if v.Kind != language.ObjectValue {
			return nil, fmt.Errorf("%s must be an object", t.Name)
		}
		for _, c := range v.Children {
			if t.InputField(c.Name) == nil {
				return nil, fmt.Errorf("%s has no field %q", t.Name, c.Name)
			}
		}
		out := make(map[string]any, len(t.InputFields))
		for _, f := range t.InputFields {
			fv := v.Children.ForName(f.Name)
			if fv != nil && fv.Kind == language.Variable {
				if _, set := vars[fv.Raw]; !set {
					fv = nil
				}
			}
			if fv == nil {
				if err := fillDefault(sch, t, f, out); err != nil {
					return nil, err
				}
				continue
			}
			cv, err := coerceLiteral(sch, fv, f.Type, vars)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
			}
			out[f.Name] = cv
		}
		return out, nil
	}
	return coerceInput(sch, literalValue(v), ref)
}

// literalValue converts a constant literal to the form variables arrive in.
func literalValue(v *language.Value) any {
	switch v.Kind {
	case language.IntValue:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n
		}
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = literalValue(c.Value)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			out[c.Name] = literalValue(c.Value)
		}
		return out
	}
	// strings, block strings and enum names
	return v.Raw
}

// coerceInput coerces an external value, such as a decoded JSON variable or
// a schema default, to ref.
func coerceInput(sch *schema.Schema, v any, ref *schema.TypeRef) (any, error) {
	if ref.IsNonNull() {
		if isNullish(v) {
			return nil, errNull
		}
		return coerceInput(sch, v, ref.OfType)
	}
	if isNullish(v) {
		return nil, nil
	}
	if ref.IsList() {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			item, err := coerceInput(sch, v, ref.OfType)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			item, err := coerceInput(sch, rv.Index(i).Interface(), ref.OfType)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = item
		}
		return out, nil
	}

	name := ref.BaseName()
	switch name {
	case "Int":
		return coerceInt(v)
	case "Float":
		return coerceFloat(v)
	case "String":
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("String cannot represent %T", v)
	case "Boolean":
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("Boolean cannot represent %T", v)
	case "ID":
		return coerceID(v)
	}

	t := sch.Types[name]
	if t == nil {
		return nil, fmt.Errorf("unknown input type %s", name)
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		if s, ok := v.(string); ok {
			for _, ev := range t.EnumValues {
				if ev.Name == s {
					return s, nil
				}
			}
		}
		return nil, fmt.Errorf("%v is not a value of %s", v, t.Name)
	case schema.TypeKindInputObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s must be an object", t.Name)
		}
		for k := range m {
			if t.InputField(k) == nil {
				return nil, fmt.Errorf("%s has no field %q", t.Name, k)
			}
		}
		out := make(map[string]any, len(t.InputFields))
		for _, f := range t.InputFields {
			fv, ok := m[f.Name]
			if !ok {
				if err := fillDefault(sch, t, f, out); err != nil {
					return nil, err
				}
				continue
			}
			cv, err := coerceInput(sch, fv, f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, f.Name, err)
			}
			out[f.Name] = cv
		}
		return out, nil
	case schema.TypeKindScalar:
		if t.ParseValue != nil {
			return t.ParseValue(v)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%s is not an input type", t.Name)
}

// fillDefault sets an omitted input field to its default, if it has one.
func fillDefault(sch *schema.Schema, t *schema.Type, f *schema.InputValue, out map[string]any) error {
	if f.DefaultValue == nil {
		if f.Type.IsNonNull() {
			return fmt.Errorf("%s.%s of type %s is required", t.Name, f.Name, f.Type)
		}
		return nil
	}
	cv, err := coerceInput(sch, f.DefaultValue, f.Type)
	if err != nil {
		return fmt.Errorf("%s.%s: invalid default: %w", t.Name, f.Name, err)
	}
	out[f.Name] = cv
	return nil
}

// coerceInt accepts integers and integral floats within 32 bits.
func coerceInt(v any) (any, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case float32:
		return coerceInt(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("Int cannot represent non-integer %v", x)
		}
		if x < math.MinInt32 || x > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent %v", x)
		}
		return int(x), nil
	default:
		return nil, fmt.Errorf("Int cannot represent %T", v)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("Int cannot represent %d", n)
	}
	return int(n), nil
}

func coerceFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return nil, fmt.Errorf("Float cannot represent %T", v)
}

// coerceID accepts strings and integers; integers become their decimal form.
func coerceID(v any) (any, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return strconv.FormatInt(int64(x), 10), nil
		}
	}
	return nil, fmt.Errorf("ID cannot represent %v", v)
}

// typeRefOf converts a type written in the document.
func typeRefOf(t *language.Type) *schema.TypeRef {
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefOf(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}
