package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render produces SDL from the Schema.
// Deterministic ordering: type/directive names sorted lexicographically.
// Built-in scalars and directives are omitted. A schema block is emitted only
// when a root type does not use its conventional name.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	r := &renderer{s: s}
	r.schemaBlock()

	typeNames := make([]string, 0, len(s.Types))
	for name, typ := range s.Types {
		if typ.Kind == TypeKindScalar && IsBuiltinScalar(name) {
			continue
		}
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		typ := s.Types[name]
		switch typ.Kind {
		case TypeKindScalar:
			r.scalar(typ)
		case TypeKindEnum:
			r.enum(typ)
		case TypeKindInputObject:
			r.inputObject(typ)
		case TypeKindObject:
			r.composite("type", typ)
		case TypeKindInterface:
			r.composite("interface", typ)
		case TypeKindUnion:
			r.union(typ)
		}
	}

	directiveNames := make([]string, 0, len(s.Directives))
	for name, directive := range s.Directives {
		switch directive {
		case includeDirective, skipDirective:
			continue
		default:
			directiveNames = append(directiveNames, name)
		}
	}
	sort.Strings(directiveNames)
	for _, name := range directiveNames {
		r.directive(s.Directives[name])
	}

	return strings.TrimRight(r.b.String(), "\n") + "\n"
}

type renderer struct {
	s *Schema
	b strings.Builder
}

func (r *renderer) schemaBlock() {
	roots := []struct{ op, name, conventional string }{
		{"query", r.s.QueryType, "Query"},
		{"mutation", r.s.MutationType, "Mutation"},
		{"subscription", r.s.SubscriptionType, "Subscription"},
	}
	custom := false
	for _, root := range roots {
		if root.name != "" && root.name != root.conventional {
			custom = true
		}
	}
	if !custom {
		return
	}
	r.b.WriteString("schema {\n")
	for _, root := range roots {
		if root.name == "" {
			continue
		}
		fmt.Fprintf(&r.b, "  %s: %s\n", root.op, root.name)
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) description(desc, indent string) {
	if desc == "" {
		return
	}
	r.b.WriteString(indent)
	r.b.WriteString("\"\"\"\n")
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		r.b.WriteString(indent)
		r.b.WriteString(line)
		r.b.WriteString("\n")
	}
	r.b.WriteString(indent)
	r.b.WriteString("\"\"\"\n")
}

func (r *renderer) deprecation(deprecated bool, reason string) {
	if !deprecated {
		return
	}
	r.b.WriteString(" @deprecated")
	if reason != "" {
		r.b.WriteString("(reason: ")
		r.b.WriteString(quote(reason))
		r.b.WriteString(")")
	}
}

func (r *renderer) scalar(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("scalar ")
	r.b.WriteString(typ.Name)
	if typ.SpecifiedByURL != nil {
		r.b.WriteString(" @specifiedBy(url: ")
		r.b.WriteString(quote(*typ.SpecifiedByURL))
		r.b.WriteString(")")
	}
	r.b.WriteString("\n\n")
}

func (r *renderer) enum(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("enum ")
	r.b.WriteString(typ.Name)
	r.b.WriteString(" {\n")
	for _, val := range typ.EnumValues {
		r.description(val.Description, "  ")
		r.b.WriteString("  ")
		r.b.WriteString(val.Name)
		r.deprecation(val.IsDeprecated, val.DeprecationReason)
		r.b.WriteString("\n")
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) inputObject(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("input ")
	r.b.WriteString(typ.Name)
	if typ.OneOf {
		r.b.WriteString(" @oneOf")
	}
	r.b.WriteString(" {\n")
	for _, field := range typ.InputFields {
		r.description(field.Description, "  ")
		r.b.WriteString("  ")
		r.inputValue(field)
		r.deprecation(field.IsDeprecated, field.DeprecationReason)
		r.b.WriteString("\n")
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) composite(keyword string, typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString(keyword)
	r.b.WriteString(" ")
	r.b.WriteString(typ.Name)
	if len(typ.Interfaces) > 0 {
		r.b.WriteString(" implements ")
		r.b.WriteString(strings.Join(typ.Interfaces, " & "))
	}
	r.b.WriteString(" {\n")
	for _, field := range typ.Fields {
		r.field(field)
	}
	r.b.WriteString("}\n\n")
}

func (r *renderer) union(typ *Type) {
	r.description(typ.Description, "")
	r.b.WriteString("union ")
	r.b.WriteString(typ.Name)
	r.b.WriteString(" = ")
	r.b.WriteString(strings.Join(typ.PossibleTypes, " | "))
	r.b.WriteString("\n\n")
}

func (r *renderer) field(field *Field) {
	r.description(field.Description, "  ")
	r.b.WriteString("  ")
	r.b.WriteString(field.Name)
	r.arguments(field.Arguments)
	r.b.WriteString(": ")
	r.b.WriteString(renderTypeRef(field.Type))
	r.deprecation(field.IsDeprecated, field.DeprecationReason)
	r.b.WriteString("\n")
}

func (r *renderer) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	r.b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			r.b.WriteString(", ")
		}
		r.inputValue(arg)
	}
	r.b.WriteString(")")
}

func (r *renderer) inputValue(v *InputValue) {
	r.b.WriteString(v.Name)
	r.b.WriteString(": ")
	r.b.WriteString(renderTypeRef(v.Type))
	if v.DefaultValue != nil {
		r.b.WriteString(" = ")
		r.b.WriteString(r.value(v.DefaultValue, v.Type))
	}
}

func (r *renderer) directive(directive *Directive) {
	r.description(directive.Description, "")
	r.b.WriteString("directive @")
	r.b.WriteString(directive.Name)
	r.arguments(directive.Arguments)
	if directive.IsRepeatable {
		r.b.WriteString(" repeatable")
	}
	r.b.WriteString(" on ")
	r.b.WriteString(strings.Join(directive.Locations, " | "))
	r.b.WriteString("\n\n")
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}

	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}

// FormatValue renders v as a GraphQL literal of the input type ref, as used
// for default values in SDL and introspection.
func FormatValue(s *Schema, v any, ref *TypeRef) string {
	r := &renderer{s: s}
	if s == nil {
		r.s = NewSchema("")
	}
	return r.value(v, ref)
}

// value renders a literal of the given input type. Enum values are written
// unquoted, input object fields in declaration order.
func (r *renderer) value(value any, ref *TypeRef) string {
	if value == nil {
		return "null"
	}
	for ref != nil && ref.Kind == TypeRefKindNonNull {
		ref = ref.OfType
	}
	var named *Type
	if ref != nil && ref.Kind == TypeRefKindNamed {
		named = r.s.Types[ref.Named]
	}

	switch v := value.(type) {
	case string:
		if named != nil && named.Kind == TypeKindEnum {
			return v
		}
		return quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		var item *TypeRef
		if ref != nil && ref.Kind == TypeRefKindList {
			item = ref.OfType
		}
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = r.value(elem, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		var parts []string
		if named != nil && named.Kind == TypeKindInputObject {
			for _, f := range named.InputFields {
				if fv, ok := v[f.Name]; ok {
					parts = append(parts, f.Name+": "+r.value(fv, f.Type))
				}
			}
		} else {
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				parts = append(parts, k+": "+r.value(v[k], nil))
			}
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

// quote renders s as a GraphQL string literal. Control characters use \u
// escapes; other characters are written as they are.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, c)
				continue
			}
			b.WriteRune(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
