package introspection

import (
	"slices"
	"strings"

	schema "github.com/hanpama/typegraph/internal/schema"
)

// typeNode is the source value of a __Type: a named definition, or a LIST or
// NON_NULL wrapper around another reference.
type typeNode struct {
	def  *schema.Type
	wrap schema.TypeRefKind
	of   *schema.TypeRef
}

func (r *runtime) node(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind != schema.TypeRefKindNamed {
		return typeNode{wrap: ref.Kind, of: ref.OfType}
	}
	if t := r.lookup(ref.Named); t != nil {
		return typeNode{def: t}
	}
	return nil
}

func (r *runtime) named(name string) any {
	if name == "" {
		return nil
	}
	return r.node(schema.NamedType(name))
}

func (r *runtime) nodes(names []string) []any {
	out := make([]any, 0, len(names))
	for _, name := range names {
		if n := r.named(name); n != nil {
			out = append(out, n)
		}
	}
	return out
}

type metaFunc func(r *runtime, source any, args map[string]any) any

// metaFields resolves the fields of the introspection types, keyed by
// "Type.field".
var metaFields = map[string]metaFunc{
	"__Schema.description": func(_ *runtime, src any, _ map[string]any) any {
		return optional(src.(*schema.Schema).Description)
	},
	"__Schema.types": func(r *runtime, src any, _ map[string]any) any {
		sch := src.(*schema.Schema)
		names := make([]string, 0, len(sch.Types)+8)
		for name := range sch.Types {
			names = append(names, name)
		}
		for _, t := range schema.IntrospectionTypes() {
			names = append(names, t.Name)
		}
		slices.Sort(names)
		return r.nodes(slices.Compact(names))
	},
	"__Schema.queryType": func(r *runtime, src any, _ map[string]any) any {
		return r.named(src.(*schema.Schema).QueryType)
	},
	"__Schema.mutationType": func(r *runtime, src any, _ map[string]any) any {
		return r.named(src.(*schema.Schema).MutationType)
	},
	"__Schema.subscriptionType": func(r *runtime, src any, _ map[string]any) any {
		return r.named(src.(*schema.Schema).SubscriptionType)
	},
	"__Schema.directives": func(_ *runtime, src any, _ map[string]any) any {
		sch := src.(*schema.Schema)
		out := make([]*schema.Directive, 0, len(sch.Directives))
		for _, d := range sch.Directives {
			out = append(out, d)
		}
		slices.SortFunc(out, func(a, b *schema.Directive) int { return strings.Compare(a.Name, b.Name) })
		return out
	},

	"__Type.kind": func(_ *runtime, src any, _ map[string]any) any {
		n := src.(typeNode)
		if n.def == nil {
			return string(n.wrap)
		}
		return string(n.def.Kind)
	},
	"__Type.name": func(_ *runtime, src any, _ map[string]any) any {
		if n := src.(typeNode); n.def != nil {
			return n.def.Name
		}
		return nil
	},
	"__Type.description": func(_ *runtime, src any, _ map[string]any) any {
		if n := src.(typeNode); n.def != nil {
			return optional(n.def.Description)
		}
		return nil
	},
	"__Type.specifiedByURL": func(_ *runtime, src any, _ map[string]any) any {
		if n := src.(typeNode); n.def != nil && n.def.SpecifiedByURL != nil {
			return *n.def.SpecifiedByURL
		}
		return nil
	},
	"__Type.fields": func(_ *runtime, src any, args map[string]any) any {
		n := src.(typeNode)
		if n.def == nil || (n.def.Kind != schema.TypeKindObject && n.def.Kind != schema.TypeKindInterface) {
			return nil
		}
		return visible(n.def.Fields, args, func(f *schema.Field) bool { return f.IsDeprecated })
	},
	"__Type.interfaces": func(r *runtime, src any, _ map[string]any) any {
		n := src.(typeNode)
		if n.def == nil || (n.def.Kind != schema.TypeKindObject && n.def.Kind != schema.TypeKindInterface) {
			return nil
		}
		return r.nodes(n.def.Interfaces)
	},
	"__Type.possibleTypes": func(r *runtime, src any, _ map[string]any) any {
		n := src.(typeNode)
		if n.def == nil || !n.def.IsAbstract() {
			return nil
		}
		return r.nodes(slices.Sorted(slices.Values(n.def.PossibleTypes)))
	},
	"__Type.enumValues": func(_ *runtime, src any, args map[string]any) any {
		n := src.(typeNode)
		if n.def == nil || n.def.Kind != schema.TypeKindEnum {
			return nil
		}
		return visible(n.def.EnumValues, args, func(v *schema.EnumValue) bool { return v.IsDeprecated })
	},
	"__Type.inputFields": func(_ *runtime, src any, args map[string]any) any {
		n := src.(typeNode)
		if n.def == nil || n.def.Kind != schema.TypeKindInputObject {
			return nil
		}
		return visible(n.def.InputFields, args, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
	"__Type.ofType": func(r *runtime, src any, _ map[string]any) any {
		return r.node(src.(typeNode).of)
	},
	"__Type.isOneOf": func(_ *runtime, src any, _ map[string]any) any {
		if n := src.(typeNode); n.def != nil && n.def.Kind == schema.TypeKindInputObject {
			return n.def.OneOf
		}
		return nil
	},

	"__Field.name": func(_ *runtime, src any, _ map[string]any) any { return src.(*schema.Field).Name },
	"__Field.description": func(_ *runtime, src any, _ map[string]any) any {
		return optional(src.(*schema.Field).Description)
	},
	"__Field.args": func(_ *runtime, src any, args map[string]any) any {
		return visible(src.(*schema.Field).Arguments, args, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
	"__Field.type":         func(r *runtime, src any, _ map[string]any) any { return r.node(src.(*schema.Field).Type) },
	"__Field.isDeprecated": func(_ *runtime, src any, _ map[string]any) any { return src.(*schema.Field).IsDeprecated },
	"__Field.deprecationReason": func(_ *runtime, src any, _ map[string]any) any {
		f := src.(*schema.Field)
		return reason(f.IsDeprecated, f.DeprecationReason)
	},

	"__InputValue.name": func(_ *runtime, src any, _ map[string]any) any { return src.(*schema.InputValue).Name },
	"__InputValue.description": func(_ *runtime, src any, _ map[string]any) any {
		return optional(src.(*schema.InputValue).Description)
	},
	"__InputValue.type": func(r *runtime, src any, _ map[string]any) any {
		return r.node(src.(*schema.InputValue).Type)
	},
	"__InputValue.defaultValue": func(r *runtime, src any, _ map[string]any) any {
		v := src.(*schema.InputValue)
		if v.DefaultValue == nil {
			return nil
		}
		return schema.FormatValue(r.sch, v.DefaultValue, v.Type)
	},
	"__InputValue.isDeprecated": func(_ *runtime, src any, _ map[string]any) any {
		return src.(*schema.InputValue).IsDeprecated
	},
	"__InputValue.deprecationReason": func(_ *runtime, src any, _ map[string]any) any {
		v := src.(*schema.InputValue)
		return reason(v.IsDeprecated, v.DeprecationReason)
	},

	"__EnumValue.name": func(_ *runtime, src any, _ map[string]any) any { return src.(*schema.EnumValue).Name },
	"__EnumValue.description": func(_ *runtime, src any, _ map[string]any) any {
		return optional(src.(*schema.EnumValue).Description)
	},
	"__EnumValue.isDeprecated": func(_ *runtime, src any, _ map[string]any) any {
		return src.(*schema.EnumValue).IsDeprecated
	},
	"__EnumValue.deprecationReason": func(_ *runtime, src any, _ map[string]any) any {
		v := src.(*schema.EnumValue)
		return reason(v.IsDeprecated, v.DeprecationReason)
	},

	"__Directive.name": func(_ *runtime, src any, _ map[string]any) any { return src.(*schema.Directive).Name },
	"__Directive.description": func(_ *runtime, src any, _ map[string]any) any {
		return optional(src.(*schema.Directive).Description)
	},
	"__Directive.isRepeatable": func(_ *runtime, src any, _ map[string]any) any {
		return src.(*schema.Directive).IsRepeatable
	},
	"__Directive.locations": func(_ *runtime, src any, _ map[string]any) any {
		return src.(*schema.Directive).Locations
	},
	"__Directive.args": func(_ *runtime, src any, args map[string]any) any {
		return visible(src.(*schema.Directive).Arguments, args, func(v *schema.InputValue) bool { return v.IsDeprecated })
	},
}

// visible drops deprecated entries unless includeDeprecated is set.
func visible[T any](items []T, args map[string]any, deprecated func(T) bool) []T {
	if include, _ := args["includeDeprecated"].(bool); include {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !deprecated(it) {
			out = append(out, it)
		}
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reason(deprecated bool, why string) any {
	if !deprecated {
		return nil
	}
	return why
}
