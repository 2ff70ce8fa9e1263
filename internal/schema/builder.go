package schema

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/hanpama/typegraph/internal/language"
	"github.com/vektah/gqlparser/v2/ast"
)

// BuildFromSDL parses and validates SDL and returns the corresponding Schema.
// Root operation fields are marked async; all other fields are sync
// projections of their parent value.
func BuildFromSDL(sdl string) (*Schema, error) {
	loaded, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromLoaded(loaded), nil
}

// BuildFromLoaded converts a validated schema document. Introspection types
// and the prelude are skipped; built-in scalars and directives map onto the
// shared definitions of this package.
func BuildFromLoaded(src *language.LoadedSchema) *Schema {
	s := NewSchema(src.Description).AddBuiltins()
	roots := map[string]bool{}
	if src.Query != nil {
		s.SetQueryType(src.Query.Name)
		roots[src.Query.Name] = true
	}
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
		roots[src.Mutation.Name] = true
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
		roots[src.Subscription.Name] = true
	}

	for name, def := range src.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		if t := buildDefinition(src, def, roots[def.Name]); t != nil {
			s.AddType(t)
		}
	}

	for name, dir := range src.Directives {
		if isPreludeDirective(name) {
			continue
		}
		d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
		for _, loc := range dir.Locations {
			d.Locations = append(d.Locations, string(loc))
		}
		for _, arg := range dir.Arguments {
			d.AddArgument(buildArgument(arg))
		}
		s.AddDirective(d)
	}
	return s
}

// buildDefinition converts one named definition. Fields of root types are
// marked async.
func buildDefinition(src *language.LoadedSchema, def *ast.Definition, root bool) *Type {
	switch def.Kind {
	case ast.Object, ast.Interface:
		kind := TypeKindObject
		if def.Kind == ast.Interface {
			kind = TypeKindInterface
		}
		t := NewType(def.Name, kind, def.Description)
		for _, iface := range def.Interfaces {
			t.AddInterface(iface)
		}
		for _, f := range def.Fields {
			if strings.HasPrefix(f.Name, "__") {
				continue
			}
			t.AddField(buildField(f, root))
		}
		if kind == TypeKindInterface {
			for _, p := range src.GetPossibleTypes(def) {
				t.AddPossibleType(p.Name)
			}
		}
		return t
	case ast.Union:
		t := NewType(def.Name, TypeKindUnion, def.Description)
		for _, member := range def.Types {
			t.AddPossibleType(member)
		}
		return t
	case ast.Enum:
		t := NewType(def.Name, TypeKindEnum, def.Description)
		for _, v := range def.EnumValues {
			ev := NewEnumValue(v.Name, v.Description)
			if reason, ok := deprecation(v.Directives); ok {
				ev.Deprecate(reason)
			}
			t.AddEnumValue(ev)
		}
		return t
	case ast.InputObject:
		t := NewType(def.Name, TypeKindInputObject, def.Description).
			SetOneOf(def.Directives.ForName("oneOf") != nil)
		for _, f := range def.Fields {
			in := NewInputValue(f.Name, f.Description, buildTypeRef(f.Type)).
				SetDefault(defaultValue(f.DefaultValue))
			if reason, ok := deprecation(f.Directives); ok {
				in.Deprecate(reason)
			}
			t.AddInputField(in)
		}
		return t
	case ast.Scalar:
		return NewType(def.Name, TypeKindScalar, def.Description)
	}
	return nil
}

// introspectionTypes converts the meta types (__Schema, __Type, ...) that the
// parser prelude declares, so that execution and validation agree on them.
var introspectionTypes = sync.OnceValue(func() []*Type {
	loaded, err := language.LoadSchema("introspection.graphql", "type Query { ok: Boolean }")
	if err != nil {
		panic(fmt.Sprintf("schema: loading prelude: %v", err))
	}
	var out []*Type
	for name, def := range loaded.Types {
		if strings.HasPrefix(name, "__") {
			out = append(out, buildDefinition(loaded, def, false))
		}
	}
	slices.SortFunc(out, func(a, b *Type) int { return strings.Compare(a.Name, b.Name) })
	return out
})

// IntrospectionTypes returns the introspection meta types sorted by name. The
// returned definitions are shared and must not be modified.
func IntrospectionTypes() []*Type { return introspectionTypes() }

func buildField(def *ast.FieldDefinition, root bool) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type)).SetAsync(root)
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		f.AddArgument(buildArgument(arg))
	}
	return f
}

func buildArgument(arg *ast.ArgumentDefinition) *InputValue {
	in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
		SetDefault(defaultValue(arg.DefaultValue))
	if reason, ok := deprecation(arg.Directives); ok {
		in.Deprecate(reason)
	}
	return in
}

func buildTypeRef(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func defaultValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return out
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

func isPreludeDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf", "defer":
		return true
	}
	return false
}
