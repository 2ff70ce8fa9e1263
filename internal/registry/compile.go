package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hanpama/typegraph/internal/compiler"
	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/language"
	"github.com/hanpama/typegraph/internal/schema"
	"github.com/hanpama/typegraph/internal/typemodel"
)

type CompileOption func(*compileOptions)

type compileOptions struct {
	defaultResolvers bool
	skipValidation   bool
}

// WithDefaultResolvers lets fields of registered object types fall back to
// reading the property of the same name from the parent value. Root fields
// still need a resolver.
func WithDefaultResolvers() CompileOption {
	return func(o *compileOptions) { o.defaultResolvers = true }
}

// SkipResolverValidation compiles without checking resolver bindings. Use it
// for tooling that only needs the schema shape.
func SkipResolverValidation() CompileOption {
	return func(o *compileOptions) { o.skipValidation = true }
}

// Compile validates resolver bindings and compiles the registry with a fresh
// compiler. The registry itself is not modified and may be compiled again.
func (r Registry) Compile(opts ...CompileOption) (*Schema, error) {
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx := context.Background()
	start := time.Now()
	eventbus.Publish(ctx, events.CompileStart{Types: len(r.order), Resolvers: len(r.resolvers)})
	s, err := r.compile(o)
	finish := events.CompileFinish{Err: err, Duration: time.Since(start)}
	if s != nil {
		finish.Types = len(s.types)
	}
	eventbus.Publish(ctx, finish)
	return s, err
}

func (r Registry) compile(o compileOptions) (*Schema, error) {
	// Types compile before resolver keys are checked, so that a type without
	// a name fails as such rather than as an unresolved key.
	c := compiler.New()
	for _, t := range r.Types() {
		if _, err := c.CompileNamed(t); err != nil {
			return nil, err
		}
	}
	if !o.skipValidation {
		if keys := r.unresolved(o.defaultResolvers); len(keys) > 0 {
			return nil, &UnresolvedFieldsError{Keys: keys}
		}
	}

	sch := schema.NewSchema("").AddBuiltins()
	for _, name := range []string{QueryRoot, MutationRoot, SubscriptionRoot} {
		fields := r.roots[name]
		if len(fields) == 0 {
			continue
		}
		if _, err := c.CompileRoot(name, typemodel.Record(fields)); err != nil {
			return nil, err
		}
		switch name {
		case QueryRoot:
			sch.SetQueryType(name)
		case MutationRoot:
			sch.SetMutationType(name)
		case SubscriptionRoot:
			sch.SetSubscriptionType(name)
		}
	}
	types, err := c.CollectNamedTypes()
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		sch.AddType(t)
	}

	bindings := r.bind(sch)
	if !o.skipValidation {
		if keys := r.unknown(sch); len(keys) > 0 {
			return nil, &UnknownFieldsError{Keys: keys}
		}
	}

	sdl := schema.Render(sch)
	loaded, err := language.LoadSchema("typegraph.graphql", sdl)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return newSchema(sch, loaded, types, sdl, newRuntime(sch, bindings, r.discriminators())), nil
}

// unresolved returns the keys of root fields, and of fields of registered
// object types, that have no resolver of their own or inherited from an
// interface.
func (r Registry) unresolved(defaults bool) []string {
	var keys []string
	for _, root := range []string{QueryRoot, MutationRoot, SubscriptionRoot} {
		for _, f := range r.roots[root] {
			if key := fieldKey(root, f.Name); !r.Bound(key) {
				keys = append(keys, key)
			}
		}
	}
	if defaults {
		return keys
	}
	for _, t := range r.Types() {
		obj, ok := t.(*typemodel.ObjectType)
		if !ok {
			continue
		}
		supers := typemodel.Supertypes(obj)
		for _, f := range obj.Fields {
			if r.boundModel(obj.Name, supers, f.Name) {
				continue
			}
			keys = append(keys, fieldKey(obj.Name, f.Name))
		}
	}
	return keys
}

func (r Registry) boundModel(typeName string, supers []*typemodel.InterfaceType, field string) bool {
	if r.Bound(fieldKey(typeName, field)) {
		return true
	}
	for _, iface := range supers {
		if _, ok := iface.Field(field); ok && r.Bound(fieldKey(iface.Name, field)) {
			return true
		}
	}
	return false
}

// unknown returns resolver keys that name no field of a compiled object or
// interface type.
func (r Registry) unknown(sch *schema.Schema) []string {
	var keys []string
	for key := range r.resolvers {
		typeName, field, ok := strings.Cut(key, ".")
		t := sch.Types[typeName]
		if ok && t != nil && (t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface) && t.Field(field) != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// bind attaches resolvers to the fields of every compiled object type and
// marks those fields async. A field without its own binding inherits the
// binding of the first interface declaring it.
func (r Registry) bind(sch *schema.Schema) map[string]binding {
	out := make(map[string]binding)
	for _, t := range sch.Types {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			b, ok := r.lookup(sch, t, f.Name)
			if !ok {
				continue
			}
			f.SetAsync(true)
			out[fieldKey(t.Name, f.Name)] = b
		}
	}
	return out
}

func (r Registry) lookup(sch *schema.Schema, t *schema.Type, field string) (binding, bool) {
	key := fieldKey(t.Name, field)
	if fn, ok := r.resolvers[key]; ok {
		return binding{key: key, fn: fn}, true
	}
	for _, name := range t.Interfaces {
		iface := sch.Types[name]
		if iface == nil || iface.Field(field) == nil {
			continue
		}
		key := fieldKey(name, field)
		if fn, ok := r.resolvers[key]; ok {
			return binding{key: key, fn: fn}, true
		}
	}
	return binding{}, false
}
