// Package registry accumulates type model definitions and resolver bindings
// and compiles them into an executable schema.
//
// A Registry is a value. Every method that changes it returns a new Registry
// and leaves the receiver untouched, so partially built registries can be
// branched and compiled independently.
package registry

import (
	"context"
	"maps"
	"slices"

	"github.com/hanpama/typegraph/internal/typemodel"
)

// Root operation type names.
const (
	QueryRoot        = "Query"
	MutationRoot     = "Mutation"
	SubscriptionRoot = "Subscription"
)

// ResolveFunc supplies the value of one field. root is the parent value, nil
// for root operation fields. args holds the coerced field arguments.
type ResolveFunc func(ctx context.Context, root any, args map[string]any, info ResolveInfo) (any, error)

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	// ObjectType is the concrete object type owning the field.
	ObjectType string
	Field      string
	// Key is the binding the resolver was found under. It names an interface
	// when the resolver is inherited.
	Key string
}

type Registry struct {
	types     map[string]typemodel.Named
	order     []string
	roots     map[string][]typemodel.Field
	resolvers map[string]ResolveFunc
}

// Empty returns a registry without types, roots or resolvers.
func Empty() Registry { return Registry{} }

// AddType registers a named type under its name. Registering a name again
// replaces the earlier definition but keeps its position.
func (r Registry) AddType(t typemodel.Named) Registry {
	name := t.TypeName()
	types := maps.Clone(r.types)
	if types == nil {
		types = make(map[string]typemodel.Named)
	}
	order := r.order
	if _, ok := types[name]; !ok {
		order = append(slices.Clone(r.order), name)
	}
	types[name] = t
	r.types, r.order = types, order
	return r
}

// SetQuery replaces the fields of the query root.
func (r Registry) SetQuery(fields ...typemodel.Field) Registry {
	return r.setRoot(QueryRoot, fields)
}

// SetMutation replaces the fields of the mutation root.
func (r Registry) SetMutation(fields ...typemodel.Field) Registry {
	return r.setRoot(MutationRoot, fields)
}

// SetSubscription replaces the fields of the subscription root.
func (r Registry) SetSubscription(fields ...typemodel.Field) Registry {
	return r.setRoot(SubscriptionRoot, fields)
}

func (r Registry) setRoot(name string, fields []typemodel.Field) Registry {
	roots := maps.Clone(r.roots)
	if roots == nil {
		roots = make(map[string][]typemodel.Field)
	}
	roots[name] = slices.Clone(fields)
	r.roots = roots
	return r
}

// Resolve binds fn to a field key of the form Type.field. The key is checked
// when the registry is compiled.
func (r Registry) Resolve(key string, fn ResolveFunc) Registry {
	resolvers := maps.Clone(r.resolvers)
	if resolvers == nil {
		resolvers = make(map[string]ResolveFunc)
	}
	resolvers[key] = fn
	r.resolvers = resolvers
	return r
}

// Types returns the registered types in registration order.
func (r Registry) Types() []typemodel.Named {
	out := make([]typemodel.Named, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.types[name])
	}
	return out
}

// Root returns the fields of a root operation type.
func (r Registry) Root(name string) []typemodel.Field {
	return slices.Clone(r.roots[name])
}

// Bound reports whether a resolver is bound to key.
func (r Registry) Bound(key string) bool {
	_, ok := r.resolvers[key]
	return ok
}

func fieldKey(typeName, field string) string { return typeName + "." + field }
