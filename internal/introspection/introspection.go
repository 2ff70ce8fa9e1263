// Package introspection answers __schema and __type queries over a compiled
// schema by wrapping the runtime that serves the schema's own fields.
package introspection

import (
	"context"
	"slices"
	"strings"

	executor "github.com/hanpama/typegraph/internal/executor"
	schema "github.com/hanpama/typegraph/internal/schema"
)

// Wrap returns an executable copy of sch extended with the introspection meta
// types and the __schema and __type root fields, together with a runtime that
// resolves them and delegates every other field to base. sch is not modified.
func Wrap(base executor.Runtime, sch *schema.Schema) (executor.Runtime, *schema.Schema) {
	ext := &schema.Schema{
		QueryType:        sch.QueryType,
		MutationType:     sch.MutationType,
		SubscriptionType: sch.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(sch.Types)+8),
		Directives:       sch.Directives,
		Description:      sch.Description,
	}
	for name, t := range sch.Types {
		ext.Types[name] = t
	}
	for _, t := range schema.IntrospectionTypes() {
		ext.Types[t.Name] = t
	}
	if q := sch.GetQueryType(); q != nil {
		withMeta := *q
		withMeta.Fields = append(slices.Clone(q.Fields),
			schema.NewField("__schema", "Access the current type schema of this server.",
				schema.NonNullType(schema.NamedType("__Schema"))),
			schema.NewField("__type", "Request the type information of a single type.",
				schema.NamedType("__Type")).
				AddArgument(schema.NewInputValue("name", "", schema.NonNullType(schema.NamedType("String")))),
		)
		ext.Types[q.Name] = &withMeta
	}
	return &runtime{base: base, sch: sch, ext: ext}, ext
}

type runtime struct {
	base executor.Runtime
	sch  *schema.Schema // as described to clients
	ext  *schema.Schema // as executed
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if strings.HasPrefix(objectType, "__") {
		resolve, ok := metaFields[objectType+"."+field]
		if !ok {
			return nil, nil
		}
		return resolve(r, source, args), nil
	}
	if objectType == r.sch.QueryType {
		switch field {
		case "__schema":
			return r.sch, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.lookup(name); t != nil {
				return typeNode{def: t}, nil
			}
			return nil, nil
		}
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

// SerializeLeafValue passes meta enums through; every value produced for them
// is already a valid enum name.
func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if strings.HasPrefix(typ, "__") {
		return value, nil
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

// lookup finds a named type as clients see it: the schema's own definitions
// first, then the meta types.
func (r *runtime) lookup(name string) *schema.Type {
	if t := r.sch.Types[name]; t != nil {
		return t
	}
	if strings.HasPrefix(name, "__") {
		return r.ext.Types[name]
	}
	return nil
}
