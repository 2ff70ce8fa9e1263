package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
	"github.com/hanpama/typegraph/internal/executor"
	"github.com/hanpama/typegraph/internal/schema"
	"github.com/hanpama/typegraph/internal/typemodel"
)

type binding struct {
	key string
	fn  ResolveFunc
}

// runtime implements executor.Runtime over bound resolvers.
//   - Fields with a binding are async and run in BatchResolveAsync. Tasks are
//     grouped by (objectType, field); groups run in parallel.
//   - Other fields are projected from the parent value in ResolveSync.
//   - Abstract values are resolved through their discriminator.
type runtime struct {
	schema   *schema.Schema
	bindings map[string]binding
	// tags maps discriminator values to object type names.
	tags map[string]string
}

var _ executor.Runtime = (*runtime)(nil)

func newRuntime(sch *schema.Schema, bindings map[string]binding, tags map[string]string) *runtime {
	return &runtime{schema: sch, bindings: bindings, tags: tags}
}

// ResolveSync projects the field from the parent value. It never calls a
// resolver. A panicking getter becomes a field error.
func (r *runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("registry: reading %s.%s panicked: %v", objectType, field, p)
		}
	}()
	return project(source, field)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	type group struct {
		key  string
		idxs []int
	}
	var groups []group
	idxByKey := map[string]int{}
	for i, t := range tasks {
		k := fieldKey(t.ObjectType, t.Field)
		if gi, ok := idxByKey[k]; ok {
			groups[gi].idxs = append(groups[gi].idxs, i)
			continue
		}
		idxByKey[k] = len(groups)
		groups = append(groups, group{key: k, idxs: []int{i}})
	}
	run := func(g group) {
		b, ok := r.bindings[g.key]
		for _, i := range g.idxs {
			if !ok {
				results[i] = executor.AsyncResolveResult{Error: fmt.Errorf("registry: no resolver bound for %s", g.key)}
				continue
			}
			results[i] = r.call(ctx, b, tasks[i])
		}
	}

	if len(groups) == 1 {
		run(groups[0])
		return results
	}
	var wg sync.WaitGroup
	wg.Add(len(groups))
	for _, g := range groups {
		go func() {
			defer wg.Done()
			run(g)
		}()
	}
	wg.Wait()
	return results
}

func (r *runtime) call(ctx context.Context, b binding, task executor.AsyncResolveTask) (res executor.AsyncResolveResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res = executor.AsyncResolveResult{Error: fmt.Errorf("registry: resolver %s panicked: %v", b.key, p)}
		}
		eventbus.Publish(ctx, events.ResolverFinish{
			ObjectType: task.ObjectType,
			Field:      task.Field,
			Err:        res.Error,
			Duration:   time.Since(start),
		})
	}()
	info := ResolveInfo{ObjectType: task.ObjectType, Field: task.Field, Key: b.key}
	v, err := b.fn(ctx, task.Source, task.Args, info)
	if err != nil {
		return executor.AsyncResolveResult{Error: err}
	}
	return executor.AsyncResolveResult{Value: v}
}

// ResolveType reads the discriminator of value: a _tag map entry or the
// TypeTag of a Tagged value. Without one, an abstract type with a single
// possible type resolves to it.
func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	t := r.schema.Types[abstractType]
	if t == nil || !t.IsAbstract() {
		return "", fmt.Errorf("registry: %s is not an abstract type", abstractType)
	}
	if tag, ok := discriminatorOf(value); ok {
		name := tag
		if mapped, ok := r.tags[tag]; ok {
			name = mapped
		}
		if !t.HasPossibleType(name) {
			return "", fmt.Errorf("registry: discriminator %q does not name a possible type of %s", tag, abstractType)
		}
		return name, nil
	}
	if len(t.PossibleTypes) == 1 {
		return t.PossibleTypes[0], nil
	}
	return "", fmt.Errorf("registry: cannot determine the concrete type of %s from %T", abstractType, value)
}

func discriminatorOf(value any) (string, bool) {
	switch v := value.(type) {
	case typemodel.Tagged:
		return v.TypeTag(), true
	case map[string]any:
		tag, ok := v[typemodel.TagField].(string)
		return tag, ok
	}
	return "", false
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if schema.IsBuiltinScalar(typeName) {
		return serializeBuiltin(typeName, value)
	}
	t := r.schema.Types[typeName]
	if t == nil {
		return nil, fmt.Errorf("registry: unknown leaf type %s", typeName)
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		return serializeEnum(t, value)
	case schema.TypeKindScalar:
		if t.Serialize == nil {
			return value, nil
		}
		out, err := t.Serialize(value)
		if err != nil {
			return nil, fmt.Errorf("%s cannot represent value %v: %w", typeName, value, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("registry: %s is not a leaf type", typeName)
}
