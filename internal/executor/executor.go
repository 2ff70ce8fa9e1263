package executor

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/hanpama/typegraph/internal/language"
	schema "github.com/hanpama/typegraph/internal/schema"
)

// Executor executes documents against one schema. It holds no per-request
// state and may be shared.
type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// ExecuteRequest executes the operation of document named operationName, or
// its only operation when the name is empty. The document is expected to be
// valid for the schema.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	op, err := selectOperation(document, operationName)
	if err != nil {
		return requestError(err)
	}
	var root *schema.Type
	switch op.Operation {
	case language.Query:
		root = e.schema.GetQueryType()
	case language.Mutation:
		root = e.schema.GetMutationType()
	case language.Subscription:
		root = e.schema.GetSubscriptionType()
	}
	if root == nil {
		return requestError(fmt.Errorf("schema does not support %s operations", op.Operation))
	}
	vars, err := coerceVariableValues(e.schema, op, variableValues)
	if err != nil {
		return requestError(err)
	}

	ex := &execution{
		ctx:      ctx,
		runtime:  e.runtime,
		schema:   e.schema,
		document: document,
		vars:     vars,
		pruned:   make(map[string]bool),
	}
	data := ex.run(root, op, initialValue)
	if data == nil {
		return &ExecutionResult{Errors: ex.errors}
	}
	return &ExecutionResult{Data: data, Errors: ex.errors}
}

func requestError(err error) *ExecutionResult {
	return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
}

func selectOperation(doc *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" {
		if len(doc.Operations) != 1 {
			return nil, fmt.Errorf("document has %d operations; an operation name is required", len(doc.Operations))
		}
		return doc.Operations[0], nil
	}
	if op := doc.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, fmt.Errorf("unknown operation %q", name)
}

// execution is the state of one ExecuteRequest call.
type execution struct {
	ctx      context.Context
	runtime  Runtime
	schema   *schema.Schema
	document *language.QueryDocument
	vars     map[string]any
	errors   []GraphQLError

	// queue holds async fields found since the last batch.
	queue []*pending
	// pruned holds paths of subtrees replaced by null; nothing under them
	// is resolved any more.
	pruned map[string]bool
	// nullData is set once a null reached the response root.
	nullData bool
}

// slot is a writable position in the response: a key of an object result or
// an index of a list result.
type slot struct {
	object map[string]any
	key    string
	list   []any
	index  int
}

func (s slot) set(v any) {
	if s.object != nil {
		s.object[s.key] = v
		return
	}
	s.list[s.index] = v
}

// boundary is the nearest nullable position above a value: where a null in
// a non-null position lands. The zero boundary is the response data itself.
type boundary struct {
	at   slot
	path Path
	ok   bool
}

type pending struct {
	task   AsyncResolveTask
	ref    *schema.TypeRef
	fields []*language.Field
	path   Path
	at     slot
	bound  boundary
}

func (ex *execution) run(root *schema.Type, op *language.OperationDefinition, rootValue any) map[string]any {
	data := make(map[string]any)
	groups := ex.collect(root, op.SelectionSet)
	if op.Operation == language.Mutation {
		for _, g := range groups {
			if !ex.executeField(root, rootValue, g, nil, data, boundary{}) {
				return nil
			}
			ex.drain()
			if ex.nullData {
				return nil
			}
		}
		return data
	}
	if ex.executeFields(root, rootValue, groups, nil, data, boundary{}) == nil {
		return nil
	}
	ex.drain()
	if ex.nullData {
		return nil
	}
	return data
}

// drain resolves queued async fields batch by batch until none are left.
func (ex *execution) drain() {
	for len(ex.queue) > 0 && !ex.nullData {
		live := make([]*pending, 0, len(ex.queue))
		for _, p := range ex.queue {
			if !ex.isPruned(p.path) {
				live = append(live, p)
			}
		}
		ex.queue = nil
		if len(live) == 0 {
			return
		}
		results := ex.resolveBatch(live)
		for i, p := range live {
			ex.settle(p, results[i])
		}
	}
}

func (ex *execution) resolveBatch(live []*pending) []AsyncResolveResult {
	fail := func(err error) []AsyncResolveResult {
		out := make([]AsyncResolveResult, len(live))
		for i := range out {
			out[i].Error = err
		}
		return out
	}
	if err := ex.ctx.Err(); err != nil {
		return fail(err)
	}
	tasks := make([]AsyncResolveTask, len(live))
	for i, p := range live {
		tasks[i] = p.task
	}
	results := ex.runtime.BatchResolveAsync(ex.ctx, tasks)
	if len(results) != len(tasks) {
		return fail(fmt.Errorf("runtime returned %d results for %d tasks", len(results), len(tasks)))
	}
	return results
}

// settle completes one async field and writes it into the response.
func (ex *execution) settle(p *pending, res AsyncResolveResult) {
	if ex.isPruned(p.path) {
		return
	}
	var value any
	if res.Error != nil {
		ex.fail(p.path, p.fields, res.Error.Error())
	} else {
		value = ex.complete(p.ref, p.fields, res.Value, p.path, p.at, p.bound)
	}
	if value == nil && p.ref.IsNonNull() {
		ex.nullify(p.bound)
		return
	}
	p.at.set(value)
}

// nullify replaces the value at b with null and stops work beneath it.
func (ex *execution) nullify(b boundary) {
	if !b.ok {
		ex.nullData = true
		return
	}
	b.at.set(nil)
	ex.prune(b.path)
}

func (ex *execution) prune(p Path) {
	if len(p) == 0 {
		ex.nullData = true
		return
	}
	ex.pruned[p.String()] = true
}

func (ex *execution) isPruned(p Path) bool {
	if ex.nullData {
		return true
	}
	if len(ex.pruned) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if ex.pruned[p[:i].String()] {
			return true
		}
	}
	return false
}

func (ex *execution) fail(path Path, fields []*language.Field, msg string) {
	e := GraphQLError{Message: msg, Path: path}
	if len(fields) > 0 && fields[0].Position != nil {
		e.Locations = []Location{{Line: fields[0].Position.Line, Column: fields[0].Position.Column}}
	}
	ex.errors = append(ex.errors, e)
}

// isNullish reports nil and typed nil pointers, maps, slices and the like.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
