package registry

import (
	"context"

	"github.com/hanpama/typegraph/internal/executor"
	"github.com/hanpama/typegraph/internal/introspection"
	"github.com/hanpama/typegraph/internal/language"
	"github.com/hanpama/typegraph/internal/schema"
)

// Schema is the immutable result of compiling a registry. It is safe for
// concurrent use.
type Schema struct {
	schema  *schema.Schema
	loaded  *language.LoadedSchema
	types   []*schema.Type
	sdl     string
	runtime *runtime

	exec  *executor.Executor
	plain *executor.Executor
}

func newSchema(sch *schema.Schema, loaded *language.LoadedSchema, types []*schema.Type, sdl string, rt *runtime) *Schema {
	s := &Schema{
		schema:  sch,
		loaded:  loaded,
		types:   types,
		sdl:     sdl,
		runtime: rt,
		plain:   executor.NewExecutor(rt, sch),
	}
	if sch.GetQueryType() != nil {
		s.exec = executor.NewExecutor(introspection.Wrap(rt, sch))
	} else {
		s.exec = s.plain
	}
	return s
}

// Schema returns the executable schema.
func (s *Schema) Schema() *schema.Schema { return s.schema }

// NamedTypes returns every named type produced by the compiler, including
// types reachable only through interfaces.
func (s *Schema) NamedTypes() []*schema.Type {
	out := make([]*schema.Type, len(s.types))
	copy(out, s.types)
	return out
}

// Runtime returns the runtime dispatching fields to bound resolvers.
func (s *Schema) Runtime() executor.Runtime { return s.runtime }

// SDL returns the schema in GraphQL schema definition language.
func (s *Schema) SDL() string { return s.sdl }

// Loaded returns the validated schema document used for query validation.
func (s *Schema) Loaded() *language.LoadedSchema { return s.loaded }

// Request is a single GraphQL operation.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type ExecuteOption func(*executeOptions)

type executeOptions struct {
	noIntrospection bool
	root            any
}

// WithoutIntrospection executes against the schema without the __schema and
// __type fields.
func WithoutIntrospection() ExecuteOption {
	return func(o *executeOptions) { o.noIntrospection = true }
}

// WithRootValue sets the parent value handed to root field resolvers.
func WithRootValue(v any) ExecuteOption {
	return func(o *executeOptions) { o.root = v }
}

// Parse parses query and validates it against the schema.
func (s *Schema) Parse(query string) (*language.QueryDocument, language.ErrorList) {
	return language.LoadQuery(s.loaded, query)
}

// Execute parses and validates the request and executes it. Validation
// failures are reported as errors of a result without data.
func (s *Schema) Execute(ctx context.Context, req Request, opts ...ExecuteOption) *executor.ExecutionResult {
	doc, errs := s.Parse(req.Query)
	if len(errs) > 0 {
		return &executor.ExecutionResult{Errors: graphQLErrors(errs)}
	}
	return s.ExecuteDocument(ctx, doc, req.OperationName, req.Variables, opts...)
}

// ExecuteDocument executes a document returned by Parse.
func (s *Schema) ExecuteDocument(ctx context.Context, doc *language.QueryDocument, operationName string, variables map[string]any, opts ...ExecuteOption) *executor.ExecutionResult {
	var o executeOptions
	for _, opt := range opts {
		opt(&o)
	}
	exec := s.exec
	if o.noIntrospection {
		exec = s.plain
	}
	return exec.ExecuteRequest(ctx, doc, operationName, variables, o.root)
}

func graphQLErrors(errs language.ErrorList) []executor.GraphQLError {
	out := make([]executor.GraphQLError, len(errs))
	for i, e := range errs {
		out[i] = executor.GraphQLError{Message: e.Message, Extensions: e.Extensions}
		for _, loc := range e.Locations {
			out[i].Locations = append(out[i].Locations, executor.Location{Line: loc.Line, Column: loc.Column})
		}
		for _, p := range e.Path {
			out[i].Path = append(out[i].Path, p)
		}
	}
	return out
}
