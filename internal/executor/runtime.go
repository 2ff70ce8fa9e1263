package executor

import "context"

// Runtime produces the values the executor completes.
//
// Execution is breadth-first. Sync fields resolve through ResolveSync as soon
// as they are reached. Async fields are queued, and every queued field of one
// depth is handed to a single BatchResolveAsync call before the next depth
// starts. Fields under a subtree already nulled by a non-null violation are
// dropped from the queue.
//
// Errors returned by a Runtime become GraphQL errors at the field's path.
// Implementations must be safe for concurrent use and must not mutate sources
// or arguments.
type Runtime interface {
	// ResolveSync resolves a field that is not async. (nil, nil) is null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves a batch of async fields. It returns exactly
	// one result per task, in task order; a failed task does not affect the
	// others.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of a value of an interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue converts a scalar or enum value to its response form.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// AsyncResolveTask is one async field awaiting resolution.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	// Source is the parent value, or the root value for root fields.
	Source any
	// Args holds coerced argument values, defaults applied.
	Args map[string]any
}

type AsyncResolveResult struct {
	Value any
	Error error
}
