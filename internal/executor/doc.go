// Package executor runs validated GraphQL operations against a schema.
//
// The executor owns the parts of execution that are the same for every
// schema: operation selection, variable and argument coercion, field
// collection with @skip, @include and fragments, and value completion with
// null propagation. Producing values is delegated to a Runtime.
//
// Fields marked async are not resolved where they are found. They are queued
// per depth and resolved together in one BatchResolveAsync call, which lets a
// runtime group same-field lookups across sibling objects. A depth finishes
// before the next one starts, so results of one batch may enqueue the next.
//
// Root fields of a mutation run one after another: each root field and its
// whole subtree completes before the next root field starts.
//
// A null in a non-null position nulls the nearest nullable ancestor. If there
// is none, the response data is null. Queued fields inside a nulled subtree
// are never resolved.
package executor
