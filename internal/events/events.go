// Package events defines the payloads published on the event bus. Each event
// is published with the context of the request or compilation it describes.
package events

import (
	"net/http"
	"time"
)

// CompileStart is published before a registry compiles its types.
type CompileStart struct {
	Types     int
	Resolvers int
}

// CompileFinish is published after a compilation attempt. Err is nil on
// success.
type CompileFinish struct {
	Types    int
	Err      error
	Duration time.Duration
}

// HTTPStart is published when the GraphQL handler receives a request.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published once the response has been written.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// GraphQLStart is published before an operation executes.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is published after an operation executed. Errors holds the
// errors of the response.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// ResolverFinish is published after a bound resolver returned for one
// parent value.
type ResolverFinish struct {
	ObjectType string
	Field      string
	Err        error
	Duration   time.Duration
}
