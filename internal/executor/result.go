package executor

import (
	"fmt"
	"strings"
)

// Path locates a value in the response. Elements are field response names
// (string) and list indices (int).
type Path []PathElement

type PathElement any

// String renders the path as in "products[2].title".
func (p Path) String() string {
	var b strings.Builder
	for i, el := range p {
		if idx, ok := el.(int); ok {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		fmt.Fprint(&b, el)
	}
	return b.String()
}

func (p Path) child(el PathElement) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = el
	return out
}

// Location is a 1-based position in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is an error of a response, located by the fields it was
// raised for.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult is the response of one operation. Data is nil when the
// operation could not run, or when a non-null root field failed.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
