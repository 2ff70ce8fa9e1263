// Package language exposes the GraphQL parser and validator to the rest of
// the module under one import.
package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
)

type (
	Error     = gqlerror.Error
	ErrorList = gqlerror.List
	// LoadedSchema is a validated schema document that queries are checked
	// against.
	LoadedSchema = ast.Schema
)

// ParseQuery parses a query document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL. The prelude of built-in scalars,
// directives and introspection types is merged in.
func LoadSchema(name, sdl string) (*LoadedSchema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LoadQuery parses source and validates it against s. The returned list is
// nil when the document is valid.
func LoadQuery(s *LoadedSchema, source string) (*QueryDocument, ErrorList) {
	doc, errs := gqlparser.LoadQuery(s, source)
	if len(errs) > 0 {
		return nil, errs
	}
	return doc, nil
}
