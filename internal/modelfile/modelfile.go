// Package modelfile loads type models declared in YAML.
//
// A model file lists named types and the fields of the root operations:
//
//	types:
//	  - name: Likeable
//	    kind: interface
//	    fields:
//	      - {name: likes, type: Int}
//	  - name: User
//	    kind: object
//	    extends: [Likeable]
//	    fields:
//	      - {name: id, type: ID}
//	      - {name: email, type: String?}
//	query:
//	  - name: getUser
//	    type: User?
//	    args:
//	      - {name: id, type: ID}
//
// Type expressions are non-null unless suffixed with "?"; lists are written
// in brackets, e.g. "[User?]?".
package modelfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/scalars"
	"github.com/hanpama/typegraph/internal/typemodel"
	"gopkg.in/yaml.v3"
)

// ErrInvalidModel is matched by every error reported while loading a model.
var ErrInvalidModel = errors.New("modelfile: invalid model")

// File is the YAML document shape.
type File struct {
	Types        []TypeDecl  `yaml:"types"`
	Query        []FieldDecl `yaml:"query,omitempty"`
	Mutation     []FieldDecl `yaml:"mutation,omitempty"`
	Subscription []FieldDecl `yaml:"subscription,omitempty"`
}

type TypeDecl struct {
	Name          string      `yaml:"name"`
	Kind          string      `yaml:"kind"`
	Description   string      `yaml:"description,omitempty"`
	Extends       []string    `yaml:"extends,omitempty"`
	Discriminator string      `yaml:"discriminator,omitempty"`
	Fields        []FieldDecl `yaml:"fields,omitempty"`
	Members       []string    `yaml:"members,omitempty"`
	Values        []string    `yaml:"values,omitempty"`
}

type FieldDecl struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	Description string      `yaml:"description,omitempty"`
	Default     any         `yaml:"default,omitempty"`
	Args        []FieldDecl `yaml:"args,omitempty"`
}

// Model is a loaded file: its named types in declaration order and the
// fields of each root operation.
type Model struct {
	Types        []typemodel.Named
	Query        []typemodel.Field
	Mutation     []typemodel.Field
	Subscription []typemodel.Field
}

// Registry returns a registry holding the model's types and roots. Resolvers
// are bound by the caller.
func (m *Model) Registry() registry.Registry {
	r := registry.Empty()
	for _, t := range m.Types {
		r = r.AddType(t)
	}
	if len(m.Query) > 0 {
		r = r.SetQuery(m.Query...)
	}
	if len(m.Mutation) > 0 {
		r = r.SetMutation(m.Mutation...)
	}
	if len(m.Subscription) > 0 {
		r = r.SetSubscription(m.Subscription...)
	}
	return r
}

type Option func(*loader)

// WithScalar makes a scalar transform available to type expressions under
// its id. The transforms of package scalars are always available.
func WithScalar(t *typemodel.ScalarTransform) Option {
	return func(l *loader) { l.scalars[t.ID] = t }
}

// ReadFile loads a model from a YAML file.
func ReadFile(path string, opts ...Option) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, opts...)
}

// Parse loads a model from YAML.
func Parse(data []byte, opts ...Option) (*Model, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return Build(f, opts...)
}

// Build turns a decoded file into type model nodes.
func Build(f File, opts ...Option) (*Model, error) {
	l := &loader{
		scalars: scalars.All(),
		named:   make(map[string]typemodel.Node),
		decls:   make(map[string]TypeDecl),
		copies:  make(map[*typemodel.RecordType]*typemodel.RecordType),
	}
	for _, opt := range opts {
		opt(l)
	}
	m, err := l.build(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return m, nil
}

type loader struct {
	scalars map[string]*typemodel.ScalarTransform
	named   map[string]typemodel.Node
	decls   map[string]TypeDecl
	// copies of input types carrying defaults, filled once every type is defined
	copies map[*typemodel.RecordType]*typemodel.RecordType
}

func (l *loader) build(f File) (*Model, error) {
	m := &Model{}
	// Declare every type first so fields may refer to any of them.
	for _, d := range f.Types {
		if d.Name == "" {
			return nil, errors.New("type without name")
		}
		if _, dup := l.decls[d.Name]; dup {
			return nil, fmt.Errorf("type %s declared twice", d.Name)
		}
		if _, ok := l.scalars[d.Name]; ok || isBuiltin(d.Name) {
			return nil, fmt.Errorf("type %s shadows a scalar", d.Name)
		}
		node, err := declare(d)
		if err != nil {
			return nil, err
		}
		l.decls[d.Name] = d
		l.named[d.Name] = node
	}
	for _, d := range f.Types {
		if err := l.link(d); err != nil {
			return nil, err
		}
	}
	order, err := l.defineOrder(f.Types)
	if err != nil {
		return nil, err
	}
	for _, name := range order {
		if err := l.define(l.decls[name]); err != nil {
			return nil, err
		}
	}
	for _, d := range f.Types {
		m.Types = append(m.Types, l.named[d.Name].(typemodel.Named))
	}

	roots := []struct {
		decls []FieldDecl
		out   *[]typemodel.Field
	}{{f.Query, &m.Query}, {f.Mutation, &m.Mutation}, {f.Subscription, &m.Subscription}}
	for _, root := range roots {
		fields, err := l.fields(root.decls)
		if err != nil {
			return nil, err
		}
		*root.out = fields
	}
	for c, orig := range l.copies {
		c.Fields = orig.Fields
	}
	return m, nil
}

func declare(d TypeDecl) (typemodel.Node, error) {
	opts := []typemodel.Option{typemodel.Describe(d.Description)}
	switch d.Kind {
	case "object":
		if d.Discriminator != "" {
			opts = append(opts, typemodel.Discriminator(d.Discriminator))
		}
		return typemodel.Object(d.Name, nil, opts...), nil
	case "interface":
		return typemodel.Interface(d.Name, nil, opts...), nil
	case "input":
		return typemodel.Record(nil, append(opts, typemodel.WithID(d.Name))...), nil
	case "union":
		return typemodel.Union(d.Name).Describe(d.Description), nil
	case "enum":
		if len(d.Values) == 0 {
			return nil, fmt.Errorf("enum %s has no values", d.Name)
		}
		return typemodel.Enum(d.Name, d.Values...).Describe(d.Description), nil
	}
	return nil, fmt.Errorf("type %s has unknown kind %q", d.Name, d.Kind)
}

// link resolves supertypes and union members.
func (l *loader) link(d TypeDecl) error {
	switch node := l.named[d.Name].(type) {
	case *typemodel.ObjectType:
		ifaces, err := l.interfaces(d)
		node.Extends = ifaces
		return err
	case *typemodel.InterfaceType:
		ifaces, err := l.interfaces(d)
		node.Extends = ifaces
		return err
	case *typemodel.UnionType:
		if len(d.Members) == 0 {
			return fmt.Errorf("union %s has no members", d.Name)
		}
		for _, name := range d.Members {
			switch member := l.named[name].(type) {
			case *typemodel.ObjectType:
				node.Members = append(node.Members, member)
			case *typemodel.InterfaceType:
				node.Members = append(node.Members, member)
			default:
				return fmt.Errorf("union %s: member %s is not an object or interface", d.Name, name)
			}
		}
	}
	return nil
}

func (l *loader) interfaces(d TypeDecl) ([]*typemodel.InterfaceType, error) {
	var out []*typemodel.InterfaceType
	for _, name := range d.Extends {
		iface, ok := l.named[name].(*typemodel.InterfaceType)
		if !ok {
			return nil, fmt.Errorf("type %s: %s is not an interface", d.Name, name)
		}
		out = append(out, iface)
	}
	return out, nil
}

// defineOrder sorts composite types so every interface comes before the
// types extending it.
func (l *loader) defineOrder(decls []TypeDecl) ([]string, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var order []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("interface %s extends itself", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, sup := range l.decls[name].Extends {
			if err := visit(sup); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}
	for _, d := range decls {
		if err := visit(d.Name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (l *loader) define(d TypeDecl) error {
	fields, err := l.fields(d.Fields)
	if err != nil {
		return fmt.Errorf("type %s: %w", d.Name, err)
	}
	switch node := l.named[d.Name].(type) {
	case *typemodel.ObjectType:
		node.Define(fields)
	case *typemodel.InterfaceType:
		node.Define(fields)
	case *typemodel.RecordType:
		node.Fields = fields
	}
	return nil
}

func (l *loader) fields(decls []FieldDecl) ([]typemodel.Field, error) {
	out := make([]typemodel.Field, 0, len(decls))
	for _, d := range decls {
		f, err := l.field(d)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (l *loader) field(d FieldDecl) (typemodel.Field, error) {
	if d.Name == "" {
		return typemodel.Field{}, errors.New("field without name")
	}
	node, err := l.typeExpr(d.Type, d.Default)
	if err != nil {
		return typemodel.Field{}, fmt.Errorf("field %s: %w", d.Name, err)
	}
	if len(d.Args) > 0 {
		args, err := l.fields(d.Args)
		if err != nil {
			return typemodel.Field{}, fmt.Errorf("field %s: %w", d.Name, err)
		}
		node = typemodel.WithArgs(node, args...)
	}
	return typemodel.Prop(d.Name, node).Describe(d.Description), nil
}

// typeExpr parses expressions such as "String", "User?" or "[Int?]". A
// default value applies to the outermost node. An input type, enum or scalar
// with a default is a copy sharing the id, so it still compiles to one type.
func (l *loader) typeExpr(expr string, def any) (typemodel.Node, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("missing type")
	}
	var opts []typemodel.Option
	if def != nil {
		opts = append(opts, typemodel.Default(def))
	}
	if rest, ok := strings.CutSuffix(expr, "?"); ok {
		inner, err := l.typeExpr(rest, def)
		if err != nil {
			return nil, err
		}
		return typemodel.Optional(inner), nil
	}
	if strings.HasPrefix(expr, "[") {
		rest, ok := strings.CutSuffix(expr[1:], "]")
		if !ok {
			return nil, fmt.Errorf("unbalanced list type %q", expr)
		}
		items, err := l.typeExpr(rest, nil)
		if err != nil {
			return nil, err
		}
		return typemodel.List(items, opts...), nil
	}
	switch expr {
	case "String":
		return typemodel.String(opts...), nil
	case "Int":
		return typemodel.Int(opts...), nil
	case "Float":
		return typemodel.Float(opts...), nil
	case "Boolean":
		return typemodel.Boolean(opts...), nil
	case "ID":
		return typemodel.ID(opts...), nil
	}
	if t, ok := l.scalars[expr]; ok {
		if def != nil {
			c := *t
			c.Default = def
			return &c, nil
		}
		return t, nil
	}
	if n, ok := l.named[expr]; ok {
		if def == nil {
			return n, nil
		}
		switch v := n.(type) {
		case *typemodel.RecordType:
			c := *v
			c.Default = def
			l.copies[&c] = v
			return &c, nil
		case *typemodel.EnumType:
			c := *v
			c.Default = def
			return &c, nil
		}
		return nil, fmt.Errorf("type %s cannot have a default", expr)
	}
	return nil, fmt.Errorf("unknown type %q", expr)
}

func isBuiltin(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}
