package typemodel

import (
	"reflect"
	"slices"
)

// TagField is the reserved field name carrying the discriminator of a value.
const TagField = "_tag"

// Tagged is implemented by Go values that know which named type they belong to.
// The execution runtime consults it when resolving abstract types.
type Tagged interface {
	TypeTag() string
}

// composite holds the shared shape of objects and interfaces.
type composite struct {
	Meta
	Name          string
	Fields        []Field
	Extends       []*InterfaceType
	Discriminator string
	// declared holds the fields given at construction, before inheritance.
	declared []Field
}

func newComposite(name string, fields []Field, opts []Option) composite {
	o := applyOptions(opts)
	c := composite{
		Meta:          o.meta,
		Name:          name,
		Extends:       slices.Clone(o.extends),
		Discriminator: o.discriminator,
	}
	if c.Discriminator == "" {
		c.Discriminator = name
	}
	c.Define(fields)
	return c
}

// Define replaces the own fields of the type and merges them again below the
// fields of the extended interfaces. Models that refer to types before their
// fields are known create the types first and define them afterwards,
// supertypes before subtypes.
func (c *composite) Define(fields []Field) {
	c.declared = cloneFields(fields)
	var merged []Field
	for _, iface := range c.Extends {
		merged = mergeFields(merged, iface.Fields)
	}
	c.Fields = mergeFields(merged, fields)
}

// mergeFields appends add to base. A name already present is replaced in place.
func mergeFields(base, add []Field) []Field {
	out := slices.Clone(base)
	for _, f := range add {
		idx := slices.IndexFunc(out, func(e Field) bool { return e.Name == f.Name })
		if idx >= 0 {
			out[idx] = f
			continue
		}
		out = append(out, f)
	}
	return out
}

// Field returns the merged field with the given name.
func (c *composite) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Declared returns the fields given at construction, without inherited ones.
func (c *composite) Declared() []Field { return c.declared }

// TypeName returns the stable name of the type.
func (c *composite) TypeName() string { return c.Name }

// ObjectType is a named output structure.
type ObjectType struct{ composite }

func (*ObjectType) Kind() Kind { return KindObject }

// Object declares a named object type. Fields of extended interfaces are copied
// in first; own fields override inherited ones of the same name.
func Object(name string, fields []Field, opts ...Option) *ObjectType {
	return &ObjectType{newComposite(name, fields, opts)}
}

// InterfaceType is a named abstract structure that objects and other
// interfaces may extend.
type InterfaceType struct{ composite }

func (*InterfaceType) Kind() Kind { return KindInterface }

func Interface(name string, fields []Field, opts ...Option) *InterfaceType {
	return &InterfaceType{newComposite(name, fields, opts)}
}

// Named is implemented by nodes that carry a stable type name.
type Named interface {
	Node
	TypeName() string
}

// Supertypes returns the transitive closure of the interfaces n extends, in
// depth-first declaration order without duplicates.
func Supertypes(n Named) []*InterfaceType {
	var direct []*InterfaceType
	switch v := n.(type) {
	case *ObjectType:
		direct = v.Extends
	case *InterfaceType:
		direct = v.Extends
	}
	var out []*InterfaceType
	seen := map[*InterfaceType]bool{}
	var walk func([]*InterfaceType)
	walk = func(list []*InterfaceType) {
		for _, iface := range list {
			if seen[iface] {
				continue
			}
			seen[iface] = true
			out = append(out, iface)
			walk(iface.Extends)
		}
	}
	walk(direct)
	return out
}

// UnionType is a named choice between object or interface members.
type UnionType struct {
	Meta
	Name    string
	Members []Named
}

func (*UnionType) Kind() Kind         { return KindUnion }
func (u *UnionType) TypeName() string { return u.Name }

func Union(name string, members ...Named) *UnionType {
	return &UnionType{Name: name, Members: slices.Clone(members)}
}

// Describe returns a copy of the union carrying the given description.
func (u *UnionType) Describe(text string) *UnionType {
	c := *u
	c.Description = text
	return &c
}

// EnumType is a named set of string literals.
type EnumType struct {
	Meta
	Name   string
	Values []string
}

func (*EnumType) Kind() Kind         { return KindEnum }
func (e *EnumType) TypeName() string { return e.Name }

func Enum(name string, values ...string) *EnumType {
	return &EnumType{Name: name, Values: slices.Clone(values)}
}

// Describe returns a copy of the enum carrying the given description.
func (e *EnumType) Describe(text string) *EnumType {
	c := *e
	c.Description = text
	return &c
}

// Has reports whether v is one of the enum's literals.
func (e *EnumType) Has(v string) bool { return slices.Contains(e.Values, v) }

// Literal returns the literal matching v, which may be any value whose
// underlying kind is string or a fmt.Stringer.
func (e *EnumType) Literal(v any) (string, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case interface{ String() string }:
		s = x.String()
	default:
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.String {
			return "", false
		}
		s = rv.String()
	}
	if !e.Has(s) {
		return "", false
	}
	return s, true
}
