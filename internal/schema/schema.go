// Package schema is the executable form of a GraphQL schema: named types
// with their fields, arguments and wrapping references.
package schema

// Schema holds the named types and directives of a schema. Root operation
// types are referenced by name; an empty name means the operation is not
// supported.
type Schema struct {
	Description      string
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
}

func (s *Schema) GetQueryType() *Type        { return s.Types[s.QueryType] }
func (s *Schema) GetMutationType() *Type     { return s.Types[s.MutationType] }
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// Type is a named type. Which members are set depends on Kind.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string

	// objects and interfaces
	Fields     []*Field
	Interfaces []string
	// interfaces and unions
	PossibleTypes []string
	// enums
	EnumValues []*EnumValue
	// input objects
	InputFields []*InputValue
	OneOf       bool
	// scalars
	SpecifiedByURL *string

	// Serialize and ParseValue convert custom scalar values between their
	// Go and wire forms. Nil passes values through unchanged.
	Serialize  ScalarFunc `json:"-"`
	ParseValue ScalarFunc `json:"-"`
}

// ScalarFunc converts a single scalar value.
type ScalarFunc func(any) (any, error)

// Field returns the field called name, or nil.
func (t *Type) Field(name string) *Field { return find(t.Fields, name, func(f *Field) string { return f.Name }) }

// InputField returns the input field called name, or nil.
func (t *Type) InputField(name string) *InputValue {
	return find(t.InputFields, name, func(v *InputValue) string { return v.Name })
}

// HasPossibleType reports whether name is a union member or an implementation
// of the interface.
func (t *Type) HasPossibleType(name string) bool {
	for _, p := range t.PossibleTypes {
		if p == name {
			return true
		}
	}
	return false
}

func (t *Type) IsLeaf() bool     { return t.Kind == TypeKindScalar || t.Kind == TypeKindEnum }
func (t *Type) IsAbstract() bool { return t.Kind == TypeKindInterface || t.Kind == TypeKindUnion }

func find[T any](items []T, name string, nameOf func(T) string) T {
	for _, it := range items {
		if nameOf(it) == name {
			return it
		}
	}
	var zero T
	return zero
}

// Field is a field of an object or interface. Async fields are resolved in
// batches; the others are resolved as soon as their parent value is known.
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Async             bool
	IsDeprecated      bool
	DeprecationReason string
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// TypeRef is a named type, or a LIST or NON_NULL wrapper around another
// reference.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef
	Named  string
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList reports whether t is a list, ignoring an outer NON_NULL.
func (t *TypeRef) IsList() bool {
	if t.IsNonNull() {
		t = t.OfType
	}
	return t != nil && t.Kind == TypeRefKindList
}

// BaseName returns the name of the innermost named type.
func (t *TypeRef) BaseName() string {
	for t != nil && t.Kind != TypeRefKindNamed {
		t = t.OfType
	}
	if t == nil {
		return ""
	}
	return t.Named
}

// String renders the reference in SDL notation, e.g. "[String!]!".
func (t *TypeRef) String() string { return renderTypeRef(t) }
