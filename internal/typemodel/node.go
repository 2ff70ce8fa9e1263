// Package typemodel is the declarative, data-only description of an API's
// types. Values built here are immutable once constructed and are turned into an
// executable schema by the compiler package.
//
// Every node is a Go type implementing Node; the concrete type is the kind tag.
// Named nodes (objects, interfaces, unions, enums) carry their stable name, which
// is the identity used by the compiler for caching and cross-referencing.
//
// Fields are non-null by default. Wrap a node in Optional to make it nullable.
package typemodel

// Kind identifies the variant of a Node.
type Kind int

const (
	KindScalar Kind = iota + 1
	KindObject
	KindInterface
	KindUnion
	KindEnum
	KindList
	KindOptional
	KindRecord
	KindFieldWithArgs
	KindTransform
	KindScalarTransform
)

var kindNames = map[Kind]string{
	KindScalar:          "Scalar",
	KindObject:          "Object",
	KindInterface:       "Interface",
	KindUnion:           "Union",
	KindEnum:            "Enum",
	KindList:            "List",
	KindOptional:        "Optional",
	KindRecord:          "Record",
	KindFieldWithArgs:   "FieldWithArgs",
	KindTransform:       "Transform",
	KindScalarTransform: "ScalarTransform",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Node is a schema node of the type model.
type Node interface {
	Kind() Kind
	Metadata() Meta
}

// Meta holds the annotations every node may carry.
type Meta struct {
	Description string
	Default     any
}

func (m Meta) Metadata() Meta { return m }

// Field is a named entry of an object, interface or record.
type Field struct {
	Name string
	Type Node
	// Description documents the field itself. When empty, the description
	// of an unnamed Type is used.
	Description string
}

// Prop builds a Field.
func Prop(name string, node Node) Field { return Field{Name: name, Type: node} }

// Describe returns a copy of f carrying the given description.
func (f Field) Describe(text string) Field {
	f.Description = text
	return f
}

// Doc returns the description of the field: its own, or the one of its type
// when that type is not a named type.
func (f Field) Doc() string {
	if f.Description != "" {
		return f.Description
	}
	switch Unwrap(f.Type).(type) {
	case Named, *ScalarTransform:
		return ""
	}
	return f.Type.Metadata().Description
}

// ScalarKind is one of the protocol-native scalar kinds.
type ScalarKind string

const (
	ScalarString  ScalarKind = "String"
	ScalarInt     ScalarKind = "Int"
	ScalarFloat   ScalarKind = "Float"
	ScalarBoolean ScalarKind = "Boolean"
	ScalarID      ScalarKind = "ID"
)

// Scalar is a primitive leaf node.
type Scalar struct {
	Meta
	Scalar ScalarKind
}

func (*Scalar) Kind() Kind { return KindScalar }

func newScalar(kind ScalarKind, opts []Option) *Scalar {
	o := applyOptions(opts)
	return &Scalar{Meta: o.meta, Scalar: kind}
}

func String(opts ...Option) *Scalar  { return newScalar(ScalarString, opts) }
func Int(opts ...Option) *Scalar     { return newScalar(ScalarInt, opts) }
func Float(opts ...Option) *Scalar   { return newScalar(ScalarFloat, opts) }
func Boolean(opts ...Option) *Scalar { return newScalar(ScalarBoolean, opts) }

// ID is a string marked as an identifier; it compiles to the protocol ID scalar.
func ID(opts ...Option) *Scalar { return newScalar(ScalarID, opts) }

// ListType is an ordered collection of Items.
type ListType struct {
	Meta
	Items Node
}

func (*ListType) Kind() Kind { return KindList }

func List(items Node, opts ...Option) *ListType {
	o := applyOptions(opts)
	return &ListType{Meta: o.meta, Items: items}
}

// OptionalType marks its inner node as nullable.
type OptionalType struct {
	Of Node
}

func (*OptionalType) Kind() Kind { return KindOptional }

// Metadata forwards to the wrapped node so descriptions and defaults survive
// wrapping.
func (o *OptionalType) Metadata() Meta { return o.Of.Metadata() }

func Optional(of Node) *OptionalType { return &OptionalType{Of: of} }

// RecordType is a plain structural object. With an id it can be compiled as an
// input type; records also describe the root operation objects.
type RecordType struct {
	Meta
	ID     string
	Fields []Field
}

func (*RecordType) Kind() Kind { return KindRecord }

func Record(fields []Field, opts ...Option) *RecordType {
	o := applyOptions(opts)
	return &RecordType{Meta: o.meta, ID: o.id, Fields: cloneFields(fields)}
}

// FieldWithArgs pairs a field's result node with its argument map.
type FieldWithArgs struct {
	Result Node
	Args   []Field
}

func (*FieldWithArgs) Kind() Kind { return KindFieldWithArgs }

func (f *FieldWithArgs) Metadata() Meta { return f.Result.Metadata() }

func WithArgs(result Node, args ...Field) *FieldWithArgs {
	return &FieldWithArgs{Result: result, Args: cloneFields(args)}
}

// IsOptional reports whether n is nullable, looking through argument wrappers.
func IsOptional(n Node) bool {
	switch v := n.(type) {
	case *OptionalType:
		return true
	case *FieldWithArgs:
		return IsOptional(v.Result)
	}
	return false
}

// Unwrap strips Optional and FieldWithArgs wrappers.
func Unwrap(n Node) Node {
	for {
		switch v := n.(type) {
		case *OptionalType:
			n = v.Of
		case *FieldWithArgs:
			n = v.Result
		default:
			return n
		}
	}
}

// ArgsOf returns the argument map of n, or nil when n carries none.
func ArgsOf(n Node) []Field {
	switch v := n.(type) {
	case *FieldWithArgs:
		return v.Args
	case *OptionalType:
		return ArgsOf(v.Of)
	}
	return nil
}

func cloneFields(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}
