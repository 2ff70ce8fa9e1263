// Package compiler turns type model nodes into executable schema types.
//
// A Compiler keeps one reference store per category of named type (scalars
// and enums, input objects, output objects and unions, interfaces) so that a
// node reachable along several paths compiles to a single shared type. Named
// types are created as empty shells first; their fields are filled when the
// outermost compile call returns, which lets recursive references resolve
// through the stores.
//
// A Compiler is single-use state for one schema. The first failure poisons it:
// every later call returns the same error.
package compiler

import (
	"github.com/hanpama/typegraph/internal/refstore"
	"github.com/hanpama/typegraph/internal/schema"
	"github.com/hanpama/typegraph/internal/typemodel"
)

type Compiler struct {
	scalars    *refstore.Store[*schema.Type]
	inputs     *refstore.Store[*schema.Type]
	outputs    *refstore.Store[*schema.Type]
	interfaces *refstore.Store[*schema.Type]

	// unionInterfaces records interface members of unions; they expand to
	// their implementations when named types are collected.
	unionInterfaces map[*schema.Type][]string

	trail   []string
	pending []pendingFill
	err     error
}

type pendingFill struct {
	label string
	fill  func()
}

func New() *Compiler {
	return &Compiler{
		scalars:         refstore.New[*schema.Type](),
		inputs:          refstore.New[*schema.Type](),
		outputs:         refstore.New[*schema.Type](),
		interfaces:      refstore.New[*schema.Type](),
		unionInterfaces: make(map[*schema.Type][]string),
	}
}

// Err returns the failure that poisoned the compiler, if any.
func (c *Compiler) Err() error { return c.err }

// CompileScalar compiles a scalar transform into a named custom scalar whose
// serialize and parse hooks are the transform's Encode and Decode.
func (c *Compiler) CompileScalar(t *typemodel.ScalarTransform) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.scalar(t) })
	return out, err
}

// ResolveAsScalar compiles n when it is a leaf: a primitive, an enum or a
// scalar transform. It returns a nil type without error for any other node.
// Optional and argument wrappers are looked through.
func (c *Compiler) ResolveAsScalar(n typemodel.Node) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.leaf(typemodel.Unwrap(n)) })
	return out, err
}

// CompileEnum compiles an enum into a named enum type.
func (c *Compiler) CompileEnum(e *typemodel.EnumType) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.enum(e) })
	return out, err
}

// CompileInputType compiles a record or object into a named input object.
// Records are named by their id, objects by their type name.
func (c *Compiler) CompileInputType(n typemodel.Node) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.inputType(n) })
	return out, err
}

// CompileFieldArguments compiles the argument map of a field node. Nodes
// without arguments yield an empty list.
func (c *Compiler) CompileFieldArguments(n typemodel.Node) ([]*schema.InputValue, error) {
	var out []*schema.InputValue
	err := c.run(func() { out = c.arguments(n) })
	return out, err
}

// ResolveAsInputType compiles n into an input type reference. The result is
// wrapped in non-null unless n is optional.
func (c *Compiler) ResolveAsInputType(n typemodel.Node) (*schema.TypeRef, error) {
	var out *schema.TypeRef
	err := c.run(func() { out = c.inputRef(n) })
	return out, err
}

// CompileInterface compiles an interface together with every interface it
// extends.
func (c *Compiler) CompileInterface(i *typemodel.InterfaceType) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.interfaceType(i) })
	return out, err
}

// CompileOutputType compiles an object into a named object type implementing
// the transitive closure of its interfaces.
func (c *Compiler) CompileOutputType(o *typemodel.ObjectType) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.objectType(o) })
	return out, err
}

// CompileUnion compiles a union and its members.
func (c *Compiler) CompileUnion(u *typemodel.UnionType) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() { out = c.unionType(u) })
	return out, err
}

// CompileNamed compiles any named node into the store of its category.
func (c *Compiler) CompileNamed(n typemodel.Named) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() {
		switch v := n.(type) {
		case *typemodel.ObjectType:
			out = c.objectType(v)
		case *typemodel.InterfaceType:
			out = c.interfaceType(v)
		case *typemodel.UnionType:
			out = c.unionType(v)
		case *typemodel.EnumType:
			out = c.enum(v)
		default:
			c.fail(ErrUnsupportedSchemaShape, n)
		}
	})
	return out, err
}

// ResolveAsOutputType compiles n into an output type reference. The result
// is wrapped in non-null unless n is optional.
func (c *Compiler) ResolveAsOutputType(n typemodel.Node) (*schema.TypeRef, error) {
	var out *schema.TypeRef
	err := c.run(func() { out = c.outputRef(n) })
	return out, err
}

// CompileOutputField compiles a single field with its arguments.
func (c *Compiler) CompileOutputField(f typemodel.Field) (*schema.Field, error) {
	var out *schema.Field
	err := c.run(func() { out = c.outputField(f) })
	return out, err
}

// CompileRoot compiles a root operation object with the given type name. The
// root joins the output store, so a registered type of the same name is a
// conflict.
func (c *Compiler) CompileRoot(name string, root *typemodel.RecordType) (*schema.Type, error) {
	var out *schema.Type
	err := c.run(func() {
		c.within("compiling root type "+name, func() {
			if existing, ok := c.outputs.Lookup(name, nil); ok {
				c.fail(ErrNameConflict, map[string]any{"name": existing.Name, "kinds": []string{"root", string(existing.Kind)}})
				return
			}
			t := schema.NewType(name, schema.TypeKindObject, root.Description)
			c.outputs.Put(name, root, t)
			for _, f := range root.Fields {
				if field := c.outputField(f); field != nil {
					t.AddField(field)
				}
			}
			out = t
		})
	})
	return out, err
}

// CollectNamedTypes returns every named type compiled so far: scalars and
// enums, input objects, output objects and unions, then interfaces. It also
// records each object as a possible type of the interfaces it implements and
// fails when two kinds of types share a name.
func (c *Compiler) CollectNamedTypes() ([]*schema.Type, error) {
	if c.err != nil {
		return nil, c.err
	}
	var all []*schema.Type
	all = append(all, c.scalars.All()...)
	all = append(all, c.inputs.All()...)
	all = append(all, c.outputs.All()...)
	all = append(all, c.interfaces.All()...)

	byName := make(map[string]*schema.Type, len(all))
	for _, t := range all {
		if prev, ok := byName[t.Name]; ok && prev != t {
			c.fail(ErrNameConflict, map[string]any{"name": t.Name, "kinds": []string{string(prev.Kind), string(t.Kind)}})
			return nil, c.err
		}
		byName[t.Name] = t
	}

	for _, t := range all {
		if t.Kind != schema.TypeKindObject {
			continue
		}
		for _, name := range t.Interfaces {
			if iface := byName[name]; iface != nil {
				iface.AddPossibleType(t.Name)
			}
		}
	}
	for union, ifaces := range c.unionInterfaces {
		for _, name := range ifaces {
			if iface := byName[name]; iface != nil {
				for _, p := range iface.PossibleTypes {
					union.AddPossibleType(p)
				}
			}
		}
	}
	return all, nil
}

// run executes fn as an outermost operation and reports the compiler error.
func (c *Compiler) run(fn func()) error {
	if c.err != nil {
		return c.err
	}
	fn()
	c.drain()
	return c.err
}

// within runs fn under a context label used in error trails.
func (c *Compiler) within(label string, fn func()) {
	c.trail = append(c.trail, label)
	defer func() { c.trail = c.trail[:len(c.trail)-1] }()
	fn()
}

// later queues the field fill of a named type shell.
func (c *Compiler) later(label string, fill func()) {
	c.pending = append(c.pending, pendingFill{label: label, fill: fill})
}

func (c *Compiler) drain() {
	for len(c.pending) > 0 && c.err == nil {
		p := c.pending[0]
		c.pending = c.pending[1:]
		c.within(p.label, p.fill)
	}
	c.pending = nil
}

func (c *Compiler) fail(kind error, subject any) {
	if c.err != nil {
		return
	}
	if n, ok := subject.(typemodel.Node); ok {
		subject = typemodel.Dump(n)
	}
	c.err = newError(kind, c.trail, subject)
}

func (c *Compiler) failed() bool { return c.err != nil }
