package compiler

import (
	"github.com/hanpama/typegraph/internal/schema"
	"github.com/hanpama/typegraph/internal/typemodel"
)

// leaf compiles primitives, enums and scalar transforms. Other nodes yield nil.
func (c *Compiler) leaf(n typemodel.Node) *schema.Type {
	switch v := n.(type) {
	case *typemodel.Scalar:
		if t := schema.BuiltinScalar(string(v.Scalar)); t != nil {
			return t
		}
		c.fail(ErrUnsupportedSchemaShape, v)
	case *typemodel.ScalarTransform:
		return c.scalar(v)
	case *typemodel.Transform:
		c.fail(ErrTransformMisuse, v)
	case *typemodel.EnumType:
		return c.enum(v)
	}
	return nil
}

func (c *Compiler) scalar(t *typemodel.ScalarTransform) *schema.Type {
	if t.ID == "" {
		c.fail(ErrMissingIdentifier, t)
		return nil
	}
	var out *schema.Type
	c.within("compiling scalar "+t.ID, func() {
		out = c.scalars.Get(t.ID, t, func() *schema.Type {
			return schema.NewType(t.ID, schema.TypeKindScalar, t.Description).
				SetScalarFuncs(t.Encode, t.Decode)
		})
	})
	return out
}

func (c *Compiler) enum(e *typemodel.EnumType) *schema.Type {
	if e.Name == "" {
		c.fail(ErrMissingIdentifier, e)
		return nil
	}
	var out *schema.Type
	c.within("compiling enum "+e.Name, func() {
		out = c.scalars.Get(e.Name, e, func() *schema.Type {
			t := schema.NewType(e.Name, schema.TypeKindEnum, e.Description)
			for _, v := range e.Values {
				t.AddEnumValue(schema.NewEnumValue(v, ""))
			}
			return t
		})
	})
	return out
}

func (c *Compiler) inputType(n typemodel.Node) *schema.Type {
	var (
		id     string
		desc   string
		fields []typemodel.Field
	)
	switch v := n.(type) {
	case *typemodel.RecordType:
		id, desc, fields = v.ID, v.Description, v.Fields
	case *typemodel.ObjectType:
		id, desc, fields = v.Name, v.Description, v.Fields
	default:
		c.fail(ErrUnsupportedSchemaShape, n)
		return nil
	}
	if id == "" {
		c.fail(ErrMissingIdentifier, n)
		return nil
	}
	label := "compiling input type " + id
	var out *schema.Type
	c.within(label, func() {
		out = c.inputs.Get(id, n, func() *schema.Type {
			t := schema.NewType(id, schema.TypeKindInputObject, desc)
			c.later(label, func() {
				for _, f := range fields {
					if v := c.inputValue(f); v != nil {
						t.AddInputField(v)
					}
				}
			})
			return t
		})
	})
	return out
}

func (c *Compiler) inputValue(f typemodel.Field) *schema.InputValue {
	if f.Name == typemodel.TagField {
		c.fail(ErrReservedField, f.Type)
		return nil
	}
	ref := c.inputRef(f.Type)
	if c.failed() {
		return nil
	}
	return schema.NewInputValue(f.Name, f.Doc(), ref).SetDefault(f.Type.Metadata().Default)
}

func (c *Compiler) arguments(n typemodel.Node) []*schema.InputValue {
	args := typemodel.ArgsOf(n)
	out := make([]*schema.InputValue, 0, len(args))
	for _, a := range args {
		v := c.inputValue(a)
		if c.failed() {
			return nil
		}
		out = append(out, v)
	}
	return out
}

func (c *Compiler) inputRef(n typemodel.Node) *schema.TypeRef {
	if c.failed() {
		return nil
	}
	inner := typemodel.Unwrap(n)
	var ref *schema.TypeRef
	if t := c.leaf(inner); t != nil {
		ref = schema.NamedType(t.Name)
	} else if c.failed() {
		return nil
	} else {
		switch v := inner.(type) {
		case *typemodel.RecordType, *typemodel.ObjectType:
			if t := c.inputType(v); t != nil {
				ref = schema.NamedType(t.Name)
			}
		case *typemodel.ListType:
			if item := c.inputRef(v.Items); item != nil {
				ref = schema.ListType(item)
			}
		default:
			c.fail(ErrUnsupportedSchemaShape, n)
		}
	}
	return wrapNullability(n, ref)
}

func (c *Compiler) outputRef(n typemodel.Node) *schema.TypeRef {
	if c.failed() {
		return nil
	}
	inner := typemodel.Unwrap(n)
	var ref *schema.TypeRef
	if t := c.leaf(inner); t != nil {
		ref = schema.NamedType(t.Name)
	} else if c.failed() {
		return nil
	} else {
		var named *schema.Type
		switch v := inner.(type) {
		case *typemodel.InterfaceType:
			named = c.interfaceType(v)
		case *typemodel.ObjectType:
			named = c.objectType(v)
		case *typemodel.UnionType:
			named = c.unionType(v)
		case *typemodel.ListType:
			if item := c.outputRef(v.Items); item != nil {
				ref = schema.ListType(item)
			}
		default:
			c.fail(ErrUnsupportedSchemaShape, n)
		}
		if named != nil {
			ref = schema.NamedType(named.Name)
		}
	}
	return wrapNullability(n, ref)
}

// wrapNullability applies the non-null by default policy.
func wrapNullability(n typemodel.Node, ref *schema.TypeRef) *schema.TypeRef {
	if ref == nil || typemodel.IsOptional(n) {
		return ref
	}
	return schema.NonNullType(ref)
}

func (c *Compiler) outputField(f typemodel.Field) *schema.Field {
	if f.Name == typemodel.TagField {
		c.fail(ErrReservedField, f.Type)
		return nil
	}
	var out *schema.Field
	c.within("compiling field "+f.Name, func() {
		ref := c.outputRef(f.Type)
		args := c.arguments(f.Type)
		if c.failed() {
			return
		}
		out = schema.NewField(f.Name, f.Doc(), ref)
		for _, a := range args {
			out.AddArgument(a)
		}
	})
	return out
}

func (c *Compiler) fillFields(t *schema.Type, fields []typemodel.Field) {
	for _, f := range fields {
		field := c.outputField(f)
		if c.failed() {
			return
		}
		t.AddField(field)
	}
}

func (c *Compiler) interfaceType(i *typemodel.InterfaceType) *schema.Type {
	if i.Name == "" {
		c.fail(ErrMissingIdentifier, i)
		return nil
	}
	label := "compiling interface type " + i.Name
	var out *schema.Type
	c.within(label, func() {
		out = c.interfaces.Get(i.Name, i, func() *schema.Type {
			t := schema.NewType(i.Name, schema.TypeKindInterface, i.Description)
			c.implement(t, i)
			c.later(label, func() { c.fillFields(t, i.Fields) })
			return t
		})
	})
	return out
}

func (c *Compiler) objectType(o *typemodel.ObjectType) *schema.Type {
	if o.Name == "" {
		c.fail(ErrMissingIdentifier, o)
		return nil
	}
	label := "compiling output object type " + o.Name
	var out *schema.Type
	c.within(label, func() {
		out = c.outputs.Get(o.Name, o, func() *schema.Type {
			t := schema.NewType(o.Name, schema.TypeKindObject, o.Description)
			c.implement(t, o)
			c.later(label, func() { c.fillFields(t, o.Fields) })
			return t
		})
	})
	return out
}

// implement compiles the supertypes of n and lists them on t.
func (c *Compiler) implement(t *schema.Type, n typemodel.Named) {
	for _, sup := range typemodel.Supertypes(n) {
		st := c.interfaceType(sup)
		if st == nil {
			return
		}
		t.AddInterface(st.Name)
	}
}

func (c *Compiler) unionType(u *typemodel.UnionType) *schema.Type {
	if u.Name == "" {
		c.fail(ErrMissingIdentifier, u)
		return nil
	}
	var out *schema.Type
	c.within("compiling union "+u.Name, func() {
		out = c.outputs.Get(u.Name, u, func() *schema.Type {
			t := schema.NewType(u.Name, schema.TypeKindUnion, u.Description)
			for _, m := range u.Members {
				switch v := m.(type) {
				case *typemodel.ObjectType:
					if mt := c.objectType(v); mt != nil {
						t.AddPossibleType(mt.Name)
					}
				case *typemodel.InterfaceType:
					if it := c.interfaceType(v); it != nil {
						c.unionInterfaces[t] = append(c.unionInterfaces[t], it.Name)
					}
				default:
					c.fail(ErrUnsupportedSchemaShape, m)
				}
			}
			return t
		})
	})
	return out
}
