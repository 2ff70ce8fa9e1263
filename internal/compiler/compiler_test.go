package compiler

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/typegraph/internal/schema"
	tm "github.com/hanpama/typegraph/internal/typemodel"
	"github.com/stretchr/testify/require"
)

var intString = tm.DefineTransform(tm.String(), tm.Int(), tm.Codec[string, int]{
	Decode: func(s string) (int, error) { return strconv.Atoi(s) },
	Encode: func(i int) (string, error) { return strconv.Itoa(i), nil },
}, tm.WithID("IntString"))

func typeNames(types []*schema.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name
	}
	return out
}

func TestCompileScalarIdempotent(t *testing.T) {
	c := New()
	first, err := c.CompileScalar(intString)
	require.NoError(t, err)
	second, err := c.CompileScalar(intString)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, schema.TypeKindScalar, first.Kind)

	out, err := first.Serialize(7)
	require.NoError(t, err)
	require.Equal(t, "7", out)
	in, err := first.ParseValue("12")
	require.NoError(t, err)
	require.Equal(t, 12, in)

	_, err = first.ParseValue("x")
	require.Error(t, err)

	for _, v := range []int{0, 7, -42, 1 << 40} {
		wire, err := first.Serialize(v)
		require.NoError(t, err)
		back, err := first.ParseValue(wire)
		require.NoError(t, err)
		require.Equal(t, v, back)
	}
}

func TestResolveAsScalar(t *testing.T) {
	c := New()
	got, err := c.ResolveAsScalar(tm.Optional(tm.ID()))
	require.NoError(t, err)
	require.Same(t, schema.BuiltinScalar("ID"), got)

	got, err = c.ResolveAsScalar(tm.Object("User", nil))
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = c.ResolveAsScalar(tm.Enum("Role", "ADMIN", "MEMBER"))
	require.NoError(t, err)
	require.Equal(t, schema.TypeKindEnum, got.Kind)
	require.Len(t, got.EnumValues, 2)
}

func TestSharedNodeCompilesOnce(t *testing.T) {
	address := tm.Object("Address", []tm.Field{tm.Prop("city", tm.String())})
	user := tm.Object("User", []tm.Field{
		tm.Prop("home", address),
		tm.Prop("work", tm.Optional(address)),
	})
	c := New()
	_, err := c.CompileOutputType(user)
	require.NoError(t, err)

	types, err := c.CollectNamedTypes()
	require.NoError(t, err)
	require.Equal(t, []string{"User", "Address"}, typeNames(types))
}

func TestIdentifierWinsOverIdentity(t *testing.T) {
	a := tm.Object("User", []tm.Field{tm.Prop("id", tm.ID())})
	b := tm.Object("User", []tm.Field{tm.Prop("name", tm.String())})
	c := New()
	ta, err := c.CompileOutputType(a)
	require.NoError(t, err)
	tb, err := c.CompileOutputType(b)
	require.NoError(t, err)
	require.Same(t, ta, tb)
	require.NotNil(t, tb.Field("id"))
	require.Nil(t, tb.Field("name"))
}

func TestNullability(t *testing.T) {
	c := New()
	ref, err := c.ResolveAsOutputType(tm.List(tm.Optional(tm.String())))
	require.NoError(t, err)
	require.Equal(t, "[String]!", ref.String())

	ref, err = c.ResolveAsOutputType(tm.Optional(tm.List(tm.Int())))
	require.NoError(t, err)
	require.Equal(t, "[Int!]", ref.String())

	ref, err = c.ResolveAsInputType(tm.Optional(tm.Float()))
	require.NoError(t, err)
	require.Equal(t, "Float", ref.String())
}

func TestInterfaceInheritance(t *testing.T) {
	node := tm.Interface("Node", []tm.Field{tm.Prop("id", tm.ID())})
	named := tm.Interface("Named", []tm.Field{tm.Prop("name", tm.String())}, tm.Extends(node))
	user := tm.Object("User", []tm.Field{tm.Prop("email", tm.String())}, tm.Extends(named))

	c := New()
	ut, err := c.CompileOutputType(user)
	require.NoError(t, err)
	require.Equal(t, []string{"Named", "Node"}, ut.Interfaces)

	var fields []string
	for _, f := range ut.Fields {
		fields = append(fields, f.Name)
	}
	require.Equal(t, []string{"id", "name", "email"}, fields)

	types, err := c.CollectNamedTypes()
	require.NoError(t, err)
	byName := map[string]*schema.Type{}
	for _, typ := range types {
		byName[typ.Name] = typ
	}
	require.Equal(t, []string{"User"}, byName["Node"].PossibleTypes)
	require.Equal(t, []string{"Node"}, byName["Named"].Interfaces)
}

func TestUnionExpandsInterfaceMembers(t *testing.T) {
	pet := tm.Interface("Pet", []tm.Field{tm.Prop("name", tm.String())})
	dog := tm.Object("Dog", nil, tm.Extends(pet))
	cat := tm.Object("Cat", nil, tm.Extends(pet))
	human := tm.Object("Human", []tm.Field{tm.Prop("name", tm.String())})
	being := tm.Union("Being", human, pet)

	c := New()
	for _, o := range []*tm.ObjectType{dog, cat} {
		_, err := c.CompileOutputType(o)
		require.NoError(t, err)
	}
	u, err := c.CompileUnion(being)
	require.NoError(t, err)
	_, err = c.CollectNamedTypes()
	require.NoError(t, err)
	require.Equal(t, []string{"Human", "Dog", "Cat"}, u.PossibleTypes)
}

func TestRecursiveType(t *testing.T) {
	category := tm.Object("Category", []tm.Field{tm.Prop("name", tm.String())})
	category.Fields = append(category.Fields, tm.Prop("parent", tm.Optional(category)))

	c := New()
	ct, err := c.CompileOutputType(category)
	require.NoError(t, err)
	require.Equal(t, "Category", ct.Field("parent").Type.String())
}

func TestInputTypesAndArguments(t *testing.T) {
	filter := tm.Record([]tm.Field{
		tm.Prop("role", tm.Optional(tm.Enum("Role", "ADMIN", "MEMBER"))),
		tm.Prop("limit", tm.Int(tm.Default(10))).Describe("page size"),
	}, tm.WithID("UserFilter"))
	field := tm.Prop("users", tm.WithArgs(tm.List(tm.String()),
		tm.Prop("filter", tm.Optional(filter)),
		tm.Prop("ids", tm.List(tm.ID())),
	))

	c := New()
	f, err := c.CompileOutputField(field)
	require.NoError(t, err)
	require.Equal(t, "[String!]!", f.Type.String())
	require.Equal(t, "UserFilter", f.Argument("filter").Type.String())
	require.Equal(t, "[ID!]!", f.Argument("ids").Type.String())

	args, err := c.CompileFieldArguments(tm.String())
	require.NoError(t, err)
	require.Empty(t, args)

	in, err := c.CompileInputType(filter)
	require.NoError(t, err)
	limit := in.InputField("limit")
	require.Equal(t, 10, limit.DefaultValue)
	require.Equal(t, "page size", limit.Description)
}

func TestCompileRoot(t *testing.T) {
	user := tm.Object("User", []tm.Field{tm.Prop("id", tm.ID())})
	c := New()
	root, err := c.CompileRoot("Query", tm.Record([]tm.Field{
		tm.Prop("me", tm.Optional(user)),
	}))
	require.NoError(t, err)
	require.Equal(t, "User", root.Field("me").Type.String())

	types, err := c.CollectNamedTypes()
	require.NoError(t, err)
	require.Equal(t, []string{"Query", "User"}, typeNames(types))
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		compile func(c *Compiler) error
		kind    error
		trail   string
	}{
		{
			name: "scalar transform without id",
			compile: func(c *Compiler) error {
				_, err := c.CompileScalar(tm.DefineTransform(tm.String(), tm.String(), tm.Codec[string, string]{}))
				return err
			},
			kind: ErrMissingIdentifier,
		},
		{
			name: "record input without id",
			compile: func(c *Compiler) error {
				_, err := c.ResolveAsInputType(tm.Record(nil))
				return err
			},
			kind: ErrMissingIdentifier,
		},
		{
			name: "reserved field",
			compile: func(c *Compiler) error {
				_, err := c.CompileOutputType(tm.Object("Tagged", []tm.Field{tm.Prop(tm.TagField, tm.String())}))
				return err
			},
			kind:  ErrReservedField,
			trail: "compiling output object type Tagged",
		},
		{
			name: "raw transform",
			compile: func(c *Compiler) error {
				_, err := c.ResolveAsOutputType(tm.RawTransform(tm.String(), nil, nil))
				return err
			},
			kind: ErrTransformMisuse,
		},
		{
			name: "record in output position",
			compile: func(c *Compiler) error {
				_, err := c.CompileOutputType(tm.Object("Holder", []tm.Field{
					tm.Prop("inner", tm.Record(nil, tm.WithID("Inner"))),
				}))
				return err
			},
			kind:  ErrUnsupportedSchemaShape,
			trail: "compiling output object type Holder > compiling field inner",
		},
		{
			name: "object as input and output",
			compile: func(c *Compiler) error {
				point := tm.Object("Point", []tm.Field{tm.Prop("x", tm.Int())})
				if _, err := c.CompileOutputType(point); err != nil {
					return err
				}
				if _, err := c.CompileInputType(point); err != nil {
					return err
				}
				_, err := c.CollectNamedTypes()
				return err
			},
			kind: ErrNameConflict,
		},
		{
			name: "root named like a type",
			compile: func(c *Compiler) error {
				if _, err := c.CompileOutputType(tm.Object("Query", nil)); err != nil {
					return err
				}
				_, err := c.CompileRoot("Query", tm.Record(nil))
				return err
			},
			kind: ErrNameConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			err := tt.compile(c)
			require.ErrorIs(t, err, tt.kind)

			var cerr *Error
			require.True(t, errors.As(err, &cerr))
			if tt.trail != "" {
				require.Equal(t, tt.trail, strings.Join(cerr.Trail, " > "))
			}
			require.Equal(t, err, c.Err())

			_, again := c.CompileScalar(intString)
			require.Equal(t, err, again)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	c := New()
	_, err := c.CompileEnum(tm.Enum(""))
	require.ErrorIs(t, err, ErrMissingIdentifier)

	want := "missing identifier in schema\n{\n  \"enum\": null,\n  \"kind\": \"Enum\",\n  \"name\": \"\"\n}"
	if diff := cmp.Diff(want, err.Error()); diff != "" {
		t.Errorf("error message mismatch (-want +got):\n%s", diff)
	}
}
