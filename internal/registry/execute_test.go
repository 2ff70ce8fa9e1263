package registry

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/typegraph/internal/executor"
	tm "github.com/hanpama/typegraph/internal/typemodel"
	"github.com/stretchr/testify/require"
)

func TestExecuteGetUser(t *testing.T) {
	record := map[string]any{"id": "1", "email": "ada@example.com", "likes": 3}
	var gotArgs map[string]any
	s, err := Empty().
		AddType(likeable).
		AddType(user).
		SetQuery(tm.Prop("getUser", tm.WithArgs(user, tm.Prop("id", tm.ID())))).
		Resolve("Query.getUser", func(_ context.Context, _ any, args map[string]any, _ ResolveInfo) (any, error) {
			gotArgs = args
			return record, nil
		}).
		Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{ getUser(id: "1") { id email likes } }`})
	require.Empty(t, res.Errors)
	want := map[string]any{"getUser": map[string]any{"id": "1", "email": "ada@example.com", "likes": 3}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]any{"id": "1"}, gotArgs)
}

type product struct {
	SKU      string `graphql:"sku"`
	Title    string `json:"title"`
	Price    int
	internal string
}

func (p *product) Label() string { return p.Title + " (" + p.SKU + ")" }

type tagged string

func (t tagged) TypeTag() string { return string(t) }

var intString = tm.DefineTransform(tm.String(), tm.Int(), tm.Codec[string, int]{
	Decode: func(s string) (int, error) { return strconv.Atoi(s) },
	Encode: func(i int) (string, error) { return strconv.Itoa(i), nil },
}, tm.WithID("IntString"))

func shopRegistry() Registry {
	status := tm.Enum("Status", "ACTIVE", "RETIRED")
	productType := tm.Object("Product", []tm.Field{
		tm.Prop("sku", tm.ID()),
		tm.Prop("title", tm.String()),
		tm.Prop("price", tm.Int()),
		tm.Prop("label", tm.String()),
		tm.Prop("status", status),
	})
	coupon := tm.Object("Coupon", []tm.Field{tm.Prop("code", tm.String())}, tm.Discriminator("coupon"))
	item := tm.Union("Item", productType, coupon)
	return Empty().
		AddType(productType).
		AddType(coupon).
		AddType(item).
		SetQuery(
			tm.Prop("product", tm.Optional(productType)),
			tm.Prop("items", tm.List(item)),
			tm.Prop("double", tm.WithArgs(intString, tm.Prop("amount", intString))),
			tm.Prop("broken", tm.Optional(tm.String())),
		).
		Resolve("Query.product", constant(&product{SKU: "p1", Title: "Lamp", Price: 30})).
		Resolve("Query.items", constant([]any{
			map[string]any{tm.TagField: "Product", "sku": "p2", "title": "Desk", "price": 120},
			map[string]any{tm.TagField: "coupon", "code": "SAVE"},
		})).
		Resolve("Query.double", func(_ context.Context, _ any, args map[string]any, _ ResolveInfo) (any, error) {
			return args["amount"].(int) * 2, nil
		}).
		Resolve("Query.broken", func(context.Context, any, map[string]any, ResolveInfo) (any, error) {
			return nil, errors.New("boom")
		}).
		Resolve("Product.status", func(_ context.Context, root any, _ map[string]any, info ResolveInfo) (any, error) {
			if info.ObjectType != "Product" || info.Field != "status" {
				return nil, errors.New("unexpected resolve info")
			}
			return "ACTIVE", nil
		})
}

func TestExecuteProjectionAndLeaves(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{
		product { sku title price label status }
		double(amount: "21")
	}`})
	require.Empty(t, res.Errors)
	want := map[string]any{
		"product": map[string]any{"sku": "p1", "title": "Lamp", "price": 30, "label": "Lamp (p1)", "status": "ACTIVE"},
		"double":  "42",
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteRejectsFractionalTransformInput(t *testing.T) {
	identity := func(i int) (int, error) { return i, nil }
	cents := tm.DefineTransform(tm.Int(), tm.Int(), tm.Codec[int, int]{Decode: identity, Encode: identity}, tm.WithID("Cents"))
	s, err := Empty().
		SetQuery(tm.Prop("echo", tm.WithArgs(tm.Optional(cents), tm.Prop("amount", cents)))).
		Resolve("Query.echo", func(_ context.Context, _ any, args map[string]any, _ ResolveInfo) (any, error) {
			return args["amount"], nil
		}).
		Compile()
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{ echo(amount: 7) }`})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"echo": 7}, res.Data)

	res = s.Execute(context.Background(), Request{Query: `{ echo(amount: 1.5) }`})
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "does not fit")
	require.Equal(t, map[string]any{"echo": nil}, res.Data)

	res = s.Execute(context.Background(), Request{
		Query:     `query($a: Cents!) { echo(amount: $a) }`,
		Variables: map[string]any{"a": 2.9},
	})
	require.Len(t, res.Errors, 1)
	require.Nil(t, res.Data)
}

func TestExecuteUnionByDiscriminator(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{
		items { __typename ... on Product { sku } ... on Coupon { code } }
	}`})
	require.Empty(t, res.Errors)
	want := map[string]any{"items": []any{
		map[string]any{"__typename": "Product", "sku": "p2"},
		map[string]any{"__typename": "Coupon", "code": "SAVE"},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteResolverError(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{ broken double(amount: "1") }`})
	require.Len(t, res.Errors, 1)
	require.Equal(t, "boom", res.Errors[0].Message)
	require.Equal(t, executor.Path{"broken"}, res.Errors[0].Path)
	require.Equal(t, map[string]any{"broken": nil, "double": "2"}, res.Data)
}

func TestExecuteValidationAndIntrospection(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{ nope }`})
	require.Nil(t, res.Data)
	require.NotEmpty(t, res.Errors)

	res = s.Execute(context.Background(), Request{Query: `{ __type(name: "Item") { kind possibleTypes { name } } }`})
	require.Empty(t, res.Errors)
	want := map[string]any{"__type": map[string]any{
		"kind":          "UNION",
		"possibleTypes": []any{map[string]any{"name": "Coupon"}, map[string]any{"name": "Product"}},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	res = s.Execute(context.Background(), Request{Query: `{ __schema { queryType { name } } }`}, WithoutIntrospection())
	require.NotEmpty(t, res.Errors)
}

func TestBatchRunsEveryTask(t *testing.T) {
	var calls atomic.Int32
	count := func(v any) ResolveFunc {
		return func(context.Context, any, map[string]any, ResolveInfo) (any, error) {
			calls.Add(1)
			return v, nil
		}
	}
	post := tm.Object("Post", []tm.Field{tm.Prop("id", tm.ID()), tm.Prop("author", tm.String())})
	s, err := Empty().
		AddType(post).
		SetQuery(tm.Prop("posts", tm.List(post)), tm.Prop("total", tm.Int())).
		Resolve("Query.posts", count([]map[string]any{{"id": "a"}, {"id": "b"}, {"id": "c"}})).
		Resolve("Query.total", count(3)).
		Resolve("Post.author", func(_ context.Context, root any, _ map[string]any, _ ResolveInfo) (any, error) {
			calls.Add(1)
			return "by " + root.(map[string]any)["id"].(string), nil
		}).
		Compile(WithDefaultResolvers())
	require.NoError(t, err)

	res := s.Execute(context.Background(), Request{Query: `{ total posts { id author } }`})
	require.Empty(t, res.Errors)
	require.Equal(t, int32(5), calls.Load())
	want := map[string]any{
		"total": 3,
		"posts": []any{
			map[string]any{"id": "a", "author": "by a"},
			map[string]any{"id": "b", "author": "by b"},
			map[string]any{"id": "c", "author": "by c"},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveType(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)
	rt := s.Runtime()
	ctx := context.Background()

	name, err := rt.ResolveType(ctx, "Item", tagged("coupon"))
	require.NoError(t, err)
	require.Equal(t, "Coupon", name)

	_, err = rt.ResolveType(ctx, "Item", map[string]any{"code": "x"})
	require.Error(t, err)

	_, err = rt.ResolveType(ctx, "Item", map[string]any{tm.TagField: "Status"})
	require.Error(t, err)

	_, err = rt.ResolveType(ctx, "Product", nil)
	require.Error(t, err)
}

func TestSerializeLeafValue(t *testing.T) {
	s, err := shopRegistry().Compile(WithDefaultResolvers())
	require.NoError(t, err)
	rt := s.Runtime()
	ctx := context.Background()

	tests := []struct {
		typ     string
		in      any
		want    any
		wantErr bool
	}{
		{typ: "Int", in: int64(7), want: 7},
		{typ: "Int", in: 2.0, want: 2},
		{typ: "Int", in: 2.5, wantErr: true},
		{typ: "Int", in: int64(1) << 40, wantErr: true},
		{typ: "Float", in: 3, want: 3.0},
		{typ: "String", in: true, want: "true"},
		{typ: "Boolean", in: "yes", wantErr: true},
		{typ: "ID", in: 42, want: "42"},
		{typ: "Status", in: "RETIRED", want: "RETIRED"},
		{typ: "Status", in: "GONE", wantErr: true},
		{typ: "IntString", in: 9, want: "9"},
		{typ: "IntString", in: "nine", wantErr: true},
		{typ: "Product", in: "x", wantErr: true},
		{typ: "String", in: nil, want: nil},
	}
	for _, tt := range tests {
		got, err := rt.SerializeLeafValue(ctx, tt.typ, tt.in)
		if tt.wantErr {
			require.Error(t, err, "%s %v", tt.typ, tt.in)
			continue
		}
		require.NoError(t, err, "%s %v", tt.typ, tt.in)
		require.Equal(t, tt.want, got, "%s %v", tt.typ, tt.in)
	}
}

type fragile struct{ Name string }

func (fragile) Label() string { panic("getter exploded") }

func TestExecuteRecoversPanickingGetter(t *testing.T) {
	thing := tm.Object("Thing", []tm.Field{
		tm.Prop("name", tm.String()),
		tm.Prop("label", tm.Optional(tm.String())),
	})
	s, err := Empty().
		AddType(thing).
		SetQuery(tm.Prop("u", thing)).
		Resolve("Query.u", constant(fragile{Name: "ok"})).
		Compile(WithDefaultResolvers())
	require.NoError(t, err)

	var res *executor.ExecutionResult
	require.NotPanics(t, func() {
		res = s.Execute(context.Background(), Request{Query: `{ u { name label } }`})
	})
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "getter exploded")
	require.Equal(t, executor.Path{"u", "label"}, res.Errors[0].Path)
	require.Equal(t, map[string]any{"u": map[string]any{"name": "ok", "label": nil}}, res.Data)
}

func TestProject(t *testing.T) {
	p := &product{SKU: "s", Title: "t", Price: 3, internal: "hidden"}
	tests := []struct {
		source any
		field  string
		want   any
	}{
		{source: p, field: "sku", want: "s"},
		{source: p, field: "title", want: "t"},
		{source: p, field: "price", want: 3},
		{source: p, field: "label", want: "t (s)"},
		{source: p, field: "internal", want: nil},
		{source: *p, field: "sku", want: "s"},
		{source: map[string]string{"a": "b"}, field: "a", want: "b"},
		{source: map[string]any{}, field: "missing", want: nil},
		{source: (*product)(nil), field: "sku", want: nil},
	}
	for _, tt := range tests {
		got, err := project(tt.source, tt.field)
		require.NoError(t, err)
		require.Equal(t, tt.want, got, "%T.%s", tt.source, tt.field)
	}

	_, err := project(42, "x")
	require.Error(t, err)
}
