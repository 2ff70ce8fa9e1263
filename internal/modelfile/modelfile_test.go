package modelfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/typegraph/internal/registry"
	tm "github.com/hanpama/typegraph/internal/typemodel"
	"github.com/stretchr/testify/require"
)

const blog = `
types:
  - name: Node
    kind: interface
    fields:
      - {name: id, type: ID}
  - name: Post
    kind: object
    extends: [Node]
    description: A blog post.
    fields:
      - {name: title, type: String}
      - {name: author, type: Author}
      - {name: tags, type: "[String]?"}
      - {name: published, type: DateTime?}
  - name: Author
    kind: object
    extends: [Node]
    discriminator: author
    fields:
      - {name: name, type: String}
      - {name: posts, type: "[Post]"}
  - name: Entry
    kind: union
    members: [Post, Author]
  - name: State
    kind: enum
    values: [DRAFT, LIVE]
  - name: Page
    kind: input
    fields:
      - {name: first, type: Int, default: 10}
      - {name: after, type: String?}
query:
  - name: posts
    type: "[Post]"
    args:
      - {name: page, type: Page?}
      - {name: state, type: State?}
  - name: search
    type: "[Entry]"
    args:
      - {name: text, type: String}
`

func TestParseBlog(t *testing.T) {
	m, err := Parse([]byte(blog))
	require.NoError(t, err)

	var names []string
	for _, typ := range m.Types {
		names = append(names, typ.TypeName())
	}
	require.Equal(t, []string{"Node", "Post", "Author", "Entry", "State", "Page"}, names)

	post := m.Types[1].(*tm.ObjectType)
	require.Equal(t, "A blog post.", post.Description)
	var fields []string
	for _, f := range post.Fields {
		fields = append(fields, f.Name)
	}
	require.Equal(t, []string{"id", "title", "author", "tags", "published"}, fields)

	author, _ := post.Field("author")
	require.Same(t, m.Types[2], author.Type)
	require.Equal(t, "author", m.Types[2].(*tm.ObjectType).Discriminator)

	require.Len(t, m.Query, 2)
	args := tm.ArgsOf(m.Query[0].Type)
	require.Len(t, args, 2)
	require.True(t, tm.IsOptional(args[0].Type))
}

func TestModelCompiles(t *testing.T) {
	m, err := Parse([]byte(blog))
	require.NoError(t, err)
	s, err := m.Registry().
		Resolve("Query.posts", func(_ context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			return []any{map[string]any{"id": "p1", "title": "Hello", "page": args["page"]}}, nil
		}).
		Resolve("Query.search", func(context.Context, any, map[string]any, registry.ResolveInfo) (any, error) {
			return []any{map[string]any{tm.TagField: "author", "id": "a1", "name": "Ada"}}, nil
		}).
		Compile(registry.WithDefaultResolvers())
	require.NoError(t, err)
	require.Contains(t, s.SDL(), "type Post implements Node")
	require.Contains(t, s.SDL(), "first: Int! = 10")
	require.Contains(t, s.SDL(), "union Entry = Post | Author")

	res := s.Execute(context.Background(), registry.Request{Query: `{
		posts(page: {after: "x"}) { id title }
		search(text: "ada") { ... on Author { name } }
	}`})
	require.Empty(t, res.Errors)
	want := map[string]any{
		"posts":  []any{map[string]any{"id": "p1", "title": "Hello"}},
		"search": []any{map[string]any{"name": "Ada"}},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultsOnEnumAndScalarArguments(t *testing.T) {
	m, err := Parse([]byte(`
types:
  - name: Role
    kind: enum
    values: [ADMIN, MEMBER]
query:
  - name: users
    type: String
    args:
      - {name: role, type: Role, default: MEMBER}
      - {name: when, type: DateTime, default: "2024-01-01T00:00:00Z"}
      - {name: also, type: Role?}
`))
	require.NoError(t, err)
	s, err := m.Registry().
		Resolve("Query.users", func(_ context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			return args["role"].(string) + " " + args["when"].(time.Time).Format(time.DateOnly), nil
		}).
		Compile()
	require.NoError(t, err)
	require.Contains(t, s.SDL(), `users(role: Role! = MEMBER, when: DateTime! = "2024-01-01T00:00:00Z", also: Role): String!`)
	require.Contains(t, s.SDL(), "enum Role {")
	require.Equal(t, 1, strings.Count(s.SDL(), "enum Role {"))

	res := s.Execute(context.Background(), registry.Request{Query: `{ users }`})
	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"users": "MEMBER 2024-01-01"}, res.Data)

	_, err = Parse([]byte(`
types:
  - name: Box
    kind: object
    fields:
      - {name: n, type: Int}
query:
  - name: boxes
    type: Int
    args:
      - {name: box, type: Box, default: {n: 1}}
`))
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestTypeExpressions(t *testing.T) {
	l := &loader{scalars: map[string]*tm.ScalarTransform{}, named: map[string]tm.Node{}}
	tests := []struct {
		expr string
		want string
	}{
		{expr: "String", want: "String!"},
		{expr: "String?", want: "String"},
		{expr: "[Int]", want: "[Int!]!"},
		{expr: "[Int?]?", want: "[Int]"},
		{expr: " [[ID]]? ", want: "[[ID!]!]"},
	}
	for _, tt := range tests {
		n, err := l.typeExpr(tt.expr, nil)
		require.NoError(t, err, tt.expr)
		require.Equal(t, tt.want, render(n), tt.expr)
	}
}

// render prints a parsed expression in GraphQL notation.
func render(n tm.Node) string {
	nonNull := "!"
	if o, ok := n.(*tm.OptionalType); ok {
		n, nonNull = o.Of, ""
	}
	switch v := n.(type) {
	case *tm.ListType:
		return "[" + render(v.Items) + "]" + nonNull
	case *tm.Scalar:
		return string(v.Scalar) + nonNull
	}
	return "?"
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{name: "unknown kind", file: File{Types: []TypeDecl{{Name: "A", Kind: "table"}}}},
		{name: "duplicate", file: File{Types: []TypeDecl{{Name: "A", Kind: "object"}, {Name: "A", Kind: "object"}}}},
		{name: "shadowed scalar", file: File{Types: []TypeDecl{{Name: "DateTime", Kind: "object"}}}},
		{name: "unknown field type", file: File{Types: []TypeDecl{{Name: "A", Kind: "object", Fields: []FieldDecl{{Name: "b", Type: "B"}}}}}},
		{name: "unbalanced list", file: File{Query: []FieldDecl{{Name: "a", Type: "[Int"}}}},
		{name: "extends object", file: File{Types: []TypeDecl{
			{Name: "A", Kind: "object"},
			{Name: "B", Kind: "object", Extends: []string{"A"}},
		}}},
		{name: "extends cycle", file: File{Types: []TypeDecl{
			{Name: "A", Kind: "interface", Extends: []string{"B"}},
			{Name: "B", Kind: "interface", Extends: []string{"A"}},
		}}},
		{name: "empty union", file: File{Types: []TypeDecl{{Name: "U", Kind: "union"}}}},
		{name: "union of enum", file: File{Types: []TypeDecl{
			{Name: "E", Kind: "enum", Values: []string{"X"}},
			{Name: "U", Kind: "union", Members: []string{"E"}},
		}}},
		{name: "empty enum", file: File{Types: []TypeDecl{{Name: "E", Kind: "enum"}}}},
		{name: "field without name", file: File{Query: []FieldDecl{{Type: "Int"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.file)
			require.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  - {name: ping, type: String}\n"), 0o600))
	m, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, m.Query, 1)

	_, err = Parse([]byte("types: {"))
	require.ErrorIs(t, err, ErrInvalidModel)
}
