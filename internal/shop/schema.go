package shop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hanpama/typegraph/internal/registry"
	"github.com/hanpama/typegraph/internal/scalars"
	tm "github.com/hanpama/typegraph/internal/typemodel"
)

var (
	node = tm.Interface("Node", []tm.Field{
		tm.Prop("id", tm.ID()),
	}, tm.Describe("An object with a stable id."))

	product = tm.Object("Product", []tm.Field{
		tm.Prop("title", tm.String()),
		tm.Prop("price", tm.Int()).Describe("Price in cents."),
		tm.Prop("stock", tm.Int()),
	}, tm.Extends(node))

	purchase = tm.Object("Purchase", []tm.Field{
		tm.Prop("product", product),
		tm.Prop("quantity", tm.Int()),
		tm.Prop("total", tm.Int()).Describe("Amount paid in cents."),
		tm.Prop("purchasedAt", scalars.DateTime),
	}, tm.Extends(node))

	user = tm.Object("User", []tm.Field{
		tm.Prop("email", tm.String()),
		tm.Prop("name", tm.String()),
		tm.Prop("createdAt", scalars.DateTime),
		tm.Prop("purchases", tm.List(purchase)),
	}, tm.Extends(node))

	searchResult = tm.Union("SearchResult", user, product).
			Describe("A user or a product matching a search.")

	purchaseInput = tm.Record([]tm.Field{
		tm.Prop("productId", tm.ID()),
		tm.Prop("quantity", tm.Int(tm.Default(1))),
	}, tm.WithID("PurchaseInput"))
)

// Registry returns the shop's registry with every resolver bound against
// store. Compile it with registry.WithDefaultResolvers.
func Registry(store *Store) registry.Registry {
	return registry.Empty().
		AddType(node).
		AddType(user).
		AddType(product).
		AddType(purchase).
		AddType(searchResult).
		SetQuery(
			tm.Prop("me", tm.Optional(user)).Describe("The signed in user."),
			tm.Prop("product", tm.WithArgs(tm.Optional(product), tm.Prop("id", tm.ID()))),
			tm.Prop("products", tm.WithArgs(tm.List(product), tm.Prop("first", tm.Optional(tm.Int(tm.Default(20)))))),
			tm.Prop("search", tm.WithArgs(tm.List(searchResult), tm.Prop("text", tm.String()))),
		).
		SetMutation(
			tm.Prop("purchase", tm.WithArgs(purchase, tm.Prop("input", purchaseInput))),
		).
		Resolve("Query.me", func(ctx context.Context, _ any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
			id, ok := UserID(ctx)
			if !ok {
				return nil, nil
			}
			return store.User(id)
		}).
		Resolve("Query.product", func(_ context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			p, err := store.Product(args["id"].(string))
			if errors.Is(err, ErrNotFound) {
				return nil, nil
			}
			return p, err
		}).
		Resolve("Query.products", func(_ context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			first, ok := args["first"].(int)
			if !ok {
				first = -1
			}
			return store.Products(first), nil
		}).
		Resolve("Query.search", func(_ context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			return store.Search(args["text"].(string)), nil
		}).
		Resolve("Mutation.purchase", func(ctx context.Context, _ any, args map[string]any, _ registry.ResolveInfo) (any, error) {
			id, ok := UserID(ctx)
			if !ok {
				return nil, ErrUnauthenticated
			}
			input := args["input"].(map[string]any)
			return store.Purchase(id, input["productId"].(string), input["quantity"].(int))
		}).
		Resolve("User.purchases", func(_ context.Context, root any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
			return store.Purchases(root.(*User).ID), nil
		}).
		Resolve("Purchase.product", func(_ context.Context, root any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
			return store.Product(root.(*Purchase).ProductID)
		})
}

// ErrUnauthenticated is returned by operations that need a signed in user.
var ErrUnauthenticated = errors.New("shop: sign in required")

type userKey struct{}

// WithUser returns a copy of ctx signed in as the user with id.
func WithUser(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserID returns the signed in user of ctx.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userKey{}).(string)
	return id, ok
}

// Authenticate signs requests carrying "Authorization: Bearer <user id>" in
// as that user. Requests without the header stay anonymous; unknown users are
// rejected.
func Authenticate(store *Store) func(context.Context, *http.Request) (context.Context, error) {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		header := r.Header.Get("Authorization")
		if header == "" {
			return ctx, nil
		}
		id, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed authorization header", ErrUnauthenticated)
		}
		if _, err := store.User(id); err != nil {
			return nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
		}
		return WithUser(ctx, id), nil
	}
}
