package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	registry "github.com/hanpama/typegraph/internal/registry"
	reqid "github.com/hanpama/typegraph/internal/reqid"
	tm "github.com/hanpama/typegraph/internal/typemodel"
	"github.com/stretchr/testify/require"
)

type userKey struct{}

func newTestHandler(t *testing.T, hello registry.ResolveFunc, opts ...Option) *Handler {
	t.Helper()
	if hello == nil {
		hello = func(context.Context, any, map[string]any, registry.ResolveInfo) (any, error) { return "world", nil }
	}
	s, err := registry.Empty().
		SetQuery(tm.Prop("hello", tm.Optional(tm.String()))).
		SetMutation(tm.Prop("bump", tm.Int())).
		Resolve("Query.hello", hello).
		Resolve("Mutation.bump", func(context.Context, any, map[string]any, registry.ResolveInfo) (any, error) { return 1, nil }).
		Compile()
	require.NoError(t, err)
	h, err := New(s, opts...)
	require.NoError(t, err)
	return h
}

func post(h http.Handler, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestServeQuery(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "world"}}, decode(t, w))
}

func TestServeBatchAndErrors(t *testing.T) {
	h := newTestHandler(t, func(context.Context, any, map[string]any, registry.ResolveInfo) (any, error) {
		return nil, errors.New("nope")
	})
	w := post(h, `[{"query":"{ hello }"},{"query":"{ missing }"}]`)
	require.Equal(t, http.StatusOK, w.Code)
	var got []specResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)

	want := specResult{
		Data:   map[string]any{"hello": nil},
		Errors: []specError{{Message: "nope", Locations: []specLocation{{Line: 1, Column: 3}}, Path: []any{"hello"}}},
	}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("first result mismatch (-want +got):\n%s", diff)
	}
	require.Nil(t, got[1].Data)
	require.Len(t, got[1].Errors, 1)
	require.Equal(t, `Cannot query field "missing" on type "Query".`, got[1].Errors[0].Message)
	require.Equal(t, []specLocation{{Line: 1, Column: 3}}, got[1].Errors[0].Locations)
}

func TestServeGet(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/?query="+url.QueryEscape("{ hello }"), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "world"}}, decode(t, w))

	req = httptest.NewRequest(http.MethodGet, "/?query="+url.QueryEscape("mutation { bump }"), nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Contains(t, w.Body.String(), "only queries can be sent with GET")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL")
}

func TestForwardedHeaders(t *testing.T) {
	var captured http.Header
	h := newTestHandler(t, func(ctx context.Context, _ any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
		captured = Headers(ctx)
		return "world", nil
	}, WithForwardHeaders("x-test"))

	w := post(h, `{"query":"{ hello }"}`, "X-Test", "abc", "X-Other", "nope")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.Header{"X-Test": {"abc"}}, captured)
}

func TestForwardedHeadersDefaultEmpty(t *testing.T) {
	captured := http.Header{"unset": nil}
	h := newTestHandler(t, func(ctx context.Context, _ any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
		captured = Headers(ctx)
		return "world", nil
	})

	w := post(h, `{"query":"{ hello }"}`, "X-Test", "abc")
	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, captured)
}

func TestRequestContextHook(t *testing.T) {
	var who any
	h := newTestHandler(t, func(ctx context.Context, _ any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
		who = ctx.Value(userKey{})
		return "world", nil
	}, WithRequestContext(func(ctx context.Context, r *http.Request) (context.Context, error) {
		token := r.Header.Get("Authorization")
		if token == "" {
			return nil, errors.New("unauthenticated")
		}
		return context.WithValue(ctx, userKey{}, token), nil
	}))

	w := post(h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, who)

	w = post(h, `{"query":"{ hello }"}`, "Authorization", "Bearer ada")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Bearer ada", who)
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, nil, WithCORS("*"))

	w := post(h, `{"query":"{ hello }"}`, "Origin", "http://example.com")
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	require.Equal(t, http.StatusNoContent, pw.Code)
	require.Equal(t, "*", pw.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Test", pw.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORSSpecificOrigin(t *testing.T) {
	h := newTestHandler(t, nil, WithCORS("http://a.example"))

	w := post(h, `{"query":"{ hello }"}`, "Origin", "http://a.example")
	require.Equal(t, "http://a.example", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Origin", w.Header().Get("Vary"))

	w = post(h, `{"query":"{ hello }"}`, "Origin", "http://b.example")
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRejectedRequests(t *testing.T) {
	h := newTestHandler(t, nil, WithMaxBodyBytes(10))

	w := post(h, `{"query":"1234567890"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	h = newTestHandler(t, nil)
	require.Equal(t, http.StatusBadRequest, post(h, `{"query":`).Code)
	require.Equal(t, http.StatusBadRequest, post(h, `[]`).Code)
	require.Equal(t, http.StatusBadRequest, post(h, `{}`).Code)

	req := httptest.NewRequest(http.MethodPut, "/", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestIntrospectionToggle(t *testing.T) {
	h := newTestHandler(t, nil)
	w := post(h, `{"query":"{ __schema { queryType { name } } }"}`)
	require.Equal(t, map[string]any{"data": map[string]any{
		"__schema": map[string]any{"queryType": map[string]any{"name": "Query"}},
	}}, decode(t, w))

	h = newTestHandler(t, nil, WithIntrospection(false))
	w = post(h, `{"query":"{ __schema { queryType { name } } }"}`)
	require.Contains(t, decode(t, w).(map[string]any), "errors")
}

func TestRequestID(t *testing.T) {
	var capturedID string
	h := newTestHandler(t, func(ctx context.Context, _ any, _ map[string]any, _ registry.ResolveInfo) (any, error) {
		capturedID, _ = reqid.FromContext(ctx)
		return "world", nil
	})

	w := post(h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, capturedID)
	require.Equal(t, capturedID, w.Header().Get(reqid.Header))

	w = post(h, `{"query":"{ hello }"}`, reqid.Header, "edge-42")
	require.Equal(t, "edge-42", capturedID)
	require.Equal(t, "edge-42", w.Header().Get(reqid.Header))
}
