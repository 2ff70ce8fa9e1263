package otel

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	eventbus "github.com/hanpama/typegraph/internal/eventbus"
	events "github.com/hanpama/typegraph/internal/events"
	reqid "github.com/hanpama/typegraph/internal/reqid"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setup(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	eventbus.Use(eventbus.New())
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	off := Register(tp.Tracer(TracerName))
	t.Cleanup(func() {
		off()
		eventbus.Use(nil)
	})
	return rec
}

func TestRequestSpans(t *testing.T) {
	rec := setup(t)
	ctx, _ := reqid.NewContext(context.Background())
	req := httptest.NewRequest("POST", "/graphql", nil)

	eventbus.Publish(ctx, events.HTTPStart{Request: req})
	eventbus.Publish(ctx, events.GraphQLStart{OperationName: "Me", OperationType: "query"})
	eventbus.Publish(ctx, events.ResolverFinish{ObjectType: "Query", Field: "me", Err: errors.New("boom")})
	eventbus.Publish(ctx, events.ResolverFinish{ObjectType: "User", Field: "id"})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationName: "Me", Errors: []error{errors.New("boom")}})
	eventbus.Publish(ctx, events.HTTPFinish{Request: req, Status: 200})

	spans := rec.Ended()
	require.Len(t, spans, 2)
	op, httpSpan := spans[0], spans[1]
	require.Equal(t, "graphql.operation", op.Name())
	require.Equal(t, "http.request", httpSpan.Name())
	require.Equal(t, httpSpan.SpanContext().SpanID(), op.Parent().SpanID())
	require.Equal(t, codes.Error, op.Status().Code)
	require.Len(t, op.Events(), 1)
	require.Equal(t, "exception", op.Events()[0].Name)
}

func TestCompileSpan(t *testing.T) {
	rec := setup(t)
	eventbus.Publish(context.Background(), events.CompileFinish{Types: 3, Duration: 5 * time.Millisecond})
	eventbus.Publish(context.Background(), events.CompileFinish{Err: errors.New("bad"), Duration: time.Millisecond})

	spans := rec.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "typegraph.compile", spans[0].Name())
	require.Equal(t, 5*time.Millisecond, spans[0].EndTime().Sub(spans[0].StartTime()))
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestSetupWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup("", "svc")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
