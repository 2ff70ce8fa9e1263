package logging

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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(Config{})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Config{Level: "loud"})
	require.Error(t, err)
	_, err = New(Config{Format: "xml"})
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	eventbus.Use(eventbus.New())
	core, logs := observer.New(zapcore.DebugLevel)
	off := Register(zap.New(core))
	t.Cleanup(func() {
		off()
		eventbus.Use(nil)
	})

	ctx := reqid.WithID(context.Background(), "r1")
	eventbus.Publish(ctx, events.ResolverFinish{ObjectType: "Query", Field: "me", Err: errors.New("boom")})
	eventbus.Publish(ctx, events.ResolverFinish{ObjectType: "Query", Field: "ok"})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationName: "Me", OperationType: "query"})
	eventbus.Publish(ctx, events.HTTPFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200})
	eventbus.Publish(context.Background(), events.CompileFinish{Types: 4, Duration: time.Millisecond})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Equal(t, "resolver failed", entries[0].Message)
	ctxMap := entries[0].ContextMap()
	require.Equal(t, "r1", ctxMap["request_id"])
	require.Equal(t, "Query.me", ctxMap["field"])
	require.Equal(t, "boom", ctxMap["error"])

	require.Equal(t, "graphql operation", entries[1].Message)
	require.Equal(t, "http request", entries[2].Message)
	require.Equal(t, int64(200), entries[2].ContextMap()["status"])
	require.Equal(t, "schema compiled", entries[3].Message)
	require.Equal(t, zapcore.InfoLevel, entries[3].Level)
}
