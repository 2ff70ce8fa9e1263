// Package logging builds the zap logger and logs published events.
package logging

import (
	"context"
	"fmt"

	eventbus "github.com/hanpama/typegraph/internal/eventbus"
	events "github.com/hanpama/typegraph/internal/events"
	reqid "github.com/hanpama/typegraph/internal/reqid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the log level and encoding ("console" or "json").
type Config struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New builds a logger writing to stderr.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
	}
	var zc zap.Config
	switch cfg.Format {
	case "", "console":
		zc = zap.NewDevelopmentConfig()
		zc.Development = false
	case "json":
		zc = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Register logs published events with logger. Requests and operations log at
// debug, failures at warn and error.
func Register(logger *zap.Logger) (unsubscribe func()) {
	with := func(ctx context.Context) *zap.Logger {
		if rid, ok := reqid.FromContext(ctx); ok {
			return logger.With(zap.String("request_id", rid))
		}
		return logger
	}
	offs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			with(ctx).Debug("http request",
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			fields := []zap.Field{
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Duration("duration", e.Duration),
			}
			if len(e.Errors) > 0 {
				with(ctx).Warn("graphql operation failed", append(fields, zap.Errors("errors", e.Errors))...)
				return
			}
			with(ctx).Debug("graphql operation", fields...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ResolverFinish) {
			if e.Err == nil {
				return
			}
			with(ctx).Warn("resolver failed",
				zap.String("field", e.ObjectType+"."+e.Field),
				zap.Duration("duration", e.Duration),
				zap.Error(e.Err),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.CompileFinish) {
			if e.Err != nil {
				logger.Error("schema compilation failed", zap.Error(e.Err), zap.Duration("duration", e.Duration))
				return
			}
			logger.Info("schema compiled", zap.Int("types", e.Types), zap.Duration("duration", e.Duration))
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}
