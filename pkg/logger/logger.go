// Package logger wraps zap with request-context awareness. Services log
// through a *Logger carried in the context; trace and user identifiers
// attach to every line automatically.
package logger

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "dcolumn/internal/core/context"
)

// Logger is a sugared zap logger. Build one with New or take Default.
type Logger struct {
	*zap.SugaredLogger
}

// Config selects the log level and output encoding.
type Config struct {
	Level       string // debug, info, warn or error; anything else means info
	Development bool   // colored console lines instead of JSON
	OutputPaths []string
}

// New builds a logger. Production mode emits JSON; development mode emits
// colored console lines.
func New(cfg Config) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := baseConfig(cfg.Development)
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}

	zl, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{zl.Sugar()}, nil
}

func baseConfig(dev bool) zap.Config {
	if dev {
		c := zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return c
	}
	return zap.NewProductionConfig()
}

var (
	defaultOnce sync.Once
	defaultLog  *Logger
)

// Default returns the fallback logger used when no logger travels in the
// context: info-level JSON on stdout.
func Default() *Logger {
	defaultOnce.Do(func() {
		c := zap.NewProductionConfig()
		c.OutputPaths = []string{"stdout"}
		zl, _ := c.Build(zap.AddCallerSkip(1))
		defaultLog = &Logger{zl.Sugar()}
	})
	return defaultLog
}

// WithContext binds the request's trace and user identifiers.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := make([]any, 0, 6)
	if tr := appctx.GetTrace(ctx); tr != nil {
		fields = append(fields, "trace_id", tr.TraceID, "request_id", tr.RequestID)
	}
	if u := appctx.GetUser(ctx); u != nil {
		fields = append(fields, "user_id", u.UserID)
	}
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

// With returns a child logger carrying extra key-value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{l.SugaredLogger.With(kv...)}
}

// WithComponent names the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{l.SugaredLogger.With("component", name)}
}

type ctxKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the context's logger, already bound to its trace
// and user fields. Falls back to Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l.WithContext(ctx)
	}
	return Default().WithContext(ctx)
}

// Debug logs at debug level through the context's logger.
func Debug(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Debugw(msg, kv...) }

// Info logs at info level through the context's logger.
func Info(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Infow(msg, kv...) }

// Warn logs at warn level through the context's logger.
func Warn(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Warnw(msg, kv...) }

// Error logs at error level through the context's logger.
func Error(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Errorw(msg, kv...) }

// Fatal logs and terminates the process.
func Fatal(ctx context.Context, msg string, kv ...any) {
	FromContext(ctx).Fatalw(msg, kv...)
	os.Exit(1)
}
