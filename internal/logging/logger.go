// Package logging provides the leveled, structured logger used across the
// origin-chain packages. It follows the geth-style leveled-logger shape
// (Trace/Debug/Info/Warn/Error, With for contextual fields) backed by zap.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled logging interface every origin-chain package logs
// through. No package in this module writes to stdout directly.
type Logger interface {
	Trace(msg string, kv ...interface{})
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
	With(kv ...interface{}) Logger
}

type zapLogger struct {
	l *zap.SugaredLogger
}

// New returns a production-shaped JSON logger at the given level
// ("trace", "debug", "info", "warn", "error").
func New(level string) Logger {
	lvl := parseLevel(level)
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	core, err := cfg.Build()
	if err != nil {
		return NewNoOp()
	}
	return &zapLogger{l: core.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Trace logs at trace level. zap has no distinct trace level, so it is
// folded into Debug.
func (z *zapLogger) Trace(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
func (z *zapLogger) Debug(msg string, kv ...interface{}) { z.l.Debugw(msg, kv...) }
func (z *zapLogger) Info(msg string, kv ...interface{})  { z.l.Infow(msg, kv...) }
func (z *zapLogger) Warn(msg string, kv ...interface{})  { z.l.Warnw(msg, kv...) }
func (z *zapLogger) Error(msg string, kv ...interface{}) { z.l.Errorw(msg, kv...) }

func (z *zapLogger) With(kv ...interface{}) Logger {
	return &zapLogger{l: z.l.With(kv...)}
}

type noOpLogger struct{}

// NewNoOp returns a Logger that discards everything, for tests.
func NewNoOp() Logger { return noOpLogger{} }

func (noOpLogger) Trace(string, ...interface{}) {}
func (noOpLogger) Debug(string, ...interface{}) {}
func (noOpLogger) Info(string, ...interface{})  {}
func (noOpLogger) Warn(string, ...interface{})  {}
func (noOpLogger) Error(string, ...interface{}) {}
func (n noOpLogger) With(...interface{}) Logger { return n }
