// Package obslog provides the minimal logging interface threaded through
// this module, backed by go.uber.org/zap.
package obslog

import "go.uber.org/zap"

// Logger is the minimal logging interface used throughout this module. It
// is satisfied by *log.Logger, the zap-backed implementation below, and
// test doubles — the same duck type the teacher threads through
// internal/pluginengine, kept unchanged so every package depending on it
// is oblivious to the backing implementation.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Nop is a Logger that discards everything, used as the default when no
// Logger is configured.
var Nop Logger = nopLogger{}

// OrNop returns l, or Nop if l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop
	}
	return l
}

// zapLogger adapts a *zap.SugaredLogger to the Logger duck type.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

func (z *zapLogger) Printf(format string, args ...any) {
	z.sugar.Infof(format, args...)
}

// NewZap builds a Logger backed by a production zap configuration
// (JSON-encoded, info level and above).
func NewZap() (Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: base.Sugar()}, nil
}

// NewZapDevelopment builds a Logger backed by zap's human-readable
// development configuration, used by cmd/pddlstream when --verbose is set.
func NewZapDevelopment() (Logger, error) {
	base, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugar: base.Sugar()}, nil
}
