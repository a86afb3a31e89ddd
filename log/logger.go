// Package log provides the structured debug sink every xray component logs
// through. It wraps go.uber.org/zap with a JSON encoder to stderr, and a
// handful of context fields attached once at construction.
//
// Nothing in this SDK lets an internal error escape to the caller — this
// logger is the only observable signal of internal failure, so every
// component that swallows an error logs through it.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger carrying fixed project context.
type Logger struct {
	zap   *zap.Logger
	debug bool
}

// New creates a Logger scoped to a project. debug controls whether Info and
// Debug calls are emitted; Warn and Error are always emitted regardless of
// the debug flag — e.g. the DiskSpool→MemorySpool fallback warning.
func New(projectID string, debug bool) *Logger {
	return newWithWriter(projectID, debug, os.Stderr)
}

func newWithWriter(projectID string, debug bool, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)

	zapLogger := zap.New(core).With(zap.String("project_id", projectID))
	return &Logger{zap: zapLogger, debug: debug}
}

// Debug logs at debug level, only when debug mode is enabled.
func (l *Logger) Debug(message string, fields map[string]any) {
	if l == nil || !l.debug {
		return
	}
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs at info level, only when debug mode is enabled.
func (l *Logger) Info(message string, fields map[string]any) {
	if l == nil || !l.debug {
		return
	}
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn always logs, regardless of debug mode.
func (l *Logger) Warn(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error always logs, regardless of debug mode.
func (l *Logger) Error(message string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zap.Error(message, zap.Any("fields", fields))
}

// With returns a Logger that attaches additional fixed context (e.g.
// trace_id) to every subsequent call.
func (l *Logger) With(key string, value any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zap: l.zap.With(zap.Any(key, value)), debug: l.debug}
}
