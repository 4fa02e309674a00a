// Package telemetry is the log sink, tracing, and metrics collaborator:
// a write-only text stream backed by go.uber.org/zap, per-task spans via
// go.opentelemetry.io/otel, and scheduler counters via
// prometheus/client_golang.
package telemetry

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink is an append-only text stream. Scheduler and analyzer code depend
// on this interface, not on zap directly.
type Sink interface {
	// Line emits one log line. Implementations must not split it across
	// multiple Write calls that could interleave with another goroutine's
	// line — required substrings (e.g. "DR: start <task>") must each
	// appear intact on a single line.
	Line(msg string, fields ...Field)
}

// Field is a structured attribution attached to a line; the textual sink
// renders it inline, giving structured consumers something to grep with
// more precision than the free-form message alone.
type Field = zap.Field

func String(key, val string) Field { return zap.String(key, val) }
func Int(key string, val int) Field { return zap.Int(key, val) }

// zapSink is the default Sink: single-core zap logger writing
// line-oriented, human-readable (not JSON) text to an io.Writer.
type zapSink struct {
	logger *zap.Logger
}

// NewSink builds a Sink writing to w. w defaults to io.Discard if nil, so
// a graph run never panics for lack of a configured sink.
func NewSink(w io.Writer) Sink {
	if w == nil {
		w = io.Discard
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.LevelKey = ""
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encoder := zapcore.NewConsoleEncoder(encCfg)

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel)
	return &zapSink{logger: zap.New(core)}
}

func (s *zapSink) Line(msg string, fields ...Field) {
	s.logger.Info(msg, fields...)
}

// Discard is a Sink that drops every line. RunGraph does not use it: with
// no log destination it builds its own sink over io.Discard.
var Discard Sink = NewSink(io.Discard)
