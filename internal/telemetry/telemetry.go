// Package telemetry wraps zap behind the Logger collaborator spec.md §6
// names, gated by internal/engineconfig's Verbosity option: verbosity > 0
// enables Info logging, verbosity > 4 additionally records per-operator
// timing spans.
package telemetry

import (
	"time"

	"go.uber.org/zap"

	"board/internal/engineconfig"
)

// Logger wraps a *zap.Logger, silenced entirely at verbosity 0 so the
// engine's default behavior stays as quiet as the teacher's own code.
type Logger struct {
	z         *zap.Logger
	verbosity int
}

// New builds a Logger from cfg.Verbosity. At verbosity 0 it discards
// everything (zap.NewNop); otherwise a production zap.Logger is used.
func New(cfg engineconfig.Config) *Logger {
	if cfg.Verbosity <= 0 {
		return &Logger{z: zap.NewNop(), verbosity: 0}
	}
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &Logger{z: z, verbosity: cfg.Verbosity}
}

// Info logs msg with fields if verbosity allows it.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l == nil || l.verbosity <= 0 {
		return
	}
	l.z.Info(msg, fields...)
}

// Span times a named operator invocation, logging its duration on Stop if
// verbosity > 4 (spec.md §6's per-operator timing span tier).
type Span struct {
	l     *Logger
	name  string
	start time.Time
}

// StartSpan begins timing name; call Stop when the operator returns.
func (l *Logger) StartSpan(name string) *Span {
	return &Span{l: l, name: name, start: time.Now()}
}

// Stop ends the span and logs its duration if the logger's verbosity is
// high enough.
func (s *Span) Stop() {
	if s == nil || s.l == nil || s.l.verbosity <= 4 {
		return
	}
	s.l.z.Info(s.name, zap.Duration("duration", time.Since(s.start)))
}

// Sync flushes any buffered log entries; call before process exit.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.z.Sync()
}
