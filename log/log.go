// Package log provides structured logging for the rollup host. It wraps
// Go's log/slog with rollup-specific conveniences such as per-node child
// loggers, and feeds every Error call into the metrics package so error
// rates are observable on /metrics without callers instrumenting each
// call site by hand.
package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pwang200/payment-rollup/metrics"
)

// Logger wraps slog.Logger with rollup-specific context. node is the dotted
// path of Node() calls that produced this logger ("" for the root), used to
// attribute error counts to the subsystem that logged them.
type Logger struct {
	inner *slog.Logger
	node  string
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler. This
// is useful for testing or for writing to a custom destination.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Node returns a child logger with an additional "node" attribute, scoped
// under this logger's own node path if it has one. This is the primary way
// subsystems (l1, l2, prover, client) obtain their own contextual logger,
// and it is what determines which error-rate counter Error() bumps.
func (l *Logger) Node(name string) *Logger {
	full := name
	if l.node != "" {
		full = l.node + "." + name
	}
	return &Logger{inner: l.inner.With("node", full), node: full}
}

// With returns a child logger with additional key-value context. It does not
// change the node path.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...), node: l.node}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError and increments the error counter for this
// logger's node (or a single process-wide counter for the root logger), so
// an operator can alert on error rate per subsystem from /metrics alone.
func (l *Logger) Error(msg string, args ...any) {
	l.inner.Error(msg, args...)
	l.errorCounter().Inc()
}

func (l *Logger) errorCounter() prometheus.Counter {
	name := "log.errors"
	help := "errors logged at the root logger"
	if l.node != "" {
		name = "log.errors." + l.node
		help = fmt.Sprintf("errors logged by node %q", l.node)
	}
	return metrics.DefaultRegistry.Counter(name, help)
}

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
