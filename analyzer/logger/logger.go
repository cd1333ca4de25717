// Package logger provides the leveled logger used by the this-fallback pass.
//
// Records are written through log/slog. Multi-line messages are joined with
// a newline and a tab so a warning and its suggestions stay one record.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/abiiranathan/this-fallback/analyzer/syntax"
)

// Entry is a warning optionally tagged with the source span it is about.
type Entry struct {
	Lines []string
	Loc   *syntax.SourceSpan
}

// Logger is the logging surface of the pass.
type Logger interface {
	// Debug logs a formatted debug message.
	Debug(format string, args ...any)
	// Warn logs a multi-line warning.
	Warn(e Entry)
	// Error logs a multi-line error.
	Error(lines ...string)
	// With returns a logger whose records carry label, typically the
	// template module name.
	With(label string) Logger
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a Logger writing text records at level or above to w.
func New(w io.Writer, name string, level slog.Level) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &slogLogger{log: slog.New(handler).With(slog.String("logger", name))}
}

type slogLogger struct {
	log   *slog.Logger
	label string
}

func (l *slogLogger) Debug(format string, args ...any) {
	if !l.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.log.Debug(l.message([]string{fmt.Sprintf(format, args...)}))
}

func (l *slogLogger) Warn(e Entry) {
	if e.Loc == nil {
		l.log.Warn(l.message(e.Lines))
		return
	}
	l.log.Warn(l.message(e.Lines), slog.Group("loc",
		slog.String("module", e.Loc.Module),
		slog.Int("line", e.Loc.Start.Line),
		slog.Int("column", e.Loc.Start.Column),
	))
}

func (l *slogLogger) Error(lines ...string) {
	l.log.Error(l.message(lines))
}

func (l *slogLogger) With(label string) Logger {
	return &slogLogger{log: l.log, label: label}
}

// message prefixes the label and joins the lines.
func (l *slogLogger) message(lines []string) string {
	if l.label != "" {
		lines = append([]string{l.label}, lines...)
	}
	return JoinLines(lines)
}

// JoinLines joins log lines with a newline and a tab.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n\t")
}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noop{} }

type noop struct{}

func (noop) Debug(string, ...any) {}
func (noop) Warn(Entry)           {}
func (noop) Error(...string)      {}
func (noop) With(string) Logger   { return noop{} }
