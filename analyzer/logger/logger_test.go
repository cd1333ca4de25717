package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/abiiranathan/this-fallback/analyzer/syntax"
	"github.com/stretchr/testify/assert"
)

func TestWarnWithLabelAndLoc(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "ember-this-fallback", slog.LevelInfo).With("app/templates/index.hbs")

	log.Warn(Entry{
		Lines: []string{"first", "second"},
		Loc:   &syntax.SourceSpan{Module: "app/templates/index.hbs", Start: syntax.Position{Line: 3, Column: 4}},
	})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="app/templates/index.hbs\n\tfirst\n\tsecond"`)
	assert.Contains(t, out, "logger=ember-this-fallback")
	assert.Contains(t, out, "loc.module=app/templates/index.hbs")
	assert.Contains(t, out, "loc.line=3")
	assert.Contains(t, out, "loc.column=4")
}

func TestWarnWithoutLoc(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "x", slog.LevelInfo).Warn(Entry{Lines: []string{"plain"}})

	assert.Contains(t, buf.String(), "msg=plain")
	assert.NotContains(t, buf.String(), "loc.")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "x", slog.LevelWarn)

	log.Debug("hidden %d", 1)
	assert.Empty(t, buf.String())

	log.Error("broken", "details")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `msg="broken\n\tdetails"`)
}

func TestDebugFormats(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "x", slog.LevelDebug).Debug("before: '%s'", "{{x}}")
	assert.Contains(t, buf.String(), `msg="before: '{{x}}'"`)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "a\n\tb\n\tc", JoinLines([]string{"a", "b", "c"}))
	assert.Equal(t, "", JoinLines(nil))
}

func TestNoop(t *testing.T) {
	log := Noop().With("label")
	assert.NotPanics(t, func() {
		log.Debug("x")
		log.Warn(Entry{Lines: []string{"x"}})
		log.Error("x")
	})
}
