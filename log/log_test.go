package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_Defaults(t *testing.T) {
	logger := Make(new(bytes.Buffer))

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("expected level %v, got %v", DefaultLevel, got)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("expected format %v, got %v", DefaultFormat, got)
	}

	if logger.caller != DefaultCaller {
		t.Errorf("expected caller %v, got %v", DefaultCaller, logger.caller)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		logFn  func(Logger, string, ...slog.Attr)
		floor  Level
		logged bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"warn at error", Logger.Warn, LevelError, false},
		{"error at debug", Logger.Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFn(Make(&buf, WithLevel(tt.floor)), "message")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("expected logged=%v, got output %q", tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_Formats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatJSON), WithPretty(false)).
			Info("compiled", slog.String("purpose", "bind"))

		var record map[string]any
		if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
			t.Fatalf("failed to parse JSON output: %v", err)
		}

		if record["msg"] != "compiled" {
			t.Errorf("expected msg %q, got %v", "compiled", record["msg"])
		}

		if record["purpose"] != "bind" {
			t.Errorf("expected purpose %q, got %v", "bind", record["purpose"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatText), WithPretty(false)).
			Info("compiled", slog.String("purpose", "bind"))

		if !strings.Contains(buf.String(), "purpose=bind") {
			t.Errorf("expected purpose=bind in %q", buf.String())
		}
	})
}

func TestLogger_TraceLevelName(t *testing.T) {
	tests := []struct {
		name   string
		pretty bool
		format Format
		want   string
	}{
		{"plain json", false, FormatJSON, `"level":"TRACE"`},
		{"plain text", false, FormatText, "level=TRACE"},
		{"pretty text", true, FormatText, "trace"},
		{"pretty json", true, FormatJSON, "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			logger := Make(&buf,
				WithLevel(LevelTrace),
				WithFormat(tt.format),
				WithPretty(tt.pretty))
			logger.Trace("cache lookup")

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %q in output, got: %s", tt.want, buf.String())
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in output, got: %s", buf.String())
	}

	buf.Reset()
	Make(&buf, WithCaller(false), WithPretty(false)).Info("here")

	if strings.Contains(buf.String(), "source") {
		t.Errorf("expected no source in output, got: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false)).With(slog.String("id", "greeting"))
	logger.Info("render")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if record["id"] != "greeting" {
		t.Errorf("expected id %q, got %v", "greeting", record["id"])
	}
}

func TestLogger_Pretty_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithFormat(FormatText), WithTimeLayout("none"))
	logger = logger.With(slog.String("component", "cache"))
	logger.Logger = logger.WithGroup("entry")
	logger.Info("stored", slog.String("purpose", "range"))

	out := buf.String()
	for _, want := range []string{"component", "cache", "entry.purpose", "range"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output, got: %s", want, out)
		}
	}
}

func TestLogger_Wrap_KeepsBaseConfig(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithFormat(FormatText), WithPretty(false))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if wrapped.Format() != FormatText {
		t.Errorf("expected format %v, got %v", FormatText, wrapped.Format())
	}

	if wrapped.Level() != LevelDebug {
		t.Errorf("expected level %v, got %v", LevelDebug, wrapped.Level())
	}

	if base.Level() != DefaultLevel {
		t.Errorf("expected base level unchanged, got %v", base.Level())
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("ignored")
	l.Info("ignored")
	l.Error("ignored")

	if l.With(slog.String("k", "v")).Logger != nil {
		t.Error("expected zero value With to stay zero")
	}

	if l.Level() != DefaultLevel {
		t.Errorf("expected %v, got %v", DefaultLevel, l.Level())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(false))

	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() { logger.Info("concurrent", slog.Int("id", i)) })
	}

	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 100 {
		t.Errorf("expected 100 log lines, got %d", len(lines))
	}
}

func TestLogger_NoTimestamp(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithTimeLayout("none"), WithPretty(false)).Info("test")

	if strings.Contains(buf.String(), `"time"`) {
		t.Errorf("expected no time field, got: %s", buf.String())
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	logger := Make(new(bytes.Buffer), WithPretty(false))

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark", slog.Int("iteration", i))
	}
}

func BenchmarkLogger_Info_Pretty(b *testing.B) {
	logger := Make(new(bytes.Buffer), WithFormat(FormatText))

	for i := 0; b.Loop(); i++ {
		logger.Info("benchmark", slog.Int("iteration", i))
	}
}

func BenchmarkLogger_Trace_Filtered(b *testing.B) {
	logger := Make(new(bytes.Buffer))

	for b.Loop() {
		logger.Trace("filtered")
	}
}
