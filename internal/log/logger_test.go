package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("SIGLOC_DEBUG", "")
		t.Setenv("SIGLOC_LOG_LEVEL", "")
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("LOG_SOURCE", "")
		cfg := FromEnv()
		if cfg.Level != "warn" || cfg.Format != FormatText || cfg.AddSource {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
	})
	t.Run("debug wins", func(t *testing.T) {
		t.Setenv("SIGLOC_DEBUG", "1")
		t.Setenv("SIGLOC_LOG_LEVEL", "error")
		cfg := FromEnv()
		if cfg.Level != "debug" || !cfg.AddSource {
			t.Fatalf("SIGLOC_DEBUG should force debug: %+v", cfg)
		}
	})
	t.Run("prefixed level over generic", func(t *testing.T) {
		t.Setenv("SIGLOC_DEBUG", "")
		t.Setenv("SIGLOC_LOG_LEVEL", "ERROR")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "JSON")
		cfg := FromEnv()
		if cfg.Level != "error" || cfg.Format != FormatJSON {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatJSON, Output: &buf})
	logger.Debug("hidden")
	WithRequestID(logger, "abc").Info("hello", FileKey, "a.go")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "hello" || rec[RequestIDKey] != "abc" || rec[FileKey] != "a.go" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q)=%v want %v", in, got, want)
		}
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: "info", Format: FormatText, Output: &buf})
	ctx := NewContext(context.Background(), logger)
	FromContext(ctx, nil).Info("ping")
	if !strings.Contains(buf.String(), "msg=ping") {
		t.Fatalf("logger not carried by context: %q", buf.String())
	}
	if FromContext(context.Background(), nil) == nil {
		t.Fatal("FromContext must never return nil")
	}
}
