// Package log は slog ロガーの生成と共通フィールド名をまとめます。
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format is the handler output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// 共通フィールド名
const (
	FileKey      = "file"
	LangKey      = "lang"
	DurationKey  = "duration_ms"
	RequestIDKey = "request_id"
)

// Config holds the logging configuration.
type Config struct {
	// Level: debug, info, warn, error。既定は warn（CLI 出力を汚さないため）
	Level     string
	Format    Format
	Output    io.Writer
	AddSource bool
}

// DefaultConfig は stderr へのテキスト出力です。
func DefaultConfig() *Config {
	return &Config{
		Level:  "warn",
		Format: FormatText,
		Output: os.Stderr,
	}
}

// FromEnv は環境変数から Config を組み立てます。
//   - SIGLOC_DEBUG: true/1 で debug レベルとソース位置を有効化（最優先）
//   - SIGLOC_LOG_LEVEL: LOG_LEVEL より優先
//   - LOG_LEVEL, LOG_FORMAT (json|text), LOG_SOURCE=1
func FromEnv() *Config {
	cfg := DefaultConfig()

	debug := os.Getenv("SIGLOC_DEBUG")
	if debug == "true" || debug == "1" {
		cfg.Level = "debug"
		cfg.AddSource = true
	}
	if debug == "" {
		if level := os.Getenv("SIGLOC_LOG_LEVEL"); level != "" {
			cfg.Level = strings.ToLower(level)
		} else if level := os.Getenv("LOG_LEVEL"); level != "" {
			cfg.Level = strings.ToLower(level)
		}
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = Format(strings.ToLower(format))
	}
	if os.Getenv("LOG_SOURCE") == "1" {
		cfg.AddSource = true
	}
	return cfg
}

// New creates a logger from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}
	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Discard は何も出力しないロガーです。テストやライブラリ利用時の既定値に使います。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a level name. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type ctxKey struct{}

// WithRequestID returns a logger tagged with request_id.
func WithRequestID(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(RequestIDKey, requestID)
}

// NewContext はロガーを ctx に格納します。
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext は ctx のロガーを返します。無ければ fallback、それも nil なら Discard です。
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return Discard()
}
