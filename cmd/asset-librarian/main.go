// Package main is the entry point for the asset-librarian CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/asset-librarian/cmd/asset-librarian/app"
	"github.com/stacklok/asset-librarian/internal/config"
)

// logLevelFromEnv reads ASSET_LIBRARIAN_LOG_LEVEL, then LOG_LEVEL.
// Unknown values fall back to info.
func logLevelFromEnv() slog.Level {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	raw := v.GetString("log_level")
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	if strings.EqualFold(raw, "warning") {
		raw = "warn"
	}

	level := slog.LevelInfo
	if raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			slog.Warn("Invalid log level, using info", "value", raw)
			return slog.LevelInfo
		}
	}
	return level
}

// spanContextHandler adds trace_id and span_id to records logged inside a span,
// so partition logs can be joined with their traces
type spanContextHandler struct {
	slog.Handler
}

func (h spanContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h spanContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return spanContextHandler{h.Handler.WithAttrs(attrs)}
}

func (h spanContextHandler) WithGroup(name string) slog.Handler {
	return spanContextHandler{h.Handler.WithGroup(name)}
}

func main() {
	// stdout carries tables and JSON, so logs go to stderr
	app.LogLevel.Set(logLevelFromEnv())
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: app.LogLevel})
	slog.SetDefault(slog.New(spanContextHandler{handler}).With("service", "asset-librarian"))

	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
