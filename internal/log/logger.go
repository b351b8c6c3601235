// Package log builds the process loggers and carries the request id through
// contexts so backend calls can be correlated with the page that caused them.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"redesperanza/web/internal/config"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

type Options struct {
	Environment string
	// Level overrides the environment default (debug, or info in production).
	Level string
	// Format defaults to console output, or JSON lines in production.
	Format string
	App    string
	Out    io.Writer
}

func New(opts Options) (zerolog.Logger, error) {
	production := opts.Environment == "production"

	level := zerolog.DebugLevel
	if production {
		level = zerolog.InfoLevel
	}
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	format := opts.Format
	if format == "" {
		format = FormatConsole
		if production {
			format = FormatJSON
		}
	}

	var w io.Writer
	switch format {
	case FormatJSON:
		w = out
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: production}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	fields := zerolog.New(w).Level(level).With().Timestamp().Str("env", opts.Environment)
	if opts.App != "" {
		fields = fields.Str("app", opts.App)
	}
	return fields.Logger(), nil
}

// FromConfig builds the logger for one of the binaries.
func FromConfig(cfg *config.AppConfig, app string) (zerolog.Logger, error) {
	return New(Options{
		Environment: cfg.Environment,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		App:         app,
	})
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
