package logger

import (
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init installs the process logger. Production gets JSON at info; everything
// else gets text at debug unless a level is given.
func Init(env string, opts ...Option) {
	o := options{format: "text", level: slog.LevelDebug}
	if env == "production" {
		o.format = "json"
		o.level = slog.LevelInfo
	}
	for _, opt := range opts {
		opt(&o)
	}

	var handler slog.Handler
	if o.format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: o.level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: o.level})
	}

	defaultLogger = slog.New(NewContextHandler(handler))
	slog.SetDefault(defaultLogger)
}

type options struct {
	format string
	level  slog.Level
}

type Option func(*options)

func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

func WithLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "debug":
			o.level = slog.LevelDebug
		case "info":
			o.level = slog.LevelInfo
		case "warn":
			o.level = slog.LevelWarn
		case "error":
			o.level = slog.LevelError
		}
	}
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		Init("development")
	}
	return defaultLogger
}
