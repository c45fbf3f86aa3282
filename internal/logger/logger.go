// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/vocalis/internal/env"
)

const (
	defaultLogFile    = "logs/vocalis.log"
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 5
	defaultMaxAgeDays = 14
)

type options struct {
	level     slog.Level
	logToFile bool
	logFile   string
	output    io.Writer
}

// Option configures the logger.
type Option func(*options)

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) { o.level = level }
}

// WithLogToFile enables the rotating JSON log file.
func WithLogToFile(enabled bool) Option {
	return func(o *options) { o.logToFile = enabled }
}

// WithLogFile sets the rotating log file path.
func WithLogFile(path string) Option {
	return func(o *options) {
		if path != "" {
			o.logFile = path
		}
	}
}

// WithOutput replaces stderr as the console destination.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// New creates a logger for the given environment.
// Development logs are colorized by tint, production logs are JSON.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := &options{
		level:   slog.LevelInfo,
		logFile: defaultLogFile,
		output:  os.Stderr,
	}
	for _, opt := range opts {
		opt(o)
	}

	var console slog.Handler
	if environment.IsProduction() {
		console = slog.NewJSONHandler(o.output, &slog.HandlerOptions{Level: o.level})
	} else {
		console = tint.NewHandler(o.output, &tint.Options{
			Level:      o.level,
			TimeFormat: time.Kitchen,
		})
	}

	if !o.logToFile {
		return slog.New(console)
	}

	if err := os.MkdirAll(filepath.Dir(o.logFile), 0o755); err != nil {
		slog.New(console).Warn("Failed to create log directory, file logging disabled", "path", o.logFile, "error", err)
		return slog.New(console)
	}

	file := slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   o.logFile,
		MaxSize:    defaultMaxSizeMB,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAgeDays,
		Compress:   true,
	}, &slog.HandlerOptions{Level: o.level})

	return slog.New(&fanout{handlers: []slog.Handler{console, file}})
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
