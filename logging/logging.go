// Package logging sets up console loggers that write debug and info records to
// one stream and warnings and errors to another.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Format selects how records are rendered.
type Format string

const (
	// FormatText renders records with slog.TextHandler.
	FormatText Format = "text"
	// FormatJSON renders records with slog.JSONHandler.
	FormatJSON Format = "json"
	// FormatMessage renders the bare message, one per line.
	FormatMessage Format = "message"
)

// Option configures Setup.
type Option func(*config)

type config struct {
	format Format
	low    io.Writer
	high   io.Writer
	level  slog.Level
}

// WithFormat selects the record format. The default is FormatText.
func WithFormat(format Format) Option {
	return func(cfg *config) {
		cfg.format = format
	}
}

// WithLowLevelWriter sets the destination of records below WARN. The default
// is os.Stdout.
func WithLowLevelWriter(w io.Writer) Option {
	return func(cfg *config) {
		if w != nil {
			cfg.low = w
		}
	}
}

// WithHighLevelWriter sets the destination of WARN records and above. The
// default is os.Stderr.
func WithHighLevelWriter(w io.Writer) Option {
	return func(cfg *config) {
		if w != nil {
			cfg.high = w
		}
	}
}

// WithLevel sets the initial level. The default is WARN.
func WithLevel(level slog.Level) Option {
	return func(cfg *config) {
		cfg.level = level
	}
}

// Logger is a slog.Logger whose level can be changed after construction.
type Logger struct {
	*slog.Logger
	name  string
	level *slog.LevelVar
}

// Setup returns a logger named name that splits records between the low and
// high level writers.
func Setup(name string, opts ...Option) *Logger {
	cfg := config{
		format: FormatText,
		low:    os.Stdout,
		high:   os.Stderr,
		level:  slog.LevelWarn,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	level := new(slog.LevelVar)
	level.Set(cfg.level)

	low := newFormatHandler(cfg.format, cfg.low)
	high := newFormatHandler(cfg.format, cfg.high)
	if cfg.format != FormatMessage && name != "" {
		low = low.WithAttrs([]slog.Attr{slog.String("logger", name)})
		high = high.WithAttrs([]slog.Attr{slog.String("logger", name)})
	}

	return &Logger{
		Logger: slog.New(&splitHandler{low: low, high: high, level: level}),
		name:   name,
		level:  level,
	}
}

// Name returns the name given to Setup.
func (l *Logger) Name() string {
	return l.name
}

// Level reports the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// SetLevel changes the minimum level of every record.
func (l *Logger) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// SetVerbosity maps a -v count to a level: 0 is ERROR, 1 WARN, 2 INFO and 3
// or more DEBUG.
func (l *Logger) SetVerbosity(verbosity int) {
	l.level.Set(VerbosityLevel(verbosity))
}

// VerbosityLevel maps a -v count to a level.
func VerbosityLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelError
	case verbosity == 1:
		return slog.LevelWarn
	case verbosity == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
