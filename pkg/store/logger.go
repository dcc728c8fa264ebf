package store

import (
	"context"
	"log/slog"
	"time"
)

// Log operations reported through Logger.
const (
	OpSet        = "set"
	OpDelete     = "delete"
	OpFlush      = "flush"
	OpPanic      = "panic"
	OpStrictness = "strictness"
	OpDestroy    = "destroy"
)

// LogEvent describes something the store did.
type LogEvent struct {
	StoreID  string
	Op       string
	Pointers []string
	Deferred bool
	Duration time.Duration
	Err      error
}

// Logger records store events.
type Logger interface {
	LogStore(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// LogStore implements Logger.
func (f LoggerFunc) LogStore(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogStore(LogEvent) {}

type slogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger reports store events through logger, or slog.Default when
// logger is nil. Failures log at error level, recovered panics and unknown
// strictness tags at warn level, everything else at debug level.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

func (l slogLogger) LogStore(event LogEvent) {
	level := slog.LevelDebug
	switch {
	case event.Err != nil && (event.Op == OpPanic || event.Op == OpStrictness):
		level = slog.LevelWarn
	case event.Err != nil:
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("store_id", event.StoreID),
		slog.String("op", event.Op),
	}
	if len(event.Pointers) > 0 {
		attrs = append(attrs, slog.Any("pointers", event.Pointers))
	}
	if event.Deferred {
		attrs = append(attrs, slog.Bool("deferred", true))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "ptrstore", attrs...)
}
