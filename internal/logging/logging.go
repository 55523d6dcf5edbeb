// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// Setup installs a JSON logger on stdout as the slog default.
// The level comes from LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults to INFO.
func Setup() {
	slog.SetDefault(New(os.Stdout, os.Getenv("LOG_LEVEL")))
}

// New returns a JSON logger writing to w at the named level.
// Records at ERROR or above carry a stacktrace attribute.
func New(w io.Writer, level string) *slog.Logger {
	json := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     ParseLevel(level),
		AddSource: true,
	})
	return slog.New(&stackHandler{Handler: json})
}

// ParseLevel maps a level name to a slog.Level, falling back to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fatal records msg as an error, stack included, and terminates the process.
func Fatal(msg string, args ...any) {
	slog.Default().Error(msg, args...)
	os.Exit(1)
}

// stackDepth caps the goroutine dump attached to error records.
const stackDepth = 4096

// stackHandler decorates the JSON handler so that error records carry the
// calling goroutine's stack under the "stacktrace" key.
type stackHandler struct {
	slog.Handler
}

func (s *stackHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level < slog.LevelError {
		return s.Handler.Handle(ctx, rec)
	}
	buf := make([]byte, stackDepth)
	buf = buf[:runtime.Stack(buf, false)]
	rec.AddAttrs(slog.String("stacktrace", string(buf)))
	return s.Handler.Handle(ctx, rec)
}

// WithAttrs keeps the stack decoration on derived loggers.
func (s *stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackHandler{Handler: s.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the stack decoration on grouped loggers.
func (s *stackHandler) WithGroup(name string) slog.Handler {
	return &stackHandler{Handler: s.Handler.WithGroup(name)}
}
