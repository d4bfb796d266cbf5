package logger_i

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/config"
)

// Logger resolves the default slog logger on every call, so loggers created
// at package init pick up the handler installed later by Init.
type Logger struct {
	attrs []any
}

// Init installs the process wide handler. level is one of debug, info, warn,
// error; anything else keeps the build default.
func Init(level string) {
	options := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	if lvl, ok := parseLevel(level); ok {
		options.Level = lvl
	}

	var handler slog.Handler
	if config.IS_PROD {
		if _, ok := parseLevel(level); !ok {
			options.Level = config.LOG_LEVEL_PROD
		}
		handler = slog.NewJSONHandler(os.Stdout, options)

	} else {
		handler = slog.NewTextHandler(os.Stdout, options)

	}
	newLogger := slog.New(handler)
	slog.SetDefault(newLogger)
}

// InitStderr is used by the mcp stdio mode, where stdout belongs to the protocol.
func InitStderr(level string) {
	options := &slog.HandlerOptions{Level: slog.LevelInfo, AddSource: true}
	if lvl, ok := parseLevel(level); ok {
		options.Level = lvl
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, options)))
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func NewLogger(section string) *Logger {
	return &Logger{
		attrs: []any{"component", section},
	}
}

func (l *Logger) inner() *slog.Logger {
	return slog.Default().With(l.attrs...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.logWithSource(slog.LevelInfo, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logWithSource(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logWithSource(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logWithSource(slog.LevelDebug, msg, args...)
}

func (l *Logger) logWithSource(level slog.Level, msg string, args ...any) {
	inner := l.inner()
	if !inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	// skip runtime.Callers, logWithSource and the level wrapper so the
	// record points at the caller
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = inner.Handler().Handle(context.Background(), r)
}

func (l *Logger) With(args ...any) *Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	return &Logger{
		attrs: append(attrs, args...),
	}
}

// WithTrace attaches the request trace id when the context carries one.
func (l *Logger) WithTrace(ctx context.Context) *Logger {
	if id := TraceID(ctx); id != "" {
		return l.With(config.TRACE_ID_KEY, id)
	}
	return l
}

func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(config.TRACE_ID_KEY).(string)
	return id
}
