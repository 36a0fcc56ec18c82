package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"greader/internal/config"
)

// New создает логгер greader по конфигурации.
// Обычные записи пишутся в cfg.File, записи ERROR и выше - в cfg.ErrorFile;
// пустой путь означает stderr. Возвращаемая функция закрывает открытые файлы.
func New(cfg config.LoggerConfig) (*slog.Logger, func() error, error) {
	defaultOut, closeDefault, err := openOutput(cfg.File)
	if err != nil {
		return nil, nil, err
	}
	errorOut, closeError, err := openOutput(cfg.ErrorFile)
	if err != nil {
		closeDefault()
		return nil, nil, err
	}
	handler := NewLevelDispatcherHandler(defaultOut, errorOut, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(cfg.Level),
	})
	closeAll := func() error {
		return firstErr(closeDefault(), closeError())
	}
	return slog.New(handler), closeAll, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, f.Close, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// parseLogLevel преобразует строковое представление уровня в slog.Level.
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelDispatcherHandler направляет записи ERROR и выше в отдельный обработчик.
type LevelDispatcherHandler struct {
	defaultHandler slog.Handler
	errorHandler   slog.Handler
}

// NewLevelDispatcherHandler создает обработчик с маршрутизацией по уровням.
// Если оба писателя совпадают, записи пишутся через общий мьютекс.
func NewLevelDispatcherHandler(defaultOut, errorOut io.Writer, opts *slog.HandlerOptions) *LevelDispatcherHandler {
	mu := &sync.Mutex{}
	return &LevelDispatcherHandler{
		defaultHandler: newReadableHandler(defaultOut, opts, mu),
		errorHandler:   newReadableHandler(errorOut, opts, mu),
	}
}

func (h *LevelDispatcherHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}

func (h *LevelDispatcherHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errorHandler.Handle(ctx, r)
	}
	return h.defaultHandler.Handle(ctx, r)
}

func (h *LevelDispatcherHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
		errorHandler:   h.errorHandler.WithAttrs(attrs),
	}
}

func (h *LevelDispatcherHandler) WithGroup(name string) slog.Handler {
	return &LevelDispatcherHandler{
		defaultHandler: h.defaultHandler.WithGroup(name),
		errorHandler:   h.errorHandler.WithGroup(name),
	}
}

// ReadableHandler форматирует записи в виде
// "[15:04:05.000] LEVEL [component] (op) <file:line>: message | key=value, ...".
type ReadableHandler struct {
	w     io.Writer
	opts  *slog.HandlerOptions
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

// NewReadableHandler создает обработчик с читаемым форматированием.
// Если opts равен nil, используются настройки по умолчанию.
func NewReadableHandler(w io.Writer, opts *slog.HandlerOptions) *ReadableHandler {
	return newReadableHandler(w, opts, &sync.Mutex{})
}

func newReadableHandler(w io.Writer, opts *slog.HandlerOptions, mu *sync.Mutex) *ReadableHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ReadableHandler{w: w, opts: opts, mu: mu}
}

func (h *ReadableHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *ReadableHandler) Handle(_ context.Context, r slog.Record) error {
	var component, operation string
	var parts []string
	collect := func(a slog.Attr) {
		switch a.Key {
		case "component":
			component = a.Value.String()
		case "op":
			operation = a.Value.String()
		default:
			parts = append(parts, h.formatAttr(a))
		}
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		collect(a)
		return true
	})

	var prefix strings.Builder
	fmt.Fprintf(&prefix, "[%s] %s", r.Time.Format("15:04:05.000"), formatLevel(r.Level))
	if component != "" {
		fmt.Fprintf(&prefix, " [%s]", component)
	}
	if operation != "" {
		fmt.Fprintf(&prefix, " (%s)", operation)
	}
	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&prefix, " <%s:%d>", filepath.Base(src.File), src.Line)
		}
	}
	message := r.Message
	if len(parts) > 0 {
		message += " | " + strings.Join(parts, ", ")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.w, "%s: %s\n", prefix.String(), message)
	return err
}

func formatLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// formatAttr форматирует атрибут; ошибки берутся в кавычки, длинные URL сокращаются.
func (h *ReadableHandler) formatAttr(attr slog.Attr) string {
	switch attr.Key {
	case "error":
		return fmt.Sprintf("error=%q", attr.Value.String())
	case "url":
		return fmt.Sprintf("url=%s", shortenURL(attr.Value.String()))
	default:
		return fmt.Sprintf("%s=%s", attr.Key, attr.Value.String())
	}
}

// shortenURL оставляет от URL длиннее 80 символов только схему и хост.
func shortenURL(url string) string {
	if len(url) > 80 {
		parts := strings.Split(url, "/")
		if len(parts) >= 3 {
			return fmt.Sprintf("%s//%s/...", parts[0], parts[2])
		}
	}
	return url
}

func (h *ReadableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *ReadableHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}
