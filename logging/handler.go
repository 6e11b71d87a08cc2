package logging

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// splitHandler sends records below WARN to low and the rest to high. Both
// share one level so the logger is tuned from a single place.
type splitHandler struct {
	low   slog.Handler
	high  slog.Handler
	level slog.Leveler
}

func (h *splitHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level < slog.LevelWarn {
		return h.low.Handle(ctx, r)
	}
	return h.high.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{low: h.low.WithAttrs(attrs), high: h.high.WithAttrs(attrs), level: h.level}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{low: h.low.WithGroup(name), high: h.high.WithGroup(name), level: h.level}
}

func newFormatHandler(format Format, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatMessage:
		return &messageHandler{w: w, mu: &sync.Mutex{}}
	default:
		return slog.NewTextHandler(w, opts)
	}
}

// messageHandler writes only the record message.
type messageHandler struct {
	w  io.Writer
	mu *sync.Mutex
}

func (h *messageHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *messageHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, r.Message+"\n")
	return err
}

func (h *messageHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *messageHandler) WithGroup(string) slog.Handler { return h }
