package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler writes each record to the primary stream and to a mirror, usually
// the JSON log file named by logging.file. Each side applies its own level.
type teeHandler struct {
	primary slog.Handler
	mirror  slog.Handler
}

// newTeeHandler returns primary alone when there is no mirror.
func newTeeHandler(primary, mirror slog.Handler) slog.Handler {
	switch {
	case primary == nil && mirror == nil:
		return NoopHandler{}
	case mirror == nil:
		return primary
	case primary == nil:
		return mirror
	}
	return &teeHandler{primary: primary, mirror: mirror}
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.primary.Enabled(ctx, level) || h.mirror.Enabled(ctx, level)
}

// Handle always tries both sides; a failing log file does not silence the
// primary stream.
func (h *teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var primaryErr, copyErr error
	if h.mirror.Enabled(ctx, record.Level) {
		copyErr = h.mirror.Handle(ctx, record.Clone())
	}
	if h.primary.Enabled(ctx, record.Level) {
		primaryErr = h.primary.Handle(ctx, record)
	}
	return errors.Join(primaryErr, copyErr)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{primary: h.primary.WithAttrs(attrs), mirror: h.mirror.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{primary: h.primary.WithGroup(name), mirror: h.mirror.WithGroup(name)}
}
