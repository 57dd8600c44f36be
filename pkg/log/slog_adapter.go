package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	// Add type-specific attributes
	switch {
	case event.HTTP != nil:
		attrs = append(attrs,
			slog.String("method", event.HTTP.Method),
			slog.String("url", event.HTTP.URL),
		)
		if event.HTTP.Status != 0 {
			attrs = append(attrs, slog.Int("status", event.HTTP.Status))
		}
		if event.HTTP.BodySize != 0 {
			attrs = append(attrs, slog.Int("body_size", event.HTTP.BodySize))
		}
	case event.Action != nil:
		attrs = append(attrs,
			slog.String("service", event.Action.Service),
			slog.String("action", event.Action.Action),
			slog.Int("arguments", event.Action.Arguments),
		)
		if event.Action.Elapsed != 0 {
			attrs = append(attrs, slog.Duration("elapsed", event.Action.Elapsed))
		}
	case event.Monitor != nil:
		if event.Monitor.Line != "" {
			attrs = append(attrs, slog.String("line", event.Monitor.Line))
		}
		if event.Monitor.Dropped {
			attrs = append(attrs, slog.Bool("dropped", true))
		}
		if event.Monitor.Attempt != 0 {
			attrs = append(attrs, slog.Int("attempt", event.Monitor.Attempt))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Code != 0 {
			attrs = append(attrs, slog.Int("error_code", event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
