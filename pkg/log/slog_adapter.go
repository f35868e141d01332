package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes power events to an slog.Logger.
// Useful for development when you want to see power events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("component", event.Component.String()),
		slog.String("category", event.Category.String()),
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}

	switch {
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState.String()),
			slog.String("new_state", event.StateChange.NewState.String()),
			slog.String("reason", event.StateChange.Reason.String()),
		)
	case event.Desync != nil:
		attrs = append(attrs,
			slog.String("believed", event.Desync.Believed.String()),
			slog.String("corrected", event.Desync.Corrected.String()),
			slog.String("display", event.Desync.Display.String()),
		)
	case event.TransitFailure != nil:
		attrs = append(attrs,
			slog.String("from", event.TransitFailure.From.String()),
			slog.String("to", event.TransitFailure.To.String()),
			slog.String("reason", event.TransitFailure.Reason.String()),
			slog.String("result", event.TransitFailure.Result.String()),
		)
		if event.TransitFailure.Message != "" {
			attrs = append(attrs, slog.String("detail", event.TransitFailure.Message))
		}
	case event.Lock != nil:
		attrs = append(attrs,
			slog.String("op", event.Lock.Op.String()),
			slog.Uint64("lock_id", event.Lock.LockID),
			slog.String("type", event.Lock.Type.String()),
			slog.String("name", event.Lock.Name),
			slog.Int("pid", int(event.Lock.Pid)),
			slog.Int("uid", int(event.Lock.Uid)),
		)
		if event.Lock.BundleName != "" {
			attrs = append(attrs, slog.String("bundle", event.Lock.BundleName))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_component", event.Error.Component.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "power", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
