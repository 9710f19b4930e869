package events

import (
	"context"
	"log/slog"
)

// RegisterAuditLog subscribes a handler that writes every auth event to the audit logger.
func RegisterAuditLog(bus *EventBus, logger *slog.Logger) {
	audit := logger.With("component", "audit")
	handler := func(ctx context.Context, event Event) error {
		audit.InfoContext(ctx, "audit event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"data", event.Payload())
		return nil
	}

	for _, eventType := range []string{EventTypeUserRegistered, EventTypeLoginSucceeded, EventTypeLoginFailed} {
		bus.Subscribe(eventType, handler)
	}
}
