package consumers

import (
	"context"
	"errors"
	"log/slog"

	"venuehub/internal/notify"
)

// EventHandler delivers one decoded domain event
type EventHandler interface {
	Handle(ctx context.Context, subject string, payload []byte) error
}

type Handlers struct {
	events EventHandler
}

func NewHandlers(events EventHandler) *Handlers {
	return &Handlers{events: events}
}

// For returns the message handler for subject. Malformed payloads are
// acknowledged and dropped; any other failure leaves the message for
// redelivery.
func (h *Handlers) For(subject string) func(ctx context.Context, data []byte) error {
	return func(ctx context.Context, data []byte) error {
		err := h.events.Handle(ctx, subject, data)
		if errors.Is(err, notify.ErrMalformedEvent) {
			slog.Error("Dropping malformed event", "subject", subject, "error", err)
			return nil
		}
		return err
	}
}
