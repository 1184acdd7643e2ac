package consumers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"venuehub/internal/models"
	"venuehub/internal/notify"

	"github.com/stretchr/testify/assert"
)

type eventFunc func(ctx context.Context, subject string, payload []byte) error

func (f eventFunc) Handle(ctx context.Context, subject string, payload []byte) error {
	return f(ctx, subject, payload)
}

func TestHandlerForRoutesSubject(t *testing.T) {
	var got string
	h := NewHandlers(eventFunc(func(_ context.Context, subject string, _ []byte) error {
		got = subject
		return nil
	}))

	err := h.For(models.EventPaymentSucceeded)(context.Background(), []byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, models.EventPaymentSucceeded, got)
}

func TestHandlerForAcksMalformedEvents(t *testing.T) {
	h := NewHandlers(eventFunc(func(context.Context, string, []byte) error {
		return fmt.Errorf("%w: bad json", notify.ErrMalformedEvent)
	}))

	assert.NoError(t, h.For(models.EventBookingCreated)(context.Background(), []byte("{")))
}

func TestHandlerForReturnsDeliveryFailures(t *testing.T) {
	storeDown := errors.New("store down")
	h := NewHandlers(eventFunc(func(context.Context, string, []byte) error {
		return storeDown
	}))

	err := h.For(models.EventBookingCreated)(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, storeDown)
}
