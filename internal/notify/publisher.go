package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"venuehub/internal/logger"
)

// InlinePublisher delivers events to a Dispatcher in-process. Each event is
// handled on its own goroutine so callers never wait on delivery.
type InlinePublisher struct {
	dispatcher *Dispatcher
	timeout    time.Duration
	wg         sync.WaitGroup
}

func NewInlinePublisher(dispatcher *Dispatcher, timeout time.Duration) *InlinePublisher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &InlinePublisher{dispatcher: dispatcher, timeout: timeout}
}

func (p *InlinePublisher) Publish(ctx context.Context, subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	// Detach from the request so delivery outlives the response.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.dispatcher.Handle(dctx, subject, payload); err != nil {
			logger.WithContext(dctx).Error("Event delivery failed", "subject", subject, "error", err)
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (p *InlinePublisher) Wait() {
	p.wg.Wait()
}

func (p *InlinePublisher) Close() error {
	p.Wait()
	return nil
}
