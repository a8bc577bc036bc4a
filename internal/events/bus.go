package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Handler func(ctx context.Context, e Envelope)

// Bus delivers events synchronously, in-process, to the handlers subscribed at
// publish time. At-least-once to current subscribers; a panicking handler is
// contained and must not take down the publisher or the remaining handlers.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *Bus) Publish(ctx context.Context, eventType string, payload any) {
	b.mu.RLock()
	subscribed := make([]Handler, len(b.handlers[eventType]))
	copy(subscribed, b.handlers[eventType])
	b.mu.RUnlock()

	e := Envelope{
		EventID:    uuid.New(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}

	for _, h := range subscribed {
		b.deliver(ctx, h, e)
	}
}

func (b *Bus) deliver(ctx context.Context, h Handler, e Envelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event_type", e.EventType, "event_id", e.EventID, "panic", r)
		}
	}()
	h(ctx, e)
}
