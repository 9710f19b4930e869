package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Event is anything published on the bus. Payload must be safe to log: auth events
// never carry credentials.
type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus fans events out to in-process subscribers. Publish runs handlers in the
// background and Drain waits for them, so shutdown does not drop audit records.
type EventBus struct {
	mu       sync.RWMutex
	subs     map[string][]Handler
	inflight sync.WaitGroup
	log      *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{
		subs: make(map[string][]Handler),
		log:  logger.With("component", "events"),
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.subs[eventType] = append(eb.subs[eventType], handler)
	n := len(eb.subs[eventType])
	eb.mu.Unlock()

	eb.log.Debug("subscribed", "event_type", eventType, "subscribers", n)
}

// subscribers returns a snapshot, so Subscribe may run while an event is delivered.
func (eb *EventBus) subscribers(event Event) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return append([]Handler(nil), eb.subs[event.EventType()]...)
}

// deliver runs one handler and turns a panic into an error.
func (eb *EventBus) deliver(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}

func (eb *EventBus) logFailure(event Event, err error) {
	eb.log.Error("event handler failed",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"error", err)
}

// Publish hands the event to every subscriber without waiting. Handler errors are
// logged and never reach the publisher.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	subs := eb.subscribers(event)
	if len(subs) == 0 {
		return nil
	}

	// the request that published the event may finish first
	ctx = context.WithoutCancel(ctx)
	eb.inflight.Add(len(subs))
	for _, h := range subs {
		go func(h Handler) {
			defer eb.inflight.Done()
			if err := eb.deliver(ctx, h, event); err != nil {
				eb.logFailure(event, err)
			}
		}(h)
	}
	return nil
}

// PublishSync runs subscribers in registration order and stops at the first error.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range eb.subscribers(event) {
		if err := eb.deliver(ctx, h, event); err != nil {
			eb.logFailure(event, err)
			return fmt.Errorf("handler failed for event %s: %w", event.EventType(), err)
		}
	}
	return nil
}

// Drain blocks until handlers started by Publish return or ctx is done.
func (eb *EventBus) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		eb.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain events: %w", ctx.Err())
	}
}
