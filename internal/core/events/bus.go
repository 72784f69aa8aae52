// Package events is the in-process pub/sub used to fan out settlement
// notifications to listeners such as the dashboard cache.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() any
}

// BaseEvent is the concrete event shape every publisher in this codebase
// uses. Payload data stays a map so subscribers stay decoupled from the
// publisher's types.
type BaseEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() any          { return e.Data }

type Handler func(ctx context.Context, event Event) error

type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (b *EventBus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *EventBus) subscribers(eventType string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.handlers[eventType]
}

// Publish dispatches the event to every subscriber on its own goroutine.
// Handler errors are logged and dropped; settlement itself never waits on
// a listener.
func (b *EventBus) Publish(ctx context.Context, event Event) error {
	for _, handler := range b.subscribers(event.EventType()) {
		go b.dispatch(ctx, event, handler)
	}
	return nil
}

// PublishSync runs subscribers inline and stops at the first failure.
func (b *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, handler := range b.subscribers(event.EventType()) {
		if err := handler(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
			return fmt.Errorf("handle %s: %w", event.EventType(), err)
		}
	}
	return nil
}

func (b *EventBus) dispatch(ctx context.Context, event Event, handler Handler) {
	if err := handler(ctx, event); err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"error", err)
	}
}
