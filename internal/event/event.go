package event

import (
	"context"
	"fmt"
	"sync"
)

// Type represents the type of an event
type Type string

// Event represents a generic event in the system
type Event struct {
	Version  string                 `json:"version"`
	Type     Type                   `json:"type"`
	Payload  interface{}            `json:"payload"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// SessionID returns the session the event belongs to, or ""
func (e Event) SessionID() string {
	id, _ := e.GetMetadataValue(MetadataSessionID).(string)
	return id
}

// NewSessionEvent wraps an engine notification for the bus
func NewSessionEvent(sessionID, eventType string, payload interface{}) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    Type(eventType),
		Payload: payload,
		Metadata: map[string]interface{}{
			MetadataSessionID: sessionID,
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// SubscribeAll registers handler for each of the given event types
func SubscribeAll(bus Bus, eventTypes []string, handler Handler) {
	for _, t := range eventTypes {
		bus.Subscribe(Type(t), handler)
	}
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every handler for the event type synchronously, in
// subscription order. All handlers run even if one fails.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	return runHandlers(ctx, event, handlers)
}

// PublishError lists the handlers that failed for one event. Handlers that
// succeeded are not in Failed, so a retry can rerun only the rest.
type PublishError struct {
	Type   Type
	Failed []Handler
	Errs   []error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf(LogMsgHandlerErrorFormat, len(e.Errs), e.Type, e.Errs)
}

func (e *PublishError) Unwrap() []error {
	return e.Errs
}

func runHandlers(ctx context.Context, event Event, handlers []Handler) error {
	var failed []Handler
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			failed = append(failed, handler)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &PublishError{Type: event.Type, Failed: failed, Errs: errs}
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
