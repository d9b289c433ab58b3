package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/reelfaucet/internal/domain"
	"github.com/osse101/reelfaucet/internal/event"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{hub: hub, bus: bus}
}

// Subscribe forwards every engine event type to the owning session's streams
func (s *Subscriber) Subscribe() {
	event.SubscribeAll(s.bus, domain.AllSlotsEventTypes, s.forward)
	slog.Info("SSE subscriber registered for event types", "types", domain.AllSlotsEventTypes)
}

func (s *Subscriber) forward(_ context.Context, evt event.Event) error {
	sessionID := evt.SessionID()
	if sessionID == "" {
		slog.Warn("Dropping engine event without session", "event_type", evt.Type)
		return nil
	}
	s.hub.Broadcast(sessionID, string(evt.Type), evt.Payload)
	slog.Debug(LogMsgEventBroadcast, "event_type", evt.Type, "session_id", sessionID)
	return nil
}
