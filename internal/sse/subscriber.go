package sse

import (
	"context"
	"log/slog"

	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

// StreamedEventTypes are the bus events forwarded to players
var StreamedEventTypes = []event.Type{
	event.SessionStarted,
	event.HourSettled,
	event.SessionStopped,
	event.FoodExhausted,
}

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{
		hub: hub,
		bus: bus,
	}
}

// Subscribe registers the forwarder for every streamed event type
func (s *Subscriber) Subscribe() {
	types := make([]string, 0, len(StreamedEventTypes))
	for _, t := range StreamedEventTypes {
		s.bus.Subscribe(t, s.handleEvent)
		types = append(types, string(t))
	}
	slog.Info(LogMsgSubscriberRegistered, "types", types)
}

// handleEvent forwards a user scoped event. Events without a user are skipped.
func (s *Subscriber) handleEvent(_ context.Context, evt event.Event) error {
	userID, ok := evt.GetMetadataValue("user_id").(string)
	if !ok || userID == "" {
		return nil
	}

	s.hub.Broadcast(userID, string(evt.Type), evt.Payload)
	slog.Debug(LogMsgEventBroadcast, "event_type", evt.Type, "user_id", userID)
	return nil
}
