package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Mining event types
const (
	SessionStarted     Type = Type(domain.EventTypeSessionStarted)
	HourSettled        Type = Type(domain.EventTypeHourSettled)
	SessionStopped     Type = Type(domain.EventTypeSessionStopped)
	FoodExhausted      Type = Type(domain.EventTypeFoodExhausted)
	EmissionExhausted  Type = Type(domain.EventTypeEmissionExhausted)
	EmissionRolledOver Type = Type(domain.EventTypeEmissionRolledOver)
)

// Type-safe event constructors

// NewSessionStartedEvent creates a session.started event
func NewSessionStartedEvent(s *domain.MiningSession) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    SessionStarted,
		Payload: domain.SessionStartedPayload{
			SessionID: s.ID,
			UserID:    s.UserID,
			LandID:    s.LandID,
			Resource:  s.Resource,
			ToolCount: s.ToolCount(),
			Timestamp: s.StartedAt.Unix(),
		},
		Metadata: map[string]interface{}{
			"user_id": s.UserID,
		},
	}
}

// NewHourSettledEvent creates a session.hour_settled event
func NewHourSettledEvent(p domain.HourSettledPayload) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    HourSettled,
		Payload: p,
		Metadata: map[string]interface{}{
			"user_id": p.UserID,
		},
	}
}

// NewSessionStoppedEvent creates a session.stopped or session.food_exhausted event
// depending on the settlement's stop reason
func NewSessionStoppedEvent(st domain.Settlement) Event {
	t := SessionStopped
	if st.Reason == domain.StopReasonFoodExhausted {
		t = FoodExhausted
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    t,
		Payload: domain.SessionStoppedPayload{
			Settlement: st,
			Timestamp:  st.ClosedAt.Unix(),
		},
		Metadata: map[string]interface{}{
			"user_id": st.UserID,
			"reason":  string(st.Reason),
		},
	}
}

// NewEmissionExhaustedEvent creates an emission.exhausted event
func NewEmissionExhaustedEvent(status domain.CapStatus) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    EmissionExhausted,
		Payload: domain.EmissionPayload{
			Status:    status,
			Timestamp: time.Now().Unix(),
		},
	}
}

// NewEmissionRolledOverEvent creates an emission.rolled_over event carrying the new day's status
func NewEmissionRolledOverEvent(status domain.CapStatus) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    EmissionRolledOver,
		Payload: domain.EmissionPayload{
			Status:    status,
			Timestamp: time.Now().Unix(),
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

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously in subscription order
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
