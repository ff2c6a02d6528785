package metrics

import (
	"context"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.SessionStarted,
		event.HourSettled,
		event.SessionStopped,
		event.FoodExhausted,
		event.EmissionExhausted,
		event.EmissionRolledOver,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	var err error
	switch evt.Type {
	case event.SessionStarted:
		var p domain.SessionStartedPayload
		if p, err = event.DecodePayload[domain.SessionStartedPayload](evt.Payload); err == nil {
			SessionsStarted.WithLabelValues(string(p.Resource)).Inc()
		}

	case event.HourSettled:
		var p domain.HourSettledPayload
		if p, err = event.DecodePayload[domain.HourSettledPayload](evt.Payload); err == nil {
			res := string(p.Resource)
			HoursSettled.WithLabelValues(res).Inc()
			OutputRequested.WithLabelValues(res).Add(p.Requested.InexactFloat64())
			OutputGranted.WithLabelValues(res).Add(p.Granted.InexactFloat64())
			FoodConsumed.Add(p.FoodConsumed.InexactFloat64())
		}

	case event.SessionStopped, event.FoodExhausted:
		var p domain.SessionStoppedPayload
		if p, err = event.DecodePayload[domain.SessionStoppedPayload](evt.Payload); err == nil {
			SessionsStopped.WithLabelValues(string(p.Settlement.Resource), string(p.Settlement.Reason)).Inc()
		}

	case event.EmissionExhausted, event.EmissionRolledOver:
		var p domain.EmissionPayload
		if p, err = event.DecodePayload[domain.EmissionPayload](evt.Payload); err == nil {
			res := string(p.Status.Resource)
			EmissionRemaining.WithLabelValues(res).Set(p.Status.Remaining.InexactFloat64())
			if evt.Type == event.EmissionExhausted {
				EmissionExhausted.WithLabelValues(res).Inc()
			}
		}
	}

	if err != nil {
		EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		log.Debug(LogMsgEventPayloadDecodeFailed, "type", evt.Type, "error", err)
		return nil
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

// ObserveEmission refreshes the remaining-emission gauge from a status list
func ObserveEmission(statuses []domain.CapStatus) {
	for _, st := range statuses {
		EmissionRemaining.WithLabelValues(string(st.Resource)).Set(st.Remaining.InexactFloat64())
	}
}
