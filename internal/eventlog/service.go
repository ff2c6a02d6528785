package eventlog

import (
	"context"

	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// LoggedEventTypes are the mining events written to the audit trail
var LoggedEventTypes = []event.Type{
	event.SessionStarted,
	event.SessionStopped,
	event.FoodExhausted,
	event.EmissionExhausted,
	event.EmissionRolledOver,
}

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger for every logged event type
	Subscribe(bus event.Bus) error

	// History returns a user's logged events newest first, optionally of one type
	History(ctx context.Context, userID, eventType string, limit int) ([]Event, error)

	// CleanupOldEvents removes events older than retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Subscribe registers event handlers for all logged event types
func (s *service) Subscribe(bus event.Bus) error {
	for _, eventType := range LoggedEventTypes {
		bus.Subscribe(eventType, s.handleEvent)
	}
	return nil
}

// handleEvent flattens the payload to a map and stores it
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[map[string]interface{}](evt.Payload)
	if err != nil {
		log.Debug(LogMsgEventPayloadDecodeFailed, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	metadata, _ := evt.Metadata.(map[string]interface{})

	// Hour settlements carry the user at the top level, stops nest it in the settlement
	var userID *string
	if uid, ok := evt.GetMetadataValue(PayloadKeyUserID).(string); ok {
		userID = &uid
	} else if uid, ok := payload[PayloadKeyUserID].(string); ok {
		userID = &uid
	}

	if err := s.repo.LogEvent(ctx, string(evt.Type), userID, payload, metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, LogFieldType, evt.Type, LogFieldUserID, userID)
	return nil
}

// History clamps limit and queries the repository
func (s *service) History(ctx context.Context, userID, eventType string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	filter := EventFilter{UserID: &userID, Limit: limit}
	if eventType != "" {
		filter.EventType = &eventType
	}
	return s.repo.GetEvents(ctx, filter)
}

// CleanupOldEvents removes events older than the retention period
func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}
