package mining

import (
	"context"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

// EmissionEvents turns daily cap transitions into bus events
type EmissionEvents struct {
	publisher Publisher
}

// NewEmissionEvents creates a cap observer publishing through publisher
func NewEmissionEvents(publisher Publisher) *EmissionEvents {
	return &EmissionEvents{publisher: publisher}
}

// CapExhausted publishes emission.exhausted
func (e *EmissionEvents) CapExhausted(ctx context.Context, status domain.CapStatus) {
	e.publisher.PublishWithRetry(context.WithoutCancel(ctx), event.NewEmissionExhaustedEvent(status))
}

// CapRolledOver publishes emission.rolled_over with the new day's status
func (e *EmissionEvents) CapRolledOver(ctx context.Context, previous, current domain.CapStatus) {
	e.publisher.PublishWithRetry(context.WithoutCancel(ctx), event.NewEmissionRolledOverEvent(current))
}
