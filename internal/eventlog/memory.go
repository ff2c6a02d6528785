package eventlog

import (
	"context"
	"sync"
	"time"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
)

// MemoryRepository keeps events in process for the memory store driver
type MemoryRepository struct {
	mu     sync.RWMutex
	clock  clock.Clock
	nextID int64
	events []Event
}

// NewMemoryRepository creates an empty in-memory event log
func NewMemoryRepository(clk clock.Clock) *MemoryRepository {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryRepository{clock: clk}
}

// LogEvent appends an event
func (m *MemoryRepository) LogEvent(ctx context.Context, eventType string, userID *string, payload, metadata map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.events = append(m.events, Event{
		ID:        m.nextID,
		EventType: eventType,
		UserID:    userID,
		Payload:   payload,
		Metadata:  metadata,
		CreatedAt: m.clock.Now(),
	})
	return nil
}

func (f EventFilter) matches(e Event) bool {
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	if f.EventType != nil && e.EventType != *f.EventType {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.CreatedAt.After(*f.Until) {
		return false
	}
	return true
}

// GetEvents returns matching events newest first
func (m *MemoryRepository) GetEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Event, 0)
	for i := len(m.events) - 1; i >= 0; i-- {
		if !filter.matches(m.events[i]) {
			continue
		}
		out = append(out, m.events[i])
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// CleanupOldEvents drops events older than retentionDays
func (m *MemoryRepository) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	kept := m.events[:0]
	var deleted int64
	for _, e := range m.events {
		if e.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}
