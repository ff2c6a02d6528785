package mining

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// Config holds the engine's tunable rates
type Config struct {
	FoodPerToolHour   decimal.Decimal
	DurabilityPerHour int
	LowFoodHours      decimal.Decimal
	// ClosedRetention bounds the closed sessions kept in memory
	ClosedRetention int
}

// DefaultConfig returns the canonical rates
func DefaultConfig() Config {
	return Config{
		FoodPerToolHour:   DefaultFoodPerToolHour,
		DurabilityPerHour: DefaultDurabilityPerHour,
		LowFoodHours:      DefaultLowFoodHours,
		ClosedRetention:   DefaultClosedRetention,
	}
}

// engine is the set of collaborators shared by every session
type engine struct {
	tools     ToolPool
	ledger    Ledger
	pricing   Pricing
	caps      EmissionCaps
	store     SessionStore
	publisher Publisher
	cfg       Config
}

func (e *engine) publish(ctx context.Context, evt event.Event) {
	if e.publisher != nil {
		e.publisher.PublishWithRetry(ctx, evt)
	}
}

// persist saves a snapshot and only logs failures; the next tick saves again
func (e *engine) persist(ctx context.Context, s *domain.MiningSession) {
	if err := e.save(ctx, s); err != nil {
		logger.FromContext(ctx).Error(LogMsgPersistFailed, "session_id", s.ID, "error", err)
	}
}

// save writes a snapshot and reports failure to the caller
func (e *engine) save(ctx context.Context, s *domain.MiningSession) error {
	if e.store == nil {
		return nil
	}
	return e.store.SaveSession(ctx, s.Clone())
}

// Session is the live state machine of one mining session.
// Every method takes the session mutex, so calls on one session never interleave.
type Session struct {
	mu    sync.Mutex
	state *domain.MiningSession
	eng   *engine
}

func newSession(state *domain.MiningSession, eng *engine) *Session {
	if state.ToolHours == nil {
		state.ToolHours = make(map[string]int, len(state.ToolIDs))
	}
	return &Session{state: state, eng: eng}
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.state.ID
}

// UserID returns the owning user
func (s *Session) UserID() string {
	return s.state.UserID
}

// Status returns the current lifecycle state
func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status
}

// Snapshot returns a deep copy of the session state
func (s *Session) Snapshot() *domain.MiningSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) hasTool(id string) bool {
	for _, t := range s.state.ToolIDs {
		if t == id {
			return true
		}
	}
	return false
}

func (s *Session) touch(now time.Time) {
	if now.After(s.state.UpdatedAt) {
		s.state.UpdatedAt = now
	}
}
