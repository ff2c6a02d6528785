// Package mining implements hourly accrual and settlement of mining sessions.
package mining

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/concurrency"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
	"github.com/service-lgtm/pw-next-sub000/internal/rules"
)

// Deps are the collaborators of the registry. Store and Publisher are optional.
type Deps struct {
	Lands     LandDirectory
	Tools     ToolPool
	Ledger    Ledger
	Pricing   Pricing
	Caps      EmissionCaps
	Store     SessionStore
	Publisher Publisher
	Clock     clock.Clock
}

// Registry owns every session and routes operations to them. Open sessions
// are indexed by user for ticking and summaries; closed ones move to a bounded
// LRU so Stop stays idempotent without the registry growing forever.
type Registry struct {
	lands LandDirectory
	clock clock.Clock
	eng   *engine
	locks *concurrency.KeyedMutex

	mu     sync.RWMutex
	open   map[string]*Session
	byUser map[string]map[string]*Session
	closed *lru.Cache[string, *Session]
}

// NewRegistry creates a session registry
func NewRegistry(deps Deps, cfg Config) *Registry {
	clk := deps.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	if cfg.ClosedRetention <= 0 {
		cfg.ClosedRetention = DefaultClosedRetention
	}
	closed, _ := lru.New[string, *Session](cfg.ClosedRetention)
	return &Registry{
		lands: deps.Lands,
		clock: clk,
		eng: &engine{
			tools:     deps.Tools,
			ledger:    deps.Ledger,
			pricing:   deps.Pricing,
			caps:      deps.Caps,
			store:     deps.Store,
			publisher: deps.Publisher,
			cfg:       cfg,
		},
		locks:  concurrency.NewKeyedMutex(),
		open:   make(map[string]*Session),
		byUser: make(map[string]map[string]*Session),
		closed: closed,
	}
}

func (r *Registry) add(s *Session) {
	if s.Status() == domain.SessionClosed {
		r.closed.Add(s.ID(), s)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.open[s.ID()]; exists {
		return
	}
	r.open[s.ID()] = s
	if r.byUser[s.UserID()] == nil {
		r.byUser[s.UserID()] = make(map[string]*Session)
	}
	r.byUser[s.UserID()][s.ID()] = s
}

// retire moves a session that has closed out of the open index
func (r *Registry) retire(s *Session) {
	if s.Status() != domain.SessionClosed {
		return
	}
	r.mu.Lock()
	delete(r.open, s.ID())
	if sessions := r.byUser[s.UserID()]; sessions != nil {
		delete(sessions, s.ID())
		if len(sessions) == 0 {
			delete(r.byUser, s.UserID())
		}
	}
	r.mu.Unlock()
	r.closed.Add(s.ID(), s)
}

func (r *Registry) lookup(ctx context.Context, userID, sessionID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.open[sessionID]
	r.mu.RUnlock()
	if !ok {
		s, ok = r.closed.Get(sessionID)
	}
	if !ok {
		s, ok = r.loadClosed(ctx, sessionID)
	}
	if !ok || s.UserID() != userID {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return s, nil
}

// loadClosed brings back a closed session evicted from memory
func (r *Registry) loadClosed(ctx context.Context, sessionID string) (*Session, bool) {
	loader, ok := r.eng.store.(SessionLoader)
	if !ok {
		return nil, false
	}
	state, err := loader.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.FromContext(ctx).Warn(LogMsgLoadClosedFailed, "session_id", sessionID, "error", err)
		}
		return nil, false
	}
	if state.Status != domain.SessionClosed {
		return nil, false
	}
	s := newSession(state, r.eng)
	r.closed.Add(s.ID(), s)
	return s, true
}

func sortByID(sessions []*Session) []*Session {
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID() < sessions[j].ID() })
	return sessions
}

func (r *Registry) userSessions(userID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byUser[userID]))
	for _, s := range r.byUser[userID] {
		out = append(out, s)
	}
	return sortByID(out)
}

func (r *Registry) openSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.open))
	for _, s := range r.open {
		out = append(out, s)
	}
	return sortByID(out)
}

// StartSession validates the request and reserves the tools. Nothing is
// reserved when any check fails.
func (r *Registry) StartSession(ctx context.Context, userID, landID string, toolIDs []string) (*domain.MiningSession, error) {
	defer r.locks.Lock(userID)()

	log := logger.FromContext(ctx)

	if len(toolIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, domain.ErrMsgEmptyToolSelection)
	}

	land, err := r.lands.GetLand(ctx, landID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetLand, err)
	}
	required, mineable := rules.RequiredTool(land.Category)
	resource, _ := rules.ProducedResource(land.Category)
	if !mineable {
		return nil, fmt.Errorf("%w: %s is %s", domain.ErrLandNotMineable, land.ID, land.Category)
	}
	if land.OwnerID != userID {
		return nil, fmt.Errorf("%w: %s", domain.ErrLandNotOwned, land.ID)
	}

	level, err := r.lands.GetUserLevel(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetUserLevel, err)
	}
	maxTools := rules.MaxToolsForLevel(level)
	if len(toolIDs) > maxTools {
		return nil, fmt.Errorf("%w: %d tools, level %d allows %d", domain.ErrLevelCapExceeded, len(toolIDs), level, maxTools)
	}

	tools, err := r.eng.tools.GetTools(ctx, userID, toolIDs)
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		if t.Category != required {
			return nil, fmt.Errorf("%w: %s is a %s, land needs %s", domain.ErrIncompatibleTool, t.ID, t.Category, required)
		}
	}
	if err := r.eng.tools.Reserve(ctx, userID, toolIDs); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	state := &domain.MiningSession{
		ID:            uuid.NewString(),
		UserID:        userID,
		LandID:        land.ID,
		Resource:      resource,
		ToolCategory:  required,
		ToolIDs:       append([]string(nil), toolIDs...),
		MaxTools:      maxTools,
		Status:        domain.SessionActive,
		StartedAt:     now,
		LastTickAt:    now,
		PendingOutput: decimal.Zero,
		ToolHours:     make(map[string]int, len(toolIDs)),
		UpdatedAt:     now,
	}
	for _, id := range toolIDs {
		state.ToolHours[id] = 0
	}
	if land.Reserve != nil {
		state.Reserve = decimal.NewNullDecimal(*land.Reserve)
	}

	if r.eng.store != nil {
		if err := r.eng.store.SaveSession(ctx, state.Clone()); err != nil {
			if relErr := r.eng.tools.Release(ctx, userID, toolIDs, nil); relErr != nil {
				log.Error(LogMsgReleaseOnStartFailed, "user_id", userID, "error", relErr)
			}
			return nil, fmt.Errorf("%w: failed to save session: %v", domain.ErrDatabaseError, err)
		}
	}

	s := newSession(state, r.eng)
	r.add(s)

	log.Info(LogMsgSessionStarted, "session_id", state.ID, "user_id", userID, "land_id", land.ID, "resource", resource, "tools", len(toolIDs))
	r.eng.publish(ctx, event.NewSessionStartedEvent(state))
	return state.Clone(), nil
}

// StopSession stops one of the user's sessions
func (r *Registry) StopSession(ctx context.Context, userID, sessionID string) (*domain.Settlement, error) {
	s, err := r.lookup(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer r.retire(s)
	return s.Stop(ctx, r.clock.Now(), domain.StopReasonManual)
}

// StopAll stops every open session of the user independently
func (r *Registry) StopAll(ctx context.Context, userID string) *domain.StopAllResult {
	result := &domain.StopAllResult{
		Results:           make([]domain.StopResult, 0),
		FlushedByResource: make(map[domain.ResourceType]decimal.Decimal),
	}

	for _, s := range r.userSessions(userID) {
		if s.Status() == domain.SessionClosed {
			r.retire(s)
			continue
		}
		st, err := s.Stop(ctx, r.clock.Now(), domain.StopReasonStopAll)
		r.retire(s)
		if err != nil {
			result.Failed++
			result.Results = append(result.Results, domain.StopResult{SessionID: s.ID(), Error: err.Error()})
			continue
		}
		result.Stopped++
		result.Results = append(result.Results, domain.StopResult{SessionID: s.ID(), Settlement: st})
		result.FlushedByResource[st.Resource] = result.FlushedByResource[st.Resource].Add(st.Output)
	}
	return result
}

// AddTools adds tools to one of the user's sessions
func (r *Registry) AddTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error) {
	s, err := r.lookup(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer r.retire(s)
	return s.AddTools(ctx, r.clock.Now(), toolIDs)
}

// RemoveTools removes tools from one of the user's sessions
func (r *Registry) RemoveTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error) {
	s, err := r.lookup(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer r.retire(s)
	return s.RemoveTools(ctx, r.clock.Now(), toolIDs)
}

// Get ticks the session up to now and returns its state
func (r *Registry) Get(ctx context.Context, userID, sessionID string) (*domain.MiningSession, error) {
	s, err := r.lookup(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	s.Tick(ctx, r.clock.Now())
	r.retire(s)
	return s.Snapshot(), nil
}

// List ticks and returns the user's sessions, newest first. Closed sessions
// still held in memory are included only when includeClosed is set.
func (r *Registry) List(ctx context.Context, userID string, includeClosed bool) []*domain.MiningSession {
	now := r.clock.Now()
	out := make([]*domain.MiningSession, 0)
	for _, s := range r.userSessions(userID) {
		s.Tick(ctx, now)
		r.retire(s)
		snap := s.Snapshot()
		if snap.Status == domain.SessionClosed && !includeClosed {
			continue
		}
		out = append(out, snap)
	}
	if includeClosed {
		seen := make(map[string]bool, len(out))
		for _, snap := range out {
			seen[snap.ID] = true
		}
		for _, s := range r.closed.Values() {
			if s.UserID() == userID && !seen[s.ID()] {
				out = append(out, s.Snapshot())
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// ActiveCount returns the number of sessions not yet closed
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.open)
}

// TickReport summarizes one TickAll pass
type TickReport struct {
	Sessions     int
	HoursSettled int
	Deferred     int
	ForcedStops  int
	Resumed      int
}

// TickAll ticks every active session and retries sessions stuck in stopping
func (r *Registry) TickAll(ctx context.Context) TickReport {
	var report TickReport
	now := r.clock.Now()

	for _, s := range r.openSessions() {
		switch s.Status() {
		case domain.SessionActive:
			report.Sessions++
			res := s.Tick(ctx, now)
			report.HoursSettled += res.HoursSettled
			if res.Deferred {
				report.Deferred++
			}
			if res.Stopped != nil {
				report.ForcedStops++
			}
		case domain.SessionStopping:
			report.Sessions++
			snap := s.Snapshot()
			if _, err := s.Stop(ctx, now, snap.StopReason); err == nil {
				report.Resumed++
			} else {
				logger.FromContext(ctx).Warn(LogMsgStopIncomplete, "session_id", snap.ID, "error", err)
			}
		}
		r.retire(s)
	}
	return report
}

// Restore reloads open sessions from the store after a restart. Elapsed time
// since the last persisted tick is settled on the next tick.
func (r *Registry) Restore(ctx context.Context) (int, error) {
	if r.eng.store == nil {
		return 0, nil
	}
	open, err := r.eng.store.ListOpenSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgListOpenSession, err)
	}
	for _, state := range open {
		r.add(newSession(state, r.eng))
		logger.FromContext(ctx).Info(LogMsgRestoreSession, "session_id", state.ID, "status", state.Status)
	}
	return len(open), nil
}
