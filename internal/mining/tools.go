package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

func (s *Session) requireActive(ctx context.Context, now time.Time) error {
	if s.state.Status != domain.SessionActive {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotActive, s.state.Status)
	}
	// Hours elapsed so far settle at the current tool count
	s.tickLocked(ctx, now)
	if s.state.Status != domain.SessionActive {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotActive, s.state.Status)
	}
	return nil
}

func uniqueIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, domain.ErrMsgEmptyToolSelection)
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate tool %s", domain.ErrToolUnavailable, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// AddTools reserves more tools for an active session. On any failure the
// session and the pool are left unchanged.
func (s *Session) AddTools(ctx context.Context, now time.Time, ids []string) (*domain.MiningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(ctx, now); err != nil {
		return nil, err
	}
	if err := uniqueIDs(ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if s.hasTool(id) {
			return nil, fmt.Errorf("%w: %s already in session", domain.ErrToolUnavailable, id)
		}
	}
	if s.state.ToolCount()+len(ids) > s.state.MaxTools {
		return nil, fmt.Errorf("%w: %d tools, limit %d", domain.ErrLevelCapExceeded, s.state.ToolCount()+len(ids), s.state.MaxTools)
	}

	tools, err := s.eng.tools.GetTools(ctx, s.state.UserID, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		if t.Category != s.state.ToolCategory {
			return nil, fmt.Errorf("%w: %s is a %s, land needs %s", domain.ErrIncompatibleTool, t.ID, t.Category, s.state.ToolCategory)
		}
	}
	if err := s.eng.tools.Reserve(ctx, s.state.UserID, ids); err != nil {
		return nil, err
	}

	for _, id := range ids {
		s.state.ToolIDs = append(s.state.ToolIDs, id)
		s.state.ToolHours[id] = 0
	}
	s.touch(now)
	s.eng.persist(ctx, s.state)
	return s.state.Clone(), nil
}

// RemoveTools releases some of the session's tools, applying wear for the
// hours they worked. At least one tool must remain.
func (s *Session) RemoveTools(ctx context.Context, now time.Time, ids []string) (*domain.MiningSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireActive(ctx, now); err != nil {
		return nil, err
	}
	if err := uniqueIDs(ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !s.hasTool(id) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrToolUnavailable, domain.ErrMsgToolNotInSession, id)
		}
	}
	if len(ids) >= s.state.ToolCount() {
		return nil, fmt.Errorf("%w: a session needs at least one tool, stop it instead", domain.ErrInvalidInput)
	}

	loss := make(map[string]int, len(ids))
	for _, id := range ids {
		loss[id] = s.state.ToolHours[id] * s.eng.cfg.DurabilityPerHour
	}
	if err := s.eng.tools.Release(ctx, s.state.UserID, ids, loss); err != nil {
		return nil, err
	}

	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
		delete(s.state.ToolHours, id)
	}
	kept := s.state.ToolIDs[:0]
	for _, id := range s.state.ToolIDs {
		if _, ok := removed[id]; !ok {
			kept = append(kept, id)
		}
	}
	s.state.ToolIDs = kept
	s.touch(now)
	s.eng.persist(ctx, s.state)
	return s.state.Clone(), nil
}
