package mining

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// Stop settles every complete hour up to now, forfeits the partial hour,
// releases the tools and credits the pending output exactly once.
//
// While a whole hour cannot be settled (pricing or ledger outage) the session
// stays active and Stop returns ErrSettlementDeferred. Calling Stop on a closed
// session returns the recorded settlement. A session left in stopping by a
// failed release, credit or save resumes where it left off.
func (s *Session) Stop(ctx context.Context, now time.Time, reason domain.StopReason) (*domain.Settlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Status == domain.SessionActive {
		res := s.tickLocked(ctx, now)
		if res.Stopped != nil {
			return res.Stopped, nil
		}
		if s.state.Status == domain.SessionActive && s.state.CarryMinutes >= minutesPerHour {
			logger.FromContext(ctx).Warn(LogMsgStopDeferred, "session_id", s.state.ID, "carry_minutes", s.state.CarryMinutes)
			return nil, fmt.Errorf("%w: %d minutes unsettled", domain.ErrSettlementDeferred, s.state.CarryMinutes)
		}
	}

	switch s.state.Status {
	case domain.SessionClosed:
		return s.settlementCopy(), nil
	case domain.SessionActive:
		s.beginStop(reason)
	}
	return s.finishStop(ctx, now)
}

// beginStop moves an active session to stopping. The partial hour is
// forfeited; whole hours are only left over by a forced stop.
func (s *Session) beginStop(reason domain.StopReason) {
	s.state.UnsettledHours = s.state.CarryMinutes / minutesPerHour
	s.state.ForfeitedMinutes = s.state.CarryMinutes % minutesPerHour
	s.state.CarryMinutes = 0
	s.state.Status = domain.SessionStopping
	s.state.StopReason = reason
}

// finishStop runs the stopping steps that have not completed yet. The
// stopping state is saved before any side effect, so a restart resumes the
// stop instead of mining on.
func (s *Session) finishStop(ctx context.Context, now time.Time) (*domain.Settlement, error) {
	s.touch(now)
	if err := s.eng.save(ctx, s.state); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSaveStopping, err)
	}

	closed := s.closedState(now)
	if closer, ok := s.eng.store.(SessionCloser); ok {
		req := domain.SessionClose{
			Session:      closed.Clone(),
			ReleaseTools: !s.state.ToolsReleased,
			ToolLoss:     s.toolLoss(),
			Credit:       decimal.Zero,
		}
		if !s.state.OutputCredited {
			req.Credit = s.state.PendingOutput
		}
		if err := closer.CloseSession(ctx, req); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgCloseSession, err)
		}
	} else {
		if err := s.releaseAndCredit(ctx); err != nil {
			s.eng.persist(ctx, s.state)
			return nil, err
		}
		if err := s.eng.save(ctx, closed); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgSaveClosed, err)
		}
	}
	s.state = closed

	st := s.state
	logger.FromContext(ctx).Info(LogMsgSessionStopped,
		"session_id", st.ID,
		"user_id", st.UserID,
		"reason", st.StopReason,
		"settled_hours", st.SettledHours,
		"forfeited_minutes", st.ForfeitedMinutes,
		"unsettled_hours", st.UnsettledHours,
		"output", st.PendingOutput.String())
	s.eng.publish(ctx, event.NewSessionStoppedEvent(*st.Settlement))

	return s.settlementCopy(), nil
}

// releaseAndCredit applies the side effects one at a time for stores that
// cannot close in a transaction. Each completed step is saved before the next.
func (s *Session) releaseAndCredit(ctx context.Context) error {
	st := s.state
	if !st.ToolsReleased {
		if err := s.eng.tools.Release(ctx, st.UserID, st.ToolIDs, s.toolLoss()); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgReleaseTools, err)
		}
		st.ToolsReleased = true
		if err := s.eng.save(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgSaveStopping, err)
		}
	}

	if !st.OutputCredited {
		if st.PendingOutput.IsPositive() {
			if err := s.eng.ledger.Credit(ctx, st.UserID, st.Resource, st.PendingOutput); err != nil {
				return fmt.Errorf("%s: %w", ErrMsgCreditOutput, err)
			}
		}
		st.OutputCredited = true
		if err := s.eng.save(ctx, st); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgSaveStopping, err)
		}
	}
	return nil
}

func (s *Session) toolLoss() map[string]int {
	loss := make(map[string]int, len(s.state.ToolIDs))
	for _, id := range s.state.ToolIDs {
		loss[id] = s.state.ToolHours[id] * s.eng.cfg.DurabilityPerHour
	}
	return loss
}

// closedState is the snapshot the session takes once every step has succeeded
func (s *Session) closedState(now time.Time) *domain.MiningSession {
	c := s.state.Clone()
	c.ToolsReleased = true
	c.OutputCredited = true
	c.Status = domain.SessionClosed
	c.Settlement = &domain.Settlement{
		SessionID:        c.ID,
		UserID:           c.UserID,
		Resource:         c.Resource,
		ToolIDs:          append([]string(nil), c.ToolIDs...),
		SettledHours:     c.SettledHours,
		ForfeitedMinutes: c.ForfeitedMinutes,
		UnsettledHours:   c.UnsettledHours,
		Output:           c.PendingOutput,
		Reason:           c.StopReason,
		ClosedAt:         now,
	}
	return c
}

func (s *Session) settlementCopy() *domain.Settlement {
	if s.state.Settlement == nil {
		return nil
	}
	st := *s.state.Settlement
	st.ToolIDs = append([]string(nil), s.state.Settlement.ToolIDs...)
	return &st
}
