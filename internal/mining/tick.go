package mining

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// TickResult reports what one Tick call settled
type TickResult struct {
	SessionID    string
	MinutesAdded int
	HoursSettled int
	Requested    decimal.Decimal
	Granted      decimal.Decimal
	// Deferred is set when an hour could not be settled and stays in the carry
	Deferred bool
	// Stopped is the settlement when the tick force-stopped the session
	Stopped *domain.Settlement
}

type hourOutcome int

const (
	hourSettled hourOutcome = iota
	hourDeferred
	hourFoodExhausted
)

// Tick counts whole minutes elapsed since the last tick and settles every
// complete hour. It never returns an error: an hour that cannot be settled
// stays in the carry and is retried on the next tick.
func (s *Session) Tick(ctx context.Context, now time.Time) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickLocked(ctx, now)
}

func (s *Session) tickLocked(ctx context.Context, now time.Time) TickResult {
	res := TickResult{SessionID: s.state.ID, Requested: decimal.Zero, Granted: decimal.Zero}
	if s.state.Status != domain.SessionActive {
		return res
	}

	minutes := int(now.Sub(s.state.LastTickAt) / time.Minute)
	if minutes <= 0 && s.state.CarryMinutes < minutesPerHour {
		return res
	}
	if minutes > 0 {
		s.state.LastTickAt = s.state.LastTickAt.Add(time.Duration(minutes) * time.Minute)
		s.state.CarryMinutes += minutes
		res.MinutesAdded = minutes
	}

	for s.state.CarryMinutes >= minutesPerHour {
		requested, granted, outcome := s.settleHour(ctx)
		if outcome == hourDeferred {
			res.Deferred = true
			logger.FromContext(ctx).Warn(LogMsgHourDeferred, "session_id", s.state.ID, "carry_minutes", s.state.CarryMinutes)
			break
		}
		if outcome == hourFoodExhausted {
			logger.FromContext(ctx).Info(LogMsgFoodExhausted, "session_id", s.state.ID, "settled_hours", s.state.SettledHours)
			s.beginStop(domain.StopReasonFoodExhausted)
			st, err := s.finishStop(ctx, now)
			if err != nil {
				logger.FromContext(ctx).Warn(LogMsgStopIncomplete, "session_id", s.state.ID, "error", err)
			}
			res.Stopped = st
			return res
		}
		res.HoursSettled++
		res.Requested = res.Requested.Add(requested)
		res.Granted = res.Granted.Add(granted)
	}

	s.touch(now)
	s.eng.persist(ctx, s.state)
	return res
}

// settleHour settles exactly one hour: rate, food, cap, then the counters.
func (s *Session) settleHour(ctx context.Context) (decimal.Decimal, decimal.Decimal, hourOutcome) {
	st := s.state
	log := logger.FromContext(ctx)

	rate, err := s.eng.pricing.PerToolRate(ctx, st.Resource)
	if err != nil {
		if !st.LastRate.Valid {
			log.Warn(LogMsgHourDeferred, "session_id", st.ID, "reason", "rate", "error", err)
			return decimal.Zero, decimal.Zero, hourDeferred
		}
		log.Warn(LogMsgRateUnavailable, "session_id", st.ID, "resource", st.Resource, "error", err)
		rate = st.LastRate.Decimal
	} else {
		st.LastRate = decimal.NewNullDecimal(rate)
	}

	tools := decimal.NewFromInt(int64(st.ToolCount()))
	food := s.eng.cfg.FoodPerToolHour.Mul(tools)
	if food.IsPositive() {
		if err := s.eng.ledger.Debit(ctx, st.UserID, domain.ResourceFood, food); err != nil {
			if errors.Is(err, domain.ErrInsufficientQuantity) {
				return decimal.Zero, decimal.Zero, hourFoodExhausted
			}
			log.Warn(LogMsgHourDeferred, "session_id", st.ID, "reason", "food", "error", err)
			return decimal.Zero, decimal.Zero, hourDeferred
		}
	}

	requested := rate.Mul(tools)
	available := requested
	if st.Reserve.Valid {
		available = decimal.Min(requested, decimal.Max(st.Reserve.Decimal, decimal.Zero))
	}
	granted := s.eng.caps.TryConsume(ctx, st.Resource, available)
	if st.Reserve.Valid {
		st.Reserve.Decimal = st.Reserve.Decimal.Sub(granted)
		if granted.IsPositive() && !st.Reserve.Decimal.IsPositive() {
			log.Info(LogMsgReserveDepleted, "session_id", st.ID, "land_id", st.LandID)
		}
	}

	st.PendingOutput = st.PendingOutput.Add(granted)
	st.SettledHours++
	st.CarryMinutes -= minutesPerHour
	for _, id := range st.ToolIDs {
		st.ToolHours[id]++
	}

	s.eng.publish(ctx, event.NewHourSettledEvent(domain.HourSettledPayload{
		SessionID:    st.ID,
		UserID:       st.UserID,
		Resource:     st.Resource,
		Hour:         st.SettledHours,
		Requested:    requested,
		Granted:      granted,
		FoodConsumed: food,
		Timestamp:    st.LastTickAt.Unix(),
	}))
	return requested, granted, hourSettled
}
