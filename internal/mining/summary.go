package mining

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Summarize ticks the user's active sessions and aggregates them for display
func (r *Registry) Summarize(ctx context.Context, userID string) *domain.MiningSummary {
	now := r.clock.Now()
	summary := &domain.MiningSummary{
		UserID:            userID,
		TotalPending:      decimal.Zero,
		PendingByResource: make(map[domain.ResourceType]decimal.Decimal),
		HourlyFoodDraw:    decimal.Zero,
		GeneratedAt:       now,
	}

	for _, s := range r.userSessions(userID) {
		s.Tick(ctx, now)
		r.retire(s)
		snap := s.Snapshot()
		if snap.Status != domain.SessionActive {
			continue
		}
		summary.ActiveSessions++
		summary.TotalTools += snap.ToolCount()
		summary.TotalPending = summary.TotalPending.Add(snap.PendingOutput)
		summary.PendingByResource[snap.Resource] = summary.PendingByResource[snap.Resource].Add(snap.PendingOutput)
	}

	summary.HourlyFoodDraw = r.eng.cfg.FoodPerToolHour.Mul(decimal.NewFromInt(int64(summary.TotalTools)))
	summary.Emission = r.eng.caps.Statuses(ctx)
	return summary
}
