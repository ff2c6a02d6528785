package worker

import (
	"context"
	"time"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
	"github.com/service-lgtm/pw-next-sub000/internal/metrics"
	"github.com/service-lgtm/pw-next-sub000/internal/mining"
)

// SessionTicker advances every open session
type SessionTicker interface {
	TickAll(ctx context.Context) mining.TickReport
	ActiveCount() int
}

// CapReporter exposes emission counters for gauges
type CapReporter interface {
	Statuses(ctx context.Context) []domain.CapStatus
}

// TickJob drives the periodic session tick
type TickJob struct {
	sessions SessionTicker
	caps     CapReporter
}

// NewTickJob creates a TickJob. caps may be nil.
func NewTickJob(sessions SessionTicker, caps CapReporter) *TickJob {
	return &TickJob{sessions: sessions, caps: caps}
}

// Process runs one tick pass and refreshes mining gauges
func (j *TickJob) Process(ctx context.Context) error {
	start := time.Now()
	report := j.sessions.TickAll(ctx)
	metrics.TickDuration.Observe(time.Since(start).Seconds())
	metrics.ActiveSessions.Set(float64(j.sessions.ActiveCount()))

	if j.caps != nil {
		metrics.ObserveEmission(j.caps.Statuses(ctx))
	}

	if report.Sessions > 0 {
		logger.FromContext(ctx).Debug(LogMsgTickCompleted,
			"sessions", report.Sessions,
			"hours_settled", report.HoursSettled,
			"deferred", report.Deferred,
			"forced_stops", report.ForcedStops,
			"resumed", report.Resumed)
	}
	return nil
}
