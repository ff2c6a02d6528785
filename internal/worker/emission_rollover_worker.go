package worker

import (
	"context"
	"sync"
	"time"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/emission"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
	"github.com/service-lgtm/pw-next-sub000/internal/metrics"
)

// Roller resets daily emission counters at the day boundary
type Roller interface {
	RolloverAll(ctx context.Context) []domain.CapStatus
	Location() *time.Location
}

// EmissionRolloverWorker forces the emission day check right after local midnight.
// Counters also roll lazily on access, so a missed timer only delays the gauges
// and the rolled_over event until the next settlement touches the counter.
type EmissionRolloverWorker struct {
	caps     Roller
	clock    clock.Clock
	timer    *time.Timer
	shutdown chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewEmissionRolloverWorker creates a new EmissionRolloverWorker
func NewEmissionRolloverWorker(caps Roller, clk clock.Clock) *EmissionRolloverWorker {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &EmissionRolloverWorker{
		caps:     caps,
		clock:    clk,
		shutdown: make(chan struct{}),
	}
}

// Start schedules the first rollover
func (w *EmissionRolloverWorker) Start() {
	w.scheduleNext()
}

// scheduleNext waits for the next boundary in the counters' zone
func (w *EmissionRolloverWorker) scheduleNext() {
	duration := w.timeUntilNextRollover()
	log := logger.FromContext(context.Background())

	w.mu.Lock()
	select {
	case <-w.shutdown:
		w.mu.Unlock()
		return
	default:
	}
	if w.timer != nil {
		w.timer.Stop()
	}

	// Two-stage scheduling so a long timer that fires early does not tight-loop
	if duration > rolloverStandbyThreshold {
		waitDuration := duration - rolloverStandbyLead
		w.timer = time.AfterFunc(waitDuration, w.scheduleNext)
		w.mu.Unlock()

		log.Info(LogMsgRolloverStandby, "next_check_at", w.clock.Now().Add(waitDuration))
		return
	}

	w.timer = time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		// Early trigger: reschedule for the remaining time.
		// More than a day minus the window means we are on time or late.
		rem := w.timeUntilNextRollover()
		if rem > rolloverJitterTolerance && rem < 24*time.Hour-rolloverStandbyThreshold {
			w.scheduleNext()
			return
		}

		w.executeRollover(context.Background())
		w.scheduleNext()
	})
	w.mu.Unlock()

	log.Info(LogMsgRolloverApproach, "next_rollover_at", w.clock.Now().Add(duration))
}

// TriggerNow runs the day check immediately and returns the counters that rolled
func (w *EmissionRolloverWorker) TriggerNow(ctx context.Context) []domain.CapStatus {
	logger.FromContext(ctx).Info(LogMsgRolloverManualTrigger)
	return w.rollover(ctx)
}

// executeRollover performs the rollover in a tracked goroutine
func (w *EmissionRolloverWorker) executeRollover(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.rollover(ctx)
	}()
}

func (w *EmissionRolloverWorker) rollover(ctx context.Context) []domain.CapStatus {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRolloverStarting)

	rolled := w.caps.RolloverAll(ctx)
	metrics.ObserveEmission(rolled)

	log.Info(LogMsgRolloverCompleted, "counters_rolled", len(rolled))
	return rolled
}

// Shutdown cancels the pending timer and waits for an in-flight rollover
func (w *EmissionRolloverWorker) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgRolloverShuttingDown)

	w.mu.Lock()
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgRolloverShutdownComplete)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgRolloverShutdownTimeout)
		return ctx.Err()
	}
}

// timeUntilNextRollover is the wait until the next midnight in the counters' zone
func (w *EmissionRolloverWorker) timeUntilNextRollover() time.Duration {
	now := w.clock.Now()
	return emission.NextBoundary(now, w.caps.Location()).Sub(now)
}
