package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/scheduler"
	"github.com/service-lgtm/pw-next-sub000/internal/server"
	"github.com/service-lgtm/pw-next-sub000/internal/sse"
	"github.com/service-lgtm/pw-next-sub000/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown. Nil fields are skipped.
type ShutdownComponents struct {
	Stream             *sse.Hub
	Server             *server.Server
	Scheduler          *scheduler.Scheduler
	WorkerPool         *worker.Pool
	RolloverWorker     *worker.EmissionRolloverWorker
	ResilientPublisher *event.ResilientPublisher
	DB                 *pgxpool.Pool
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in order:
// 1. Event stream hub (open streams would otherwise hold the server shutdown)
// 2. HTTP server (stop accepting new requests)
// 3. Scheduler and worker pool (let an in-flight tick finish)
// 4. Rollover worker (cancel the midnight timer)
// 5. Event publisher (flush pending events to ensure consistency)
// 6. Database pool
//
// Open sessions are not stopped. With the postgres driver they resume on the next start.
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Stream != nil {
		components.Stream.Stop()
	}

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	// Scheduler first so no new tick is queued behind the pool shutdown
	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.WorkerPool != nil {
		components.WorkerPool.Stop()
	}

	if components.RolloverWorker != nil {
		if err := components.RolloverWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgRolloverWorkerFailed, "error", err)
		}
	}

	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	if components.DB != nil {
		components.DB.Close()
	}

	slog.Info(LogMsgServerStopped)
}
