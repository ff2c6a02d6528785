package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/service-lgtm/pw-next-sub000/internal/bootstrap"
	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/config"
	"github.com/service-lgtm/pw-next-sub000/internal/database"
	"github.com/service-lgtm/pw-next-sub000/internal/handler"
)

const shutdownTimeout = 30 * time.Second

const (
	logMsgShutdownSignal = "Shutdown signal received"
	logMsgServerFailed   = "Server failed"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the session tick",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply database migrations at startup")

	return cmd
}

func runServe(skipMigrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ValidateEnv(); err != nil {
		return err
	}
	if cfg.Version == config.DefaultVersion {
		cfg.Version = handler.Version
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if cfg.StoreDriver == config.StoreDriverPostgres {
		pool, err = openDatabase(ctx, cfg, !skipMigrate)
		if err != nil {
			return err
		}
	}

	app, err := bootstrap.NewApp(cfg, pool, clock.RealClock{})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return err
	}

	// Postgres data is seeded with the seed command; reseeding on every start would double balances
	if cfg.SeedFile != "" && cfg.StoreDriver == config.StoreDriverMemory {
		if err := applySeedFile(ctx, app.Stores.Seeder, cfg.SeedFile); err != nil {
			app.Shutdown(context.Background())
			return err
		}
	}

	if err := app.StartBackground(ctx); err != nil {
		app.Shutdown(context.Background())
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := app.Server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info(logMsgShutdownSignal)
	case runErr = <-serverErr:
		slog.Error(logMsgServerFailed, "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.Shutdown(shutdownCtx)

	return runErr
}

func poolConfig(cfg *config.Config) database.PoolConfig {
	return database.PoolConfig{
		ConnString:      cfg.GetDBConnString(),
		MaxConns:        cfg.DBMaxConns,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		MaxConnLifetime: cfg.DBMaxConnLifetime,
	}
}

// openDatabase connects to postgres and optionally applies the embedded migrations
func openDatabase(ctx context.Context, cfg *config.Config, migrate bool) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}
