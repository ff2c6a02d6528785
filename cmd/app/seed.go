package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/service-lgtm/pw-next-sub000/internal/bootstrap"
	"github.com/service-lgtm/pw-next-sub000/internal/config"
	"github.com/service-lgtm/pw-next-sub000/internal/database"
)

type dbPool = *pgxpool.Pool

// withDatabase loads config, opens the pool and runs fn against it
func withDatabase(ctx context.Context, fn func(ctx context.Context, cfg *config.Config, db dbPool) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	initLogger(cfg)

	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load lands, levels, tools and balances into postgres",
		Long: "Applies a JSON seed file to the postgres stores after migrating. " +
			"Balances are credited, so running the same file twice doubles them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config, db dbPool) error {
				if file == "" {
					file = cfg.SeedFile
				}
				if file == "" {
					return fmt.Errorf("no seed file: pass --file or set SEED_FILE")
				}
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				return applySeedFile(ctx, bootstrap.NewPostgresStores(db).Seeder, file)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (defaults to SEED_FILE)")

	return cmd
}

func applySeedFile(ctx context.Context, seeder bootstrap.Seeder, path string) error {
	seed, err := bootstrap.LoadSeed(path)
	if err != nil {
		return err
	}
	_, err = bootstrap.ApplySeed(ctx, seeder, seed)
	return err
}
