package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/config"
	"github.com/service-lgtm/pw-next-sub000/internal/database/postgres"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/emission"
	"github.com/service-lgtm/pw-next-sub000/internal/eventlog"
	"github.com/service-lgtm/pw-next-sub000/internal/inventory"
	"github.com/service-lgtm/pw-next-sub000/internal/ledger"
	"github.com/service-lgtm/pw-next-sub000/internal/mining"
	"github.com/service-lgtm/pw-next-sub000/internal/toolpool"
)

// Seeder writes reference data into the stores
type Seeder interface {
	SetUserLevel(ctx context.Context, userID string, level int) error
	UpsertLand(ctx context.Context, land domain.Land) error
	UpsertTool(ctx context.Context, tool domain.Tool) error
	Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error
}

// ToolStore is the tool pool plus the full tool listing
type ToolStore interface {
	mining.ToolPool
	ListTools(ctx context.Context, userID string) ([]domain.Tool, error)
}

// Stores holds the collaborators of the mining engine for one store driver.
// Sessions and Emission are nil for the memory driver.
type Stores struct {
	Lands    inventory.Directory
	Tools    ToolStore
	Ledger   mining.Ledger
	Sessions mining.SessionStore
	Emission emission.Store
	EventLog eventlog.Repository
	Seeder   Seeder
}

// NewMemoryStores builds process-local stores
func NewMemoryStores(clk clock.Clock) *Stores {
	lands := inventory.NewMemory()
	tools := toolpool.NewMemory()
	balances := ledger.NewMemory()

	return &Stores{
		Lands:    lands,
		Tools:    tools,
		Ledger:   balances,
		EventLog: eventlog.NewMemoryRepository(clk),
		Seeder:   &memorySeeder{lands: lands, tools: tools, ledger: balances},
	}
}

// NewPostgresStores builds stores backed by the given pool
func NewPostgresStores(pool *pgxpool.Pool) *Stores {
	lands := postgres.NewLandRepository(pool)
	tools := postgres.NewToolRepository(pool)
	balances := postgres.NewLedgerRepository(pool)

	return &Stores{
		Lands:    lands,
		Tools:    tools,
		Ledger:   balances,
		Sessions: postgres.NewSessionRepository(pool),
		Emission: postgres.NewEmissionRepository(pool),
		EventLog: postgres.NewEventLogRepository(pool),
		Seeder:   &postgresSeeder{lands: lands, tools: tools, ledger: balances},
	}
}

// InitializeStores selects the stores for cfg.StoreDriver. pool is only used by the postgres driver.
func InitializeStores(cfg *config.Config, pool *pgxpool.Pool, clk clock.Clock) (*Stores, error) {
	var stores *Stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		stores = NewMemoryStores(clk)
	case config.StoreDriverPostgres:
		if pool == nil {
			return nil, fmt.Errorf("store driver %s requires a database pool", cfg.StoreDriver)
		}
		stores = NewPostgresStores(pool)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	slog.Info(LogMsgStoresInitialized, "driver", cfg.StoreDriver)
	return stores, nil
}

type memorySeeder struct {
	lands  *inventory.Memory
	tools  *toolpool.Memory
	ledger *ledger.Memory
}

func (s *memorySeeder) SetUserLevel(_ context.Context, userID string, level int) error {
	s.lands.SetUserLevel(userID, level)
	return nil
}

func (s *memorySeeder) UpsertLand(_ context.Context, land domain.Land) error {
	s.lands.AddLand(land)
	return nil
}

func (s *memorySeeder) UpsertTool(_ context.Context, tool domain.Tool) error {
	s.tools.Add(tool)
	return nil
}

func (s *memorySeeder) Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	return s.ledger.Credit(ctx, userID, resource, amount)
}

type postgresSeeder struct {
	lands  *postgres.LandRepository
	tools  *postgres.ToolRepository
	ledger *postgres.LedgerRepository
}

func (s *postgresSeeder) SetUserLevel(ctx context.Context, userID string, level int) error {
	return s.lands.SetUserLevel(ctx, userID, level)
}

func (s *postgresSeeder) UpsertLand(ctx context.Context, land domain.Land) error {
	return s.lands.UpsertLand(ctx, land)
}

func (s *postgresSeeder) UpsertTool(ctx context.Context, tool domain.Tool) error {
	return s.tools.UpsertTool(ctx, tool)
}

func (s *postgresSeeder) Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	return s.ledger.Credit(ctx, userID, resource, amount)
}
