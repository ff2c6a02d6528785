package mining

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

// LandDirectory resolves lands and player levels
type LandDirectory interface {
	GetLand(ctx context.Context, landID string) (*domain.Land, error)
	GetUserLevel(ctx context.Context, userID string) (int, error)
}

// ToolPool owns tool reservation and durability
type ToolPool interface {
	ListAvailable(ctx context.Context, userID string, category *domain.ToolCategory) ([]domain.Tool, error)
	CountIdle(ctx context.Context, userID string, category domain.ToolCategory) (int, error)
	GetTools(ctx context.Context, userID string, ids []string) ([]domain.Tool, error)
	Reserve(ctx context.Context, userID string, ids []string) error
	Release(ctx context.Context, userID string, ids []string, loss map[string]int) error
}

// Ledger holds resource balances
type Ledger interface {
	Balance(ctx context.Context, userID string, resource domain.ResourceType) (domain.LedgerEntry, error)
	Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error
	Debit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error
}

// Pricing supplies the hourly output of one tool. The rate may change between settlements.
type Pricing interface {
	PerToolRate(ctx context.Context, resource domain.ResourceType) (decimal.Decimal, error)
}

// EmissionCaps is the system-wide daily cap service. Uncapped resources pass through TryConsume.
type EmissionCaps interface {
	IsCapped(resource domain.ResourceType) bool
	TryConsume(ctx context.Context, resource domain.ResourceType, amount decimal.Decimal) decimal.Decimal
	Status(ctx context.Context, resource domain.ResourceType) (domain.CapStatus, bool)
	Statuses(ctx context.Context) []domain.CapStatus
}

// SessionStore persists session snapshots so a restart resumes open sessions
type SessionStore interface {
	SaveSession(ctx context.Context, session *domain.MiningSession) error
	ListOpenSessions(ctx context.Context) ([]*domain.MiningSession, error)
}

// SessionCloser is implemented by stores that can close a session in one
// transaction, so a crash never leaves output credited on an open session
type SessionCloser interface {
	CloseSession(ctx context.Context, close domain.SessionClose) error
}

// SessionLoader is implemented by stores that keep closed sessions, so a
// settlement evicted from memory can still be returned by Stop
type SessionLoader interface {
	GetSession(ctx context.Context, sessionID string) (*domain.MiningSession, error)
}

// Publisher delivers domain events
type Publisher interface {
	PublishWithRetry(ctx context.Context, evt event.Event)
}
