package mining

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/emission"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
	"github.com/service-lgtm/pw-next-sub000/internal/inventory"
	"github.com/service-lgtm/pw-next-sub000/internal/ledger"
	"github.com/service-lgtm/pw-next-sub000/internal/pricing"
	"github.com/service-lgtm/pw-next-sub000/internal/toolpool"
)

const testUser = "user-1"

var testStart = time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) PublishWithRetry(ctx context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) count(t event.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// flakyLedger fails Credit while failCredits > 0
type flakyLedger struct {
	*ledger.Memory
	mu          sync.Mutex
	failCredits int
	credits     int
}

func (l *flakyLedger) Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	l.mu.Lock()
	if l.failCredits > 0 {
		l.failCredits--
		l.mu.Unlock()
		return errors.New("wallet unavailable")
	}
	l.credits++
	l.mu.Unlock()
	return l.Memory.Credit(ctx, userID, resource, amount)
}

// brokenDebitLedger fails every debit with an outage error
type brokenDebitLedger struct {
	*flakyLedger
}

func (l *brokenDebitLedger) Debit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	return errors.New("ledger timeout")
}

type fixture struct {
	ctx    context.Context
	clk    *clock.Fake
	lands  *inventory.Memory
	tools  *toolpool.Memory
	ledger *flakyLedger
	prices *pricing.Table
	yld    *emission.Counter
	caps   *emission.Registry
	pub    *recordingPublisher
	reg    *Registry
	cfg    Config

	nextTool int
}

func newFixture(t *testing.T, yldLimit int64) *fixture {
	t.Helper()
	f := &fixture{
		ctx:    context.Background(),
		clk:    clock.NewFake(testStart),
		lands:  inventory.NewMemory(),
		tools:  toolpool.NewMemory(),
		ledger: &flakyLedger{Memory: ledger.NewMemory()},
		prices: pricing.NewTable(map[domain.ResourceType]decimal.Decimal{
			domain.ResourceYLD:   dec(1),
			domain.ResourceIron:  dec(3),
			domain.ResourceWood:  dec(2),
			domain.ResourceStone: dec(2),
			domain.ResourceFood:  dec(4),
		}),
		pub: &recordingPublisher{},
		cfg: DefaultConfig(),
	}
	f.yld = emission.NewCounter(domain.ResourceYLD, dec(yldLimit), time.FixedZone("UTC+8", 8*3600), f.clk)
	f.caps = emission.NewRegistry(f.yld)

	f.lands.AddLand(domain.Land{ID: "yld-land", OwnerID: testUser, Category: domain.LandYLDMine})
	f.lands.AddLand(domain.Land{ID: "ore-land", OwnerID: testUser, Category: domain.LandOreMine})
	f.lands.AddLand(domain.Land{ID: "forest", OwnerID: testUser, Category: domain.LandForest})
	f.lands.AddLand(domain.Land{ID: "town", OwnerID: testUser, Category: domain.LandUrban})
	f.lands.SetUserLevel(testUser, 7)

	f.reg = NewRegistry(Deps{
		Lands:     f.lands,
		Tools:     f.tools,
		Ledger:    f.ledger,
		Pricing:   f.prices,
		Caps:      f.caps,
		Publisher: f.pub,
		Clock:     f.clk,
	}, f.cfg)
	return f
}

func (f *fixture) addTools(category domain.ToolCategory, n int, durability int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		f.nextTool++
		id := fmt.Sprintf("%s-%03d", category, f.nextTool)
		f.tools.Add(domain.Tool{
			ID:            id,
			OwnerID:       testUser,
			Category:      category,
			Status:        domain.ToolStatusNormal,
			Durability:    durability,
			MaxDurability: durability,
		})
		ids = append(ids, id)
	}
	return ids
}

func (f *fixture) giveFood(n int64) {
	_ = f.ledger.Memory.Credit(f.ctx, testUser, domain.ResourceFood, dec(n))
}

func (f *fixture) balance(resource domain.ResourceType) decimal.Decimal {
	e, _ := f.ledger.Balance(f.ctx, testUser, resource)
	return e.Total
}

func (f *fixture) session(t *testing.T, id string) *Session {
	t.Helper()
	s, err := f.reg.lookup(f.ctx, testUser, id)
	if err != nil {
		t.Fatalf("session %s not found: %v", id, err)
	}
	return s
}
