// Package emission enforces system-wide daily production caps.
package emission

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// Store persists the produced amount per resource and day
type Store interface {
	LoadProduced(ctx context.Context, resource domain.ResourceType, day string) (decimal.Decimal, bool, error)
	SaveProduced(ctx context.Context, resource domain.ResourceType, day string, produced decimal.Decimal) error
}

// Observer is notified about cap transitions. Calls happen outside the counter lock.
type Observer interface {
	CapExhausted(ctx context.Context, status domain.CapStatus)
	CapRolledOver(ctx context.Context, previous, current domain.CapStatus)
}

// DayKey returns the calendar day of t in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// NextBoundary returns the next midnight in loc strictly after t
func NextBoundary(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return midnight.AddDate(0, 0, 1)
}

// Counter is one resource's daily cap. Every access first checks the day key
// and resets the produced amount when the day has changed.
type Counter struct {
	mu sync.Mutex

	resource domain.ResourceType
	limit    decimal.Decimal
	loc      *time.Location
	clock    clock.Clock
	store    Store
	observer Observer

	day       string
	produced  decimal.Decimal
	loaded    bool
	exhausted bool
}

// CounterOption configures a Counter
type CounterOption func(*Counter)

// WithStore enables write-through persistence
func WithStore(s Store) CounterOption {
	return func(c *Counter) { c.store = s }
}

// WithObserver registers a transition observer
func WithObserver(o Observer) CounterOption {
	return func(c *Counter) { c.observer = o }
}

// NewCounter creates a counter for resource with a daily limit in loc
func NewCounter(resource domain.ResourceType, limit decimal.Decimal, loc *time.Location, clk clock.Clock, opts ...CounterOption) *Counter {
	if loc == nil {
		loc = time.UTC
	}
	c := &Counter{
		resource: resource,
		limit:    limit,
		loc:      loc,
		clock:    clk,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resource returns the capped resource
func (c *Counter) Resource() domain.ResourceType {
	return c.resource
}

// Location returns the zone the day boundary is computed in
func (c *Counter) Location() *time.Location {
	return c.loc
}

// rollover must be called with mu held. It returns the previous day's status
// when the day changed after the counter had already been used.
func (c *Counter) rollover(ctx context.Context) (domain.CapStatus, bool) {
	today := DayKey(c.clock.Now(), c.loc)
	var previous domain.CapStatus
	rolled := false

	if today != c.day {
		if c.day != "" {
			previous = c.statusLocked()
			rolled = true
		}
		c.day = today
		c.produced = decimal.Zero
		c.loaded = false
		c.exhausted = false
	}

	if !c.loaded {
		c.loaded = true
		if c.store != nil {
			produced, ok, err := c.store.LoadProduced(ctx, c.resource, today)
			if err != nil {
				logger.FromContext(ctx).Warn(LogMsgStoreLoadFailed, "resource", c.resource, "day", today, "error", err)
			} else if ok {
				c.produced = produced
				c.exhausted = !c.remainingLocked().IsPositive()
			}
		}
	}
	return previous, rolled
}

func (c *Counter) remainingLocked() decimal.Decimal {
	return decimal.Max(decimal.Zero, c.limit.Sub(c.produced))
}

func (c *Counter) statusLocked() domain.CapStatus {
	remaining := c.remainingLocked()
	return domain.CapStatus{
		Resource:  c.resource,
		Day:       c.day,
		Limit:     c.limit,
		Produced:  c.produced,
		Remaining: remaining,
		Exhausted: !remaining.IsPositive(),
	}
}

// notify delivers observer callbacks after the lock is released
func (c *Counter) notify(ctx context.Context, previous domain.CapStatus, rolled bool, current domain.CapStatus, justExhausted bool) {
	if rolled {
		logger.FromContext(ctx).Info(LogMsgCapRolledOver, "resource", c.resource, "previous_day", previous.Day, "day", current.Day)
	}
	if c.observer == nil {
		return
	}
	if rolled {
		c.observer.CapRolledOver(ctx, previous, current)
	}
	if justExhausted {
		c.observer.CapExhausted(ctx, current)
	}
}

// TryConsume grants min(amount, remaining) and records it. It never errors
// and never grants more than what is left for today.
func (c *Counter) TryConsume(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	c.mu.Lock()
	previous, rolled := c.rollover(ctx)

	granted := decimal.Zero
	if amount.IsPositive() {
		granted = decimal.Min(amount, c.remainingLocked())
	}

	justExhausted := false
	if granted.IsPositive() {
		c.produced = c.produced.Add(granted)
		if c.store != nil {
			if err := c.store.SaveProduced(ctx, c.resource, c.day, c.produced); err != nil {
				logger.FromContext(ctx).Error(LogMsgStoreSaveFailed, "resource", c.resource, "day", c.day, "error", err)
			}
		}
	}
	if !c.exhausted && !c.remainingLocked().IsPositive() {
		c.exhausted = true
		justExhausted = true
	}
	current := c.statusLocked()
	c.mu.Unlock()

	if justExhausted {
		logger.FromContext(ctx).Info(LogMsgCapExhausted, "resource", c.resource, "day", current.Day)
	}
	c.notify(ctx, previous, rolled, current, justExhausted)
	return granted
}

// Remaining returns what can still be granted today
func (c *Counter) Remaining(ctx context.Context) decimal.Decimal {
	return c.Status(ctx).Remaining
}

// Status returns a snapshot of today's counter
func (c *Counter) Status(ctx context.Context) domain.CapStatus {
	c.mu.Lock()
	previous, rolled := c.rollover(ctx)
	current := c.statusLocked()
	c.mu.Unlock()

	c.notify(ctx, previous, rolled, current, false)
	return current
}

// Rollover forces the day check and reports whether the day changed
func (c *Counter) Rollover(ctx context.Context) (domain.CapStatus, bool) {
	c.mu.Lock()
	previous, rolled := c.rollover(ctx)
	current := c.statusLocked()
	c.mu.Unlock()

	c.notify(ctx, previous, rolled, current, false)
	return current, rolled
}

// SetLimit changes today's limit. Produced is kept, so lowering the limit
// below it exhausts the cap.
func (c *Counter) SetLimit(ctx context.Context, limit decimal.Decimal) {
	c.mu.Lock()
	previous, rolled := c.rollover(ctx)
	c.limit = limit
	c.exhausted = !c.remainingLocked().IsPositive()
	current := c.statusLocked()
	c.mu.Unlock()

	c.notify(ctx, previous, rolled, current, false)
}
