package emission

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Registry holds one counter per capped resource. Uncapped resources pass through.
type Registry struct {
	mu       sync.RWMutex
	counters map[domain.ResourceType]*Counter
}

// NewRegistry creates a registry from counters
func NewRegistry(counters ...*Counter) *Registry {
	r := &Registry{counters: make(map[domain.ResourceType]*Counter)}
	for _, c := range counters {
		r.Register(c)
	}
	return r
}

// Register adds or replaces the counter for its resource
func (r *Registry) Register(c *Counter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[c.Resource()] = c
}

// Counter returns the counter for resource, if capped
func (r *Registry) Counter(resource domain.ResourceType) (*Counter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.counters[resource]
	return c, ok
}

// IsCapped reports whether resource has a daily cap
func (r *Registry) IsCapped(resource domain.ResourceType) bool {
	_, ok := r.Counter(resource)
	return ok
}

// TryConsume grants amount against the resource's cap; uncapped resources get it all
func (r *Registry) TryConsume(ctx context.Context, resource domain.ResourceType, amount decimal.Decimal) decimal.Decimal {
	c, ok := r.Counter(resource)
	if !ok {
		return amount
	}
	return c.TryConsume(ctx, amount)
}

// Status returns the cap status for a capped resource
func (r *Registry) Status(ctx context.Context, resource domain.ResourceType) (domain.CapStatus, bool) {
	c, ok := r.Counter(resource)
	if !ok {
		return domain.CapStatus{}, false
	}
	return c.Status(ctx), true
}

// SetLimit changes the daily limit of a capped resource
func (r *Registry) SetLimit(ctx context.Context, resource domain.ResourceType, limit decimal.Decimal) (domain.CapStatus, error) {
	if limit.IsNegative() {
		return domain.CapStatus{}, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	c, ok := r.Counter(resource)
	if !ok {
		return domain.CapStatus{}, fmt.Errorf("%w: %s has no daily cap", domain.ErrInvalidInput, resource)
	}
	c.SetLimit(ctx, limit)
	return c.Status(ctx), nil
}

func (r *Registry) snapshot() []*Counter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Counter, 0, len(r.counters))
	for _, c := range r.counters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource() < out[j].Resource() })
	return out
}

// Statuses returns every capped resource's status ordered by resource
func (r *Registry) Statuses(ctx context.Context) []domain.CapStatus {
	counters := r.snapshot()
	out := make([]domain.CapStatus, 0, len(counters))
	for _, c := range counters {
		out = append(out, c.Status(ctx))
	}
	return out
}

// RolloverAll forces the day check on every counter and returns those that rolled
func (r *Registry) RolloverAll(ctx context.Context) []domain.CapStatus {
	var rolled []domain.CapStatus
	for _, c := range r.snapshot() {
		if status, ok := c.Rollover(ctx); ok {
			rolled = append(rolled, status)
		}
	}
	return rolled
}

// Location returns the boundary zone shared by the counters, UTC when empty
func (r *Registry) Location() *time.Location {
	counters := r.snapshot()
	if len(counters) == 0 {
		return time.UTC
	}
	return counters[0].Location()
}
