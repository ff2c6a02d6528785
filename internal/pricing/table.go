// Package pricing supplies per-tool hourly output rates.
package pricing

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Table is an in-memory rate table that can be changed at runtime
type Table struct {
	mu    sync.RWMutex
	rates map[domain.ResourceType]decimal.Decimal
}

// NewTable creates a table seeded with rates
func NewTable(rates map[domain.ResourceType]decimal.Decimal) *Table {
	t := &Table{rates: make(map[domain.ResourceType]decimal.Decimal, len(rates))}
	for r, v := range rates {
		t.rates[r] = v
	}
	return t
}

// PerToolRate returns the hourly output of one tool for resource
func (t *Table) PerToolRate(ctx context.Context, resource domain.ResourceType) (decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rate, ok := t.rates[resource]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrRateUnavailable, resource)
	}
	return rate, nil
}

// SetRate replaces the rate for resource. Sessions pick it up at their next settled hour.
func (t *Table) SetRate(resource domain.ResourceType, rate decimal.Decimal) error {
	if !resource.IsValid() {
		return fmt.Errorf("%w: unknown resource %q", domain.ErrInvalidInput, resource)
	}
	if rate.IsNegative() {
		return fmt.Errorf("%w: negative rate", domain.ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[resource] = rate
	return nil
}

// Rates returns a copy of the current table
func (t *Table) Rates() map[domain.ResourceType]decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[domain.ResourceType]decimal.Decimal, len(t.rates))
	for r, v := range t.rates {
		out[r] = v
	}
	return out
}
