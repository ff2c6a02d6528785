// Package ledger provides the in-memory resource ledger used by the memory store driver.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

type key struct {
	userID   string
	resource domain.ResourceType
}

// Memory is a mutex-guarded ledger keyed by user and resource
type Memory struct {
	mu      sync.Mutex
	entries map[key]*domain.LedgerEntry
}

// NewMemory creates an empty ledger
func NewMemory() *Memory {
	return &Memory{entries: make(map[key]*domain.LedgerEntry)}
}

func (m *Memory) entry(userID string, resource domain.ResourceType) *domain.LedgerEntry {
	k := key{userID: userID, resource: resource}
	e, ok := m.entries[k]
	if !ok {
		e = &domain.LedgerEntry{UserID: userID, Resource: resource}
		m.entries[k] = e
	}
	return e
}

// Balance returns the entry for a resource; unknown entries are zero
func (m *Memory) Balance(ctx context.Context, userID string, resource domain.ResourceType) (domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key{userID: userID, resource: resource}]; ok {
		return *e, nil
	}
	return domain.LedgerEntry{UserID: userID, Resource: resource}, nil
}

// Credit adds amount to the total
func (m *Memory) Credit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative credit %s", domain.ErrInvalidInput, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(userID, resource)
	e.Total = e.Total.Add(amount)
	return nil
}

// Debit removes amount from the available balance, or fails without change
func (m *Memory) Debit(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative debit %s", domain.ErrInvalidInput, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(userID, resource)
	if e.Available().LessThan(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", domain.ErrInsufficientQuantity, resource, e.Available(), amount)
	}
	e.Total = e.Total.Sub(amount)
	return nil
}

// Freeze moves part of the available balance into the frozen bucket
func (m *Memory) Freeze(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(userID, resource)
	if amount.IsNegative() || e.Available().LessThan(amount) {
		return fmt.Errorf("%w: cannot freeze %s %s", domain.ErrInsufficientQuantity, amount, resource)
	}
	e.Frozen = e.Frozen.Add(amount)
	return nil
}

// Unfreeze returns frozen balance to available, clamped at zero
func (m *Memory) Unfreeze(ctx context.Context, userID string, resource domain.ResourceType, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.entry(userID, resource)
	e.Frozen = decimal.Max(decimal.Zero, e.Frozen.Sub(amount))
	return nil
}
