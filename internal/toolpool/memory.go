// Package toolpool tracks tool ownership, reservation and durability in memory.
package toolpool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Memory is an in-memory tool pool. All reservation changes happen under one lock
// so a tool can never be handed to two sessions.
type Memory struct {
	mu    sync.Mutex
	tools map[string]*domain.Tool
}

// NewMemory creates an empty pool
func NewMemory() *Memory {
	return &Memory{tools: make(map[string]*domain.Tool)}
}

// Add registers or replaces a tool
func (m *Memory) Add(tool domain.Tool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := tool
	m.tools[t.ID] = &t
}

// SortForSelection orders tools by durability descending, then ID ascending
func SortForSelection(tools []domain.Tool) {
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Durability != tools[j].Durability {
			return tools[i].Durability > tools[j].Durability
		}
		return tools[i].ID < tools[j].ID
	})
}

// ListAvailable returns the user's idle tools, optionally filtered by category
func (m *Memory) ListAvailable(ctx context.Context, userID string, category *domain.ToolCategory) ([]domain.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Tool, 0)
	for _, t := range m.tools {
		if t.OwnerID != userID || !t.Idle() {
			continue
		}
		if category != nil && t.Category != *category {
			continue
		}
		out = append(out, *t)
	}
	SortForSelection(out)
	return out, nil
}

// CountIdle returns how many idle tools of a category the user owns
func (m *Memory) CountIdle(ctx context.Context, userID string, category domain.ToolCategory) (int, error) {
	tools, err := m.ListAvailable(ctx, userID, &category)
	if err != nil {
		return 0, err
	}
	return len(tools), nil
}

// GetTools returns the user's tools by ID in the requested order
func (m *Memory) GetTools(ctx context.Context, userID string, ids []string) ([]domain.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Tool, 0, len(ids))
	for _, id := range ids {
		t, ok := m.tools[id]
		if !ok || t.OwnerID != userID {
			return nil, fmt.Errorf("%w: %s", domain.ErrToolUnavailable, id)
		}
		out = append(out, *t)
	}
	return out, nil
}

// Reserve marks every tool in use, or none of them
func (m *Memory) Reserve(ctx context.Context, userID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate tool %s", domain.ErrToolUnavailable, id)
		}
		seen[id] = struct{}{}

		t, ok := m.tools[id]
		if !ok || t.OwnerID != userID || !t.Idle() {
			return fmt.Errorf("%w: %s", domain.ErrToolUnavailable, id)
		}
	}

	for _, id := range ids {
		m.tools[id].InUse = true
	}
	return nil
}

// Release frees tools and applies durability loss keyed by tool ID
func (m *Memory) Release(ctx context.Context, userID string, ids []string, loss map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		t, ok := m.tools[id]
		if !ok || t.OwnerID != userID {
			return fmt.Errorf("%w: %s", domain.ErrToolUnavailable, id)
		}
	}

	for _, id := range ids {
		t := m.tools[id]
		t.InUse = false
		t.ApplyWear(loss[id])
	}
	return nil
}

// ListTools returns every tool the user owns, in selection order
func (m *Memory) ListTools(ctx context.Context, userID string) ([]domain.Tool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Tool, 0)
	for _, t := range m.tools {
		if t.OwnerID == userID {
			out = append(out, *t)
		}
	}
	SortForSelection(out)
	return out, nil
}
