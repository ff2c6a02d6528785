// Package inventory provides land and player-level lookups for mining.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
)

// Memory is an in-memory land and level directory
type Memory struct {
	mu     sync.RWMutex
	lands  map[string]domain.Land
	levels map[string]int
}

// NewMemory creates an empty directory
func NewMemory() *Memory {
	return &Memory{
		lands:  make(map[string]domain.Land),
		levels: make(map[string]int),
	}
}

// AddLand registers a land
func (m *Memory) AddLand(land domain.Land) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lands[land.ID] = land
}

// SetUserLevel sets a user's level
func (m *Memory) SetUserLevel(userID string, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[userID] = level
}

// GetLand returns a land by ID
func (m *Memory) GetLand(ctx context.Context, landID string) (*domain.Land, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	land, ok := m.lands[landID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrLandNotFound, landID)
	}
	return &land, nil
}

// GetUserLevel returns a user's level
func (m *Memory) GetUserLevel(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	level, ok := m.levels[userID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return level, nil
}
