package eventlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-lgtm/pw-next-sub000/internal/clock"
)

func TestMemoryRepository_FilterAndCleanup(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	repo := NewMemoryRepository(clk)
	ctx := context.Background()

	alice, bob := "alice", "bob"
	require.NoError(t, repo.LogEvent(ctx, "session.started", &alice, map[string]interface{}{"n": 1}, nil))
	clk.Advance(48 * time.Hour)
	require.NoError(t, repo.LogEvent(ctx, "session.stopped", &alice, map[string]interface{}{"n": 2}, nil))
	require.NoError(t, repo.LogEvent(ctx, "session.started", &bob, map[string]interface{}{"n": 3}, nil))

	events, err := repo.GetEvents(ctx, EventFilter{UserID: &alice})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "session.stopped", events[0].EventType, "newest first")

	started := "session.started"
	events, err = repo.GetEvents(ctx, EventFilter{EventType: &started, Limit: 1})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, &bob, events[0].UserID)

	deleted, err := repo.CleanupOldEvents(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err = repo.GetEvents(ctx, EventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}
