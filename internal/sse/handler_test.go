package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

const testUserHeader = "X-User-ID"

// readEvent returns the event name of the next SSE message
func readEvent(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	var name string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		if line == "" {
			return name
		}
		if strings.HasPrefix(line, "event: ") {
			name = strings.TrimPrefix(line, "event: ")
		}
	}
}

func TestHandler_RequiresUser(t *testing.T) {
	hub := startHub(t)

	rec := httptest.NewRecorder()
	Handler(hub, testUserHeader)(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_StreamsBusEvents(t *testing.T) {
	hub := startHub(t)
	bus := event.NewMemoryBus()
	NewSubscriber(hub, bus).Subscribe()

	srv := httptest.NewServer(Handler(hub, testUserHeader))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?types=session.started", nil)
	require.NoError(t, err)
	req.Header.Set(testUserHeader, "u1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, EventTypeConnected, readEvent(t, reader))
	waitForClients(t, hub, 1)

	// Filtered out by type, then one for another user, then the match
	require.NoError(t, bus.Publish(ctx, event.NewHourSettledEvent(domain.HourSettledPayload{UserID: "u1"})))
	require.NoError(t, bus.Publish(ctx, event.NewSessionStartedEvent(&domain.MiningSession{ID: "s0", UserID: "u2"})))
	require.NoError(t, bus.Publish(ctx, event.NewSessionStartedEvent(&domain.MiningSession{ID: "s1", UserID: "u1"})))

	assert.Equal(t, string(event.SessionStarted), readEvent(t, reader))
}
