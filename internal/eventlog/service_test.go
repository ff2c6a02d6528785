package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

// MockEventBus is a mock implementation of event.Bus
type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, evt event.Event) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(eventType event.Type, handler event.Handler) {
	m.Called(eventType, handler)
}

func TestService_Subscribe(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	mockBus := new(MockEventBus)

	for _, et := range LoggedEventTypes {
		mockBus.On("Subscribe", et, mock.Anything).Return()
	}

	err := service.Subscribe(mockBus)
	assert.NoError(t, err)
	mockBus.AssertExpectations(t)
	mockBus.AssertNotCalled(t, "Subscribe", event.HourSettled, mock.Anything)
}

func TestService_HandleEvent_SessionStopped(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo).(*service)
	ctx := context.Background()

	evt := event.NewSessionStoppedEvent(domain.Settlement{
		SessionID:    "s-1",
		UserID:       "user123",
		Resource:     domain.ResourceIron,
		SettledHours: 3,
		Output:       decimal.NewFromInt(12),
		Reason:       domain.StopReasonManual,
		ClosedAt:     time.Unix(1700000000, 0),
	})

	userID := "user123"
	mockRepo.On("LogEvent", ctx, string(event.SessionStopped), &userID,
		mock.MatchedBy(func(p map[string]interface{}) bool {
			settlement, ok := p["settlement"].(map[string]interface{})
			return ok && settlement["session_id"] == "s-1" && settlement["output"] == "12"
		}),
		mock.Anything).Return(nil)

	err := svc.handleEvent(ctx, evt)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestService_HandleEvent_EmissionHasNoUser(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo).(*service)
	ctx := context.Background()

	evt := event.NewEmissionExhaustedEvent(domain.CapStatus{Resource: domain.ResourceYLD, Day: "2025-06-01"})
	mockRepo.On("LogEvent", ctx, string(event.EmissionExhausted), (*string)(nil), mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.handleEvent(ctx, evt))
	mockRepo.AssertExpectations(t)
}

func TestService_HandleEvent_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo).(*service)

	mockRepo.On("LogEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("disk full"))

	evt := event.NewSessionStartedEvent(&domain.MiningSession{ID: "s-2", UserID: "u"})
	assert.Error(t, svc.handleEvent(context.Background(), evt))
}

func TestService_History_ClampsLimit(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetEvents", ctx, mock.MatchedBy(func(f EventFilter) bool {
		return f.Limit == MaxHistoryLimit && *f.UserID == "u-1" && f.EventType == nil
	})).Return([]Event{}, nil).Once()
	mockRepo.On("GetEvents", ctx, mock.MatchedBy(func(f EventFilter) bool {
		return f.Limit == DefaultHistoryLimit && f.EventType != nil && *f.EventType == "session.stopped"
	})).Return([]Event{}, nil).Once()

	_, err := service.History(ctx, "u-1", "", 10_000)
	require.NoError(t, err)
	_, err = service.History(ctx, "u-1", "session.stopped", 0)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestService_CleanupOldEvents(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CleanupOldEvents", ctx, 10).Return(int64(5), nil)

	count, err := service.CleanupOldEvents(ctx, 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), count)
	mockRepo.AssertExpectations(t)
}

func TestService_EndToEndWithMemoryBus(t *testing.T) {
	repo := NewMemoryRepository(nil)
	svc := NewService(repo)
	bus := event.NewMemoryBus()
	require.NoError(t, svc.Subscribe(bus))

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, event.NewSessionStartedEvent(&domain.MiningSession{ID: "s-1", UserID: "alice"})))
	require.NoError(t, bus.Publish(ctx, event.NewSessionStartedEvent(&domain.MiningSession{ID: "s-2", UserID: "bob"})))

	history, err := svc.History(ctx, "alice", "", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "s-1", history[0].Payload["session_id"])
}
