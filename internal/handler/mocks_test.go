package handler

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/eventlog"
	"github.com/service-lgtm/pw-next-sub000/internal/inventory"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) StartSession(ctx context.Context, userID, landID string, toolIDs []string) (*domain.MiningSession, error) {
	args := m.Called(ctx, userID, landID, toolIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MiningSession), args.Error(1)
}

func (m *MockSessionService) StopSession(ctx context.Context, userID, sessionID string) (*domain.Settlement, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSessionService) StopAll(ctx context.Context, userID string) *domain.StopAllResult {
	args := m.Called(ctx, userID)
	return args.Get(0).(*domain.StopAllResult)
}

func (m *MockSessionService) AddTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error) {
	args := m.Called(ctx, userID, sessionID, toolIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MiningSession), args.Error(1)
}

func (m *MockSessionService) RemoveTools(ctx context.Context, userID, sessionID string, toolIDs []string) (*domain.MiningSession, error) {
	args := m.Called(ctx, userID, sessionID, toolIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MiningSession), args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, userID, sessionID string) (*domain.MiningSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MiningSession), args.Error(1)
}

func (m *MockSessionService) List(ctx context.Context, userID string, includeClosed bool) []*domain.MiningSession {
	args := m.Called(ctx, userID, includeClosed)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]*domain.MiningSession)
}

func (m *MockSessionService) Summarize(ctx context.Context, userID string) *domain.MiningSummary {
	args := m.Called(ctx, userID)
	return args.Get(0).(*domain.MiningSummary)
}

type MockPreflighter struct {
	mock.Mock
}

func (m *MockPreflighter) Check(ctx context.Context, userID, landID string, candidateToolCount int) (*domain.PreflightResult, error) {
	args := m.Called(ctx, userID, landID, candidateToolCount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PreflightResult), args.Error(1)
}

type MockToolLister struct {
	mock.Mock
}

func (m *MockToolLister) ListAvailable(ctx context.Context, userID string, category *domain.ToolCategory) ([]domain.Tool, error) {
	args := m.Called(ctx, userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Tool), args.Error(1)
}

type MockEmissionReader struct {
	mock.Mock
}

func (m *MockEmissionReader) Statuses(ctx context.Context) []domain.CapStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.CapStatus)
}

type MockRateAdmin struct {
	mock.Mock
}

func (m *MockRateAdmin) Rates() map[domain.ResourceType]decimal.Decimal {
	return m.Called().Get(0).(map[domain.ResourceType]decimal.Decimal)
}

func (m *MockRateAdmin) SetRate(resource domain.ResourceType, rate decimal.Decimal) error {
	return m.Called(resource, rate).Error(0)
}

type MockLimitSetter struct {
	mock.Mock
}

func (m *MockLimitSetter) SetLimit(ctx context.Context, resource domain.ResourceType, limit decimal.Decimal) (domain.CapStatus, error) {
	args := m.Called(ctx, resource, limit)
	return args.Get(0).(domain.CapStatus), args.Error(1)
}

type MockRolloverTrigger struct {
	mock.Mock
}

func (m *MockRolloverTrigger) TriggerNow(ctx context.Context) []domain.CapStatus {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.CapStatus)
}

type MockCacheStats struct {
	mock.Mock
}

func (m *MockCacheStats) Stats() inventory.CacheStats {
	return m.Called().Get(0).(inventory.CacheStats)
}

type MockHistoryReader struct {
	mock.Mock
}

func (m *MockHistoryReader) History(ctx context.Context, userID, eventType string, limit int) ([]eventlog.Event, error) {
	args := m.Called(ctx, userID, eventType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]eventlog.Event), args.Error(1)
}
