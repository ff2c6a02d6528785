package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-lgtm/pw-next-sub000/internal/domain"
	"github.com/service-lgtm/pw-next-sub000/internal/event"
)

func TestEventMetricsCollector_HourSettled(t *testing.T) {
	bus := event.NewMemoryBus()
	require.NoError(t, NewEventMetricsCollector().Register(bus))

	hours := testutil.ToFloat64(HoursSettled.WithLabelValues("stone"))
	granted := testutil.ToFloat64(OutputGranted.WithLabelValues("stone"))

	evt := event.NewHourSettledEvent(domain.HourSettledPayload{
		SessionID:    "s-1",
		Resource:     domain.ResourceStone,
		Hour:         1,
		Requested:    decimal.NewFromInt(12),
		Granted:      decimal.NewFromInt(12),
		FoodConsumed: decimal.NewFromInt(4),
		Timestamp:    time.Now().Unix(),
	})
	require.NoError(t, bus.Publish(context.Background(), evt))

	assert.Equal(t, hours+1, testutil.ToFloat64(HoursSettled.WithLabelValues("stone")))
	assert.Equal(t, granted+12, testutil.ToFloat64(OutputGranted.WithLabelValues("stone")))
}

func TestEventMetricsCollector_StopReasons(t *testing.T) {
	c := NewEventMetricsCollector()
	before := testutil.ToFloat64(SessionsStopped.WithLabelValues("iron", "food_exhausted"))

	evt := event.NewSessionStoppedEvent(domain.Settlement{
		SessionID: "s-2",
		Resource:  domain.ResourceIron,
		Reason:    domain.StopReasonFoodExhausted,
		Output:    decimal.Zero,
		ClosedAt:  time.Now(),
	})
	require.NoError(t, c.HandleEvent(context.Background(), evt))

	assert.Equal(t, before+1, testutil.ToFloat64(SessionsStopped.WithLabelValues("iron", "food_exhausted")))
}

func TestEventMetricsCollector_Emission(t *testing.T) {
	c := NewEventMetricsCollector()
	before := testutil.ToFloat64(EmissionExhausted.WithLabelValues("yld"))

	status := domain.CapStatus{Resource: domain.ResourceYLD, Limit: decimal.NewFromInt(10), Produced: decimal.NewFromInt(10), Remaining: decimal.Zero, Exhausted: true}
	require.NoError(t, c.HandleEvent(context.Background(), event.NewEmissionExhaustedEvent(status)))
	assert.Equal(t, before+1, testutil.ToFloat64(EmissionExhausted.WithLabelValues("yld")))
	assert.Equal(t, 0.0, testutil.ToFloat64(EmissionRemaining.WithLabelValues("yld")))

	status.Produced, status.Remaining, status.Exhausted = decimal.Zero, decimal.NewFromInt(10), false
	require.NoError(t, c.HandleEvent(context.Background(), event.NewEmissionRolledOverEvent(status)))
	assert.Equal(t, 10.0, testutil.ToFloat64(EmissionRemaining.WithLabelValues("yld")))
	assert.Equal(t, before+1, testutil.ToFloat64(EmissionExhausted.WithLabelValues("yld")))
}

func TestEventMetricsCollector_BadPayloadCountsError(t *testing.T) {
	c := NewEventMetricsCollector()
	before := testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.HourSettled)))

	err := c.HandleEvent(context.Background(), event.Event{Type: event.HourSettled, Payload: "garbage"})

	assert.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(EventHandlerErrors.WithLabelValues(string(event.HourSettled))))
}

func TestObserveEmission(t *testing.T) {
	ObserveEmission([]domain.CapStatus{{Resource: domain.ResourceYLD, Remaining: decimal.RequireFromString("42.5")}})
	assert.Equal(t, 42.5, testutil.ToFloat64(EmissionRemaining.WithLabelValues("yld")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/sessions/{id}", "418"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/sessions/{id}", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(HTTPRequestsInFlight))
}
