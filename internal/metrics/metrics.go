package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Mining Metrics
var (
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSessionsStarted,
			Help: HelpTextSessionsStarted,
		},
		[]string{LabelResource},
	)

	SessionsStopped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameSessionsStopped,
			Help: HelpTextSessionsStopped,
		},
		[]string{LabelResource, LabelReason},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameActiveSessions,
			Help: HelpTextActiveSessions,
		},
	)

	HoursSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHoursSettled,
			Help: HelpTextHoursSettled,
		},
		[]string{LabelResource},
	)

	OutputRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOutputRequested,
			Help: HelpTextOutputRequested,
		},
		[]string{LabelResource},
	)

	OutputGranted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameOutputGranted,
			Help: HelpTextOutputGranted,
		},
		[]string{LabelResource},
	)

	FoodConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameFoodConsumed,
			Help: HelpTextFoodConsumed,
		},
	)

	TickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameTickDuration,
			Help:    HelpTextTickDuration,
			Buckets: TickLatencyBuckets,
		},
	)
)

// Emission Metrics
var (
	EmissionRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameEmissionRemaining,
			Help: HelpTextEmissionRemaining,
		},
		[]string{LabelResource},
	)

	EmissionExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEmissionExhausted,
			Help: HelpTextEmissionExhausted,
		},
		[]string{LabelResource},
	)
)
