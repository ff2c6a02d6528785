package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Mining metric names
const (
	MetricNameSessionsStarted   = "mining_sessions_started_total"
	MetricNameSessionsStopped   = "mining_sessions_stopped_total"
	MetricNameActiveSessions    = "mining_sessions_active"
	MetricNameHoursSettled      = "mining_hours_settled_total"
	MetricNameOutputRequested   = "mining_output_requested_total"
	MetricNameOutputGranted     = "mining_output_granted_total"
	MetricNameFoodConsumed      = "mining_food_consumed_total"
	MetricNameTickDuration      = "mining_tick_duration_seconds"
	MetricNameEmissionRemaining = "emission_remaining"
	MetricNameEmissionExhausted = "emission_exhausted_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Mining metric help text
const (
	HelpTextSessionsStarted   = "Total number of mining sessions started"
	HelpTextSessionsStopped   = "Total number of mining sessions closed, by stop reason"
	HelpTextActiveSessions    = "Current number of active mining sessions"
	HelpTextHoursSettled      = "Total number of settled session hours"
	HelpTextOutputRequested   = "Output requested by settled hours before emission caps"
	HelpTextOutputGranted     = "Output granted to settled hours after emission caps"
	HelpTextFoodConsumed      = "Food debited for settled hours"
	HelpTextTickDuration      = "Duration of one tick pass over all sessions in seconds"
	HelpTextEmissionRemaining = "Remaining daily emission for capped resources"
	HelpTextEmissionExhausted = "Number of times a daily emission cap was exhausted"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelType     = "type"
	LabelResource = "resource"
	LabelReason   = "reason"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// TickLatencyBuckets covers a tick pass from 1ms up to 30s
var TickLatencyBuckets = []float64{.001, .01, .05, .1, .5, 1, 5, 10, 30}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadDecodeFailed = "Event payload could not be decoded"
	LogMsgMetricsRecorded          = "Metrics recorded for event"
)
