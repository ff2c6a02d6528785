package domain

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "session.started")
const (
	// EventTypeSessionStarted is published when a mining session becomes active
	EventTypeSessionStarted = "session.started"

	// EventTypeHourSettled is published for every settled session hour
	EventTypeHourSettled = "session.hour_settled"

	// EventTypeSessionStopped is published when a session closes and its output is flushed
	EventTypeSessionStopped = "session.stopped"

	// EventTypeFoodExhausted is published when a session is force-stopped for lack of food
	EventTypeFoodExhausted = "session.food_exhausted"

	// EventTypeEmissionExhausted is published the first time a daily cap hits zero
	EventTypeEmissionExhausted = "emission.exhausted"

	// EventTypeEmissionRolledOver is published after the day boundary resets a cap
	EventTypeEmissionRolledOver = "emission.rolled_over"
)
