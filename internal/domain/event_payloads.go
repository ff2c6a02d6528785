package domain

import "github.com/shopspring/decimal"

// SessionStartedPayload is the event payload for session.started events
type SessionStartedPayload struct {
	SessionID string       `json:"session_id"`
	UserID    string       `json:"user_id"`
	LandID    string       `json:"land_id"`
	Resource  ResourceType `json:"resource"`
	ToolCount int          `json:"tool_count"`
	Timestamp int64        `json:"timestamp"`
}

// HourSettledPayload is the event payload for session.hour_settled events
type HourSettledPayload struct {
	SessionID    string          `json:"session_id"`
	UserID       string          `json:"user_id"`
	Resource     ResourceType    `json:"resource"`
	Hour         int             `json:"hour"`
	Requested    decimal.Decimal `json:"requested"`
	Granted      decimal.Decimal `json:"granted"`
	FoodConsumed decimal.Decimal `json:"food_consumed"`
	Timestamp    int64           `json:"timestamp"`
}

// SessionStoppedPayload is the event payload for session.stopped and session.food_exhausted events
type SessionStoppedPayload struct {
	Settlement Settlement `json:"settlement"`
	Timestamp  int64      `json:"timestamp"`
}

// EmissionPayload is the event payload for emission.* events
type EmissionPayload struct {
	Status    CapStatus `json:"status"`
	Timestamp int64     `json:"timestamp"`
}
