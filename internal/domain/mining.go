package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a mining session
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionStopping SessionStatus = "stopping"
	SessionClosed   SessionStatus = "closed"
)

// StopReason records why a session was closed
type StopReason string

const (
	StopReasonManual        StopReason = "manual"
	StopReasonStopAll       StopReason = "stop_all"
	StopReasonFoodExhausted StopReason = "food_exhausted"
)

// MiningSession is the full state of one assignment of tools to a land.
// It is the persisted form; the live state machine lives in the mining package.
type MiningSession struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	LandID       string        `json:"land_id"`
	Resource     ResourceType  `json:"resource"`
	ToolCategory ToolCategory  `json:"tool_category"`
	ToolIDs      []string      `json:"tool_ids"`
	MaxTools     int           `json:"max_tools"`
	Status       SessionStatus `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	// LastTickAt is StartedAt plus every whole minute counted so far
	LastTickAt    time.Time       `json:"last_tick_at"`
	SettledHours  int             `json:"settled_hours"`
	CarryMinutes  int             `json:"carry_minutes"`
	PendingOutput decimal.Decimal `json:"pending_output"`
	// ToolHours counts settled hours per tool, used for durability wear
	ToolHours map[string]int `json:"tool_hours"`
	// LastRate is the last per-tool rate read from pricing
	LastRate decimal.NullDecimal `json:"last_rate"`
	// Reserve is what the land can still yield to this session; null means unlimited
	Reserve        decimal.NullDecimal `json:"reserve"`
	ToolsReleased  bool                `json:"tools_released"`
	OutputCredited bool                `json:"output_credited"`
	StopReason     StopReason          `json:"stop_reason,omitempty"`
	// ForfeitedMinutes is the partial hour (0-59) discarded when the session began stopping
	ForfeitedMinutes int `json:"forfeited_minutes"`
	// UnsettledHours counts whole hours left unsettled by a forced stop
	UnsettledHours int         `json:"unsettled_hours"`
	Settlement     *Settlement `json:"settlement,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ToolCount is the number of tools currently assigned
func (s *MiningSession) ToolCount() int {
	return len(s.ToolIDs)
}

// Clone returns a deep copy safe to hand out of a locked section
func (s *MiningSession) Clone() *MiningSession {
	c := *s
	c.ToolIDs = append([]string(nil), s.ToolIDs...)
	c.ToolHours = make(map[string]int, len(s.ToolHours))
	for id, h := range s.ToolHours {
		c.ToolHours[id] = h
	}
	if s.Settlement != nil {
		st := *s.Settlement
		st.ToolIDs = append([]string(nil), s.Settlement.ToolIDs...)
		c.Settlement = &st
	}
	return &c
}

// Settlement is the final snapshot recorded when a session closes
type Settlement struct {
	SessionID        string          `json:"session_id"`
	UserID           string          `json:"user_id"`
	Resource         ResourceType    `json:"resource"`
	ToolIDs          []string        `json:"tool_ids"`
	SettledHours     int             `json:"settled_hours"`
	ForfeitedMinutes int             `json:"forfeited_minutes"`
	UnsettledHours   int             `json:"unsettled_hours"`
	Output           decimal.Decimal `json:"output"`
	Reason           StopReason      `json:"reason"`
	ClosedAt         time.Time       `json:"closed_at"`
}

// SessionClose is the final write of a stopping session. A store that
// supports it applies the tool release, the output credit and the closed
// snapshot together, and skips sessions it already holds as closed.
type SessionClose struct {
	Session      *MiningSession
	ReleaseTools bool
	ToolLoss     map[string]int
	Credit       decimal.Decimal
}

// CapStatus describes a daily emission counter for display
type CapStatus struct {
	Resource  ResourceType    `json:"resource"`
	Day       string          `json:"day"`
	Limit     decimal.Decimal `json:"limit"`
	Produced  decimal.Decimal `json:"produced"`
	Remaining decimal.Decimal `json:"remaining"`
	Exhausted bool            `json:"exhausted"`
}

// MiningSummary aggregates a user's active sessions
type MiningSummary struct {
	UserID            string                           `json:"user_id"`
	ActiveSessions    int                              `json:"active_sessions"`
	TotalTools        int                              `json:"total_tools"`
	TotalPending      decimal.Decimal                  `json:"total_pending"`
	PendingByResource map[ResourceType]decimal.Decimal `json:"pending_by_resource"`
	HourlyFoodDraw    decimal.Decimal                  `json:"hourly_food_draw"`
	Emission          []CapStatus                      `json:"emission"`
	GeneratedAt       time.Time                        `json:"generated_at"`
}

// StopResult is one session's outcome inside a batch stop
type StopResult struct {
	SessionID  string      `json:"session_id"`
	Settlement *Settlement `json:"settlement,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// StopAllResult aggregates a batch stop
type StopAllResult struct {
	Results           []StopResult                     `json:"results"`
	Stopped           int                              `json:"stopped"`
	Failed            int                              `json:"failed"`
	FlushedByResource map[ResourceType]decimal.Decimal `json:"flushed_by_resource"`
}

// PreflightIssue is a single warning or error from a start check
type PreflightIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PreflightResult reports every issue found before starting a session
type PreflightResult struct {
	CanStart  bool             `json:"can_start"`
	Resource  ResourceType     `json:"resource,omitempty"`
	IdleTools int              `json:"idle_tools"`
	MaxTools  int              `json:"max_tools"`
	FoodHours decimal.Decimal  `json:"food_hours"`
	Warnings  []PreflightIssue `json:"warnings"`
	Errors    []PreflightIssue `json:"errors"`
}
