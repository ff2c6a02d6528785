package mining

import "github.com/shopspring/decimal"

const (
	minutesPerHour = 60

	// DefaultDurabilityPerHour is the wear each tool takes per settled hour
	DefaultDurabilityPerHour = 1

	// DefaultClosedRetention is how many closed sessions stay in memory for idempotent Stop
	DefaultClosedRetention = 1024
)

var (
	// DefaultFoodPerToolHour is the canonical food draw of one tool for one hour
	DefaultFoodPerToolHour = decimal.NewFromInt(2)
	// DefaultLowFoodHours is the remaining-food horizon that triggers a warning
	DefaultLowFoodHours = decimal.NewFromInt(24)
)

// Preflight issue codes
const (
	IssueLandNotMineable    = "land_not_mineable"
	IssueLandNotOwned       = "land_not_owned"
	IssueNoIdleTools        = "no_idle_tools"
	IssueNoToolsSelected    = "no_tools_selected"
	IssueFoodInsufficient   = "food_insufficient"
	IssueFoodLow            = "food_low"
	IssueEmissionExhausted  = "emission_cap_exhausted"
	IssueLevelCapExceeded   = "level_cap_exceeded"
	IssueNotEnoughIdleTools = "not_enough_idle_tools"
)

// Preflight messages
const (
	MsgLandNotMineable    = "This land cannot be mined"
	MsgLandNotOwned       = "You do not own this land"
	MsgNoIdleTools        = "No idle %s available"
	MsgNoToolsSelected    = "Select at least one tool"
	MsgFoodInsufficient   = "Food lasts %s hours, less than one hour of mining"
	MsgFoodLow            = "Food lasts only %s hours"
	MsgEmissionExhausted  = "Today's %s emission is used up; settled hours will yield nothing until the next day"
	MsgLevelCapExceeded   = "Level %d allows at most %d tools per session"
	MsgNotEnoughIdleTools = "Only %d idle tools available"
)

// Log messages
const (
	LogMsgSessionStarted       = "Mining session started"
	LogMsgSessionStopped       = "Mining session closed"
	LogMsgFoodExhausted        = "Mining session force-stopped, food exhausted"
	LogMsgRateUnavailable      = "Rate unavailable, reusing last known rate"
	LogMsgHourDeferred         = "Hour settlement deferred"
	LogMsgStopIncomplete       = "Mining session stop incomplete, will resume"
	LogMsgPersistFailed        = "Failed to persist mining session"
	LogMsgRestoreSession       = "Restored mining session"
	LogMsgReleaseOnStartFailed = "Failed to release tools after aborted start"
	LogMsgStopDeferred         = "Mining session stop deferred, hours still unsettled"
	LogMsgReserveDepleted      = "Land reserve depleted for session"
	LogMsgLoadClosedFailed     = "Failed to load closed mining session"
)

// Error messages
const (
	ErrMsgSaveStopping    = "failed to save stopping session"
	ErrMsgReleaseTools    = "failed to release tools"
	ErrMsgCreditOutput    = "failed to credit output"
	ErrMsgSaveClosed      = "failed to save closed session"
	ErrMsgCloseSession    = "failed to close session"
	ErrMsgGetLand         = "failed to get land"
	ErrMsgGetUserLevel    = "failed to get user level"
	ErrMsgCountIdleTools  = "failed to count idle tools"
	ErrMsgGetFoodBalance  = "failed to get food balance"
	ErrMsgListOpenSession = "failed to list open sessions"
)
