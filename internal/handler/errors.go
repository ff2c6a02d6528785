package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query and header error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgMissingUserID     = "Missing X-User-ID header"
	ErrMsgInvalidUserID     = "Invalid X-User-ID header"
	ErrMsgInvalidCategory   = "Invalid tool category '%s'. Valid options: pickaxe, axe, hoe"
	ErrMsgInvalidBoolParam  = "Invalid %s query parameter"
	ErrMsgInvalidIntParam   = "Invalid %s query parameter, expected a non-negative integer"
	ErrMsgInvalidEventType  = "Unknown event type '%s'"

	// Admin error messages
	ErrMsgNegativeAmount = "amount must not be negative"
)

// Operation names used as log messages on service failure
const (
	OpStartSession = "Failed to start mining session"
	OpStopSession  = "Failed to stop mining session"
	OpStopAll      = "Failed to stop some mining sessions"
	OpGetSession   = "Failed to get mining session"
	OpAddTools     = "Failed to add tools"
	OpRemoveTools  = "Failed to remove tools"
	OpPreflight    = "Failed to run preflight check"
	OpListTools    = "Failed to list available tools"
	OpSetRate      = "Failed to set rate"
	OpSetLimit     = "Failed to set emission limit"
	OpHistory      = "Failed to read mining history"
)

// Headers
const (
	HeaderUserID   = "X-User-ID"
	maxUserIDBytes = 128
)
