package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// User errors
	ErrMsgUserNotFound = "user not found"

	// Land errors
	ErrMsgLandNotFound     = "land not found"
	ErrMsgLandNotMineable  = "land is not mineable"
	ErrMsgLandNotOwned     = "land is not owned by user"
	ErrMsgIncompatibleTool = "tool category does not match land"

	// Tool errors
	ErrMsgToolUnavailable    = "tool unavailable"
	ErrMsgLevelCapExceeded   = "too many tools for user level"
	ErrMsgToolNotInSession   = "tool is not part of this session"
	ErrMsgEmptyToolSelection = "at least one tool is required"

	// Session errors
	ErrMsgSessionNotFound      = "mining session not found"
	ErrMsgSessionAlreadyClosed = "mining session already closed"
	ErrMsgSessionNotActive     = "mining session is not active"
	ErrMsgFoodExhausted        = "food exhausted"
	ErrMsgSettlementDeferred   = "hour settlement deferred, retry later"

	// Ledger errors
	ErrMsgInsufficientQuantity = "insufficient quantity"

	// Pricing errors
	ErrMsgRateUnavailable = "rate unavailable"

	// Input errors
	ErrMsgInvalidInput = "invalid input"

	// Database/System errors
	ErrMsgDatabaseError = "database error"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// User errors
	ErrUserNotFound = errors.New(ErrMsgUserNotFound)

	// Land errors
	ErrLandNotFound     = errors.New(ErrMsgLandNotFound)
	ErrLandNotMineable  = errors.New(ErrMsgLandNotMineable)
	ErrLandNotOwned     = errors.New(ErrMsgLandNotOwned)
	ErrIncompatibleTool = errors.New(ErrMsgIncompatibleTool)

	// Tool errors
	ErrToolUnavailable  = errors.New(ErrMsgToolUnavailable)
	ErrLevelCapExceeded = errors.New(ErrMsgLevelCapExceeded)

	// Session errors
	ErrSessionNotFound = errors.New(ErrMsgSessionNotFound)
	// ErrSessionAlreadyClosed is informational; Stop on a closed session succeeds
	ErrSessionAlreadyClosed = errors.New(ErrMsgSessionAlreadyClosed)
	ErrSessionNotActive     = errors.New(ErrMsgSessionNotActive)
	// ErrFoodExhausted is reported as a stop reason, never returned to a caller
	ErrFoodExhausted = errors.New(ErrMsgFoodExhausted)
	// ErrSettlementDeferred is returned by Stop while a whole hour is still unsettled
	ErrSettlementDeferred = errors.New(ErrMsgSettlementDeferred)

	// Ledger errors
	ErrInsufficientQuantity = errors.New(ErrMsgInsufficientQuantity)

	// Pricing errors
	ErrRateUnavailable = errors.New(ErrMsgRateUnavailable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Database/System errors
	ErrDatabaseError = errors.New(ErrMsgDatabaseError)
)
