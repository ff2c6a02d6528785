package postgres

// PostgreSQL Error Codes
const (
	// PgErrorCodeUniqueViolation is the PostgreSQL error code for unique constraint violations
	PgErrorCodeUniqueViolation = "23505"
	// PgErrorCodeCheckViolation is raised when a balance or durability constraint fails
	PgErrorCodeCheckViolation  = "23514"
)

// Error Messages - Transaction Operations
const (
	ErrMsgFailedToBeginTransaction  = "failed to begin transaction"
	ErrMsgFailedToCommitTransaction = "failed to commit transaction"
)

// Error Messages - Land Operations
const (
	ErrMsgFailedToGetLand      = "failed to get land"
	ErrMsgFailedToUpsertLand   = "failed to upsert land"
	ErrMsgFailedToGetUserLevel = "failed to get user level"
	ErrMsgFailedToSetUserLevel = "failed to set user level"
	ErrMsgFailedToParseReserve = "failed to parse land reserve"
)

// Error Messages - Tool Operations
const (
	ErrMsgFailedToListTools   = "failed to list tools"
	ErrMsgFailedToLockTools   = "failed to lock tools"
	ErrMsgFailedToUpdateTools = "failed to update tools"
	ErrMsgFailedToUpsertTool  = "failed to upsert tool"
)

// Error Messages - Ledger Operations
const (
	ErrMsgFailedToGetBalance  = "failed to get balance"
	ErrMsgFailedToCredit      = "failed to credit ledger"
	ErrMsgFailedToDebit       = "failed to debit ledger"
	ErrMsgFailedToParseAmount = "failed to parse amount"
)

// Error Messages - Emission Operations
const (
	ErrMsgFailedToLoadProduced = "failed to load produced amount"
	ErrMsgFailedToSaveProduced = "failed to save produced amount"
)

// Error Messages - Session Operations
const (
	ErrMsgFailedToEncodeSession = "failed to encode session snapshot"
	ErrMsgFailedToDecodeSession = "failed to decode session snapshot"
	ErrMsgFailedToSaveSession   = "failed to save session"
	ErrMsgFailedToListSessions  = "failed to list open sessions"
	ErrMsgFailedToLockSession   = "failed to lock session"
)

// Error Messages - Event Log Operations
const (
	ErrMsgFailedToEncodeEvent = "failed to encode event"
	ErrMsgFailedToLogEvent    = "failed to log event"
	ErrMsgFailedToQueryEvents = "failed to query events"
)

// Log Messages
const (
	LogMsgFailedToRollback = "Failed to rollback transaction"
)
