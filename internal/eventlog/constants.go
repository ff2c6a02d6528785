package eventlog

import "time"

// Retention and paging defaults
const (
	DefaultRetentionDays = 30
	DefaultHistoryLimit  = 50
	MaxHistoryLimit      = 500

	// CleanupInterval is how often the cleanup job is scheduled
	CleanupInterval = 24 * time.Hour
)

// JSON payload and metadata keys
const (
	PayloadKeyUserID = "user_id"
)

// Log messages - service events
const (
	LogMsgEventPayloadDecodeFailed = "Event payload could not be decoded, skipping log"
	LogMsgFailedToLogEvent         = "Failed to log event"
	LogMsgEventLogged              = "Event logged"
)

// Log messages - cleanup job
const (
	LogMsgCleanupJobStarting  = "Starting event log cleanup job"
	LogMsgCleanupJobFailed    = "Event log cleanup failed"
	LogMsgCleanupJobCompleted = "Event log cleanup completed"
)

// Log field keys - structured logging fields
const (
	LogFieldType          = "type"
	LogFieldUserID        = "user_id"
	LogFieldError         = "error"
	LogFieldRetentionDays = "retention_days"
	LogFieldDuration      = "duration"
	LogFieldDeletedCount  = "deleted_count"
)
