package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// Log messages for worker pool operations
const (
	LogMsgWorkerJobFailed = "Worker job failed"
	LogMsgWorkerQueueFull = "Worker queue full, job dropped"
)

// ============================================================================
// Log Messages - Tick Job
// ============================================================================

// Log messages for the session tick job
const (
	LogMsgTickCompleted = "Mining tick completed"
)

// ============================================================================
// Log Messages - Emission Rollover Worker
// ============================================================================

// Log messages for emission rollover worker operations
const (
	LogMsgRolloverStandby       = "Emission rollover standby"
	LogMsgRolloverApproach      = "Emission rollover scheduled"
	LogMsgRolloverStarting      = "Emission rollover starting"
	LogMsgRolloverCompleted     = "Emission rollover completed"
	LogMsgRolloverManualTrigger = "Emission rollover manually triggered"

	LogMsgRolloverShuttingDown     = "Shutting down emission rollover worker"
	LogMsgRolloverShutdownComplete = "Emission rollover worker shutdown complete"
	LogMsgRolloverShutdownTimeout  = "Emission rollover worker shutdown timeout"
)

// Rollover scheduling windows
const (
	rolloverStandbyThreshold = time.Hour
	rolloverStandbyLead      = 45 * time.Minute
	rolloverJitterTolerance  = 10 * time.Second
)

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
