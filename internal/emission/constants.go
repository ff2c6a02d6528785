package emission

// DayKeyLayout formats the calendar day a counter belongs to
const DayKeyLayout = "2006-01-02"

// Log messages
const (
	LogMsgStoreLoadFailed = "Failed to load emission counter, starting from zero"
	LogMsgStoreSaveFailed = "Failed to persist emission counter"
	LogMsgCapExhausted    = "Daily emission cap exhausted"
	LogMsgCapRolledOver   = "Daily emission cap rolled over"
)
