package config

import "time"

// Store drivers
const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

// Defaults
const (
	DefaultPort        = 8080
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultEnvironment = "dev"
	DefaultServiceName = "pwmine"
	DefaultVersion     = "dev"
	DefaultDBName      = "pwmine"

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultTickInterval            = time.Minute
	DefaultFoodPerToolHour         = "2"
	DefaultDurabilityPerHour       = 1
	DefaultLowFoodHours            = "24"
	DefaultYLDDailyLimit           = "1000"
	DefaultEmissionZoneOffsetHours = 8

	DefaultLandCacheSize = 4096
	DefaultLandCacheTTL  = 10 * time.Minute

	DefaultRateLimitRPS   = 10.0
	DefaultRateLimitBurst = 20

	DefaultEventMaxRetries = 5
	DefaultEventRetryDelay = 2 * time.Second
	DefaultDeadLetterPath  = "logs/event_deadletter.jsonl"

	DefaultEventRetentionDays = 30
)

// DefaultRates is the per-tool hourly output by resource, overridable with RATE_<RESOURCE>
var DefaultRates = map[string]string{
	"iron":  "4",
	"stone": "6",
	"wood":  "5",
	"food":  "8",
	"yld":   "0.5",
}
