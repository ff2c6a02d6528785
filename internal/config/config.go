package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds the application configuration
type Config struct {
	Port        int
	APIKey      string // API key for authentication
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	ServiceName string
	Version     string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// StoreDriver selects "memory" or "postgres" backed collaborators
	StoreDriver string

	// Mining
	TickInterval      time.Duration
	FoodPerToolHour   decimal.Decimal
	DurabilityPerHour int
	LowFoodHours      decimal.Decimal
	YLDDailyLimit     decimal.Decimal
	// EmissionZoneOffsetHours places the daily cap boundary at local midnight
	EmissionZoneOffsetHours int
	Rates                   map[string]decimal.Decimal

	// Land cache
	LandCacheSize int
	LandCacheTTL  time.Duration

	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	TrustedProxies []string

	// Events
	EventMaxRetries int
	EventRetryDelay time.Duration
	DeadLetterPath  string

	// EventRetentionDays bounds the mining history audit trail
	EventRetentionDays int

	// SeedFile is an optional JSON file of lands, levels, tools and balances applied at startup
	SeedFile string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         getEnv("API_KEY", ""),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		LogDir:         getEnv("LOG_DIR", "logs"),
		Environment:    getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName:    getEnv("SERVICE_NAME", DefaultServiceName),
		Version:        getEnv("VERSION", DefaultVersion),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBName:         getEnv("DB_NAME", DefaultDBName),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMemory)),
		DeadLetterPath: getEnv("EVENT_DEAD_LETTER_PATH", DefaultDeadLetterPath),
		SeedFile:       getEnv("SEED_FILE", ""),
	}

	portStr := getEnv("PORT", strconv.Itoa(DefaultPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	cfg.DBMaxConns = getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns)
	cfg.DBMaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime)
	cfg.DBMaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime)

	cfg.TickInterval = getEnvAsDuration("TICK_INTERVAL", DefaultTickInterval)
	cfg.FoodPerToolHour = getEnvAsDecimal("FOOD_PER_TOOL_HOUR", DefaultFoodPerToolHour)
	cfg.DurabilityPerHour = getEnvAsInt("DURABILITY_PER_HOUR", DefaultDurabilityPerHour)
	cfg.LowFoodHours = getEnvAsDecimal("LOW_FOOD_HOURS", DefaultLowFoodHours)
	cfg.YLDDailyLimit = getEnvAsDecimal("YLD_DAILY_LIMIT", DefaultYLDDailyLimit)
	cfg.EmissionZoneOffsetHours = getEnvAsInt("EMISSION_ZONE_OFFSET_HOURS", DefaultEmissionZoneOffsetHours)

	cfg.LandCacheSize = getEnvAsInt("LAND_CACHE_SIZE", DefaultLandCacheSize)
	cfg.LandCacheTTL = getEnvAsDuration("LAND_CACHE_TTL", DefaultLandCacheTTL)
	cfg.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", DefaultRateLimitRPS)
	cfg.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", DefaultRateLimitBurst)
	cfg.EventMaxRetries = getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries)
	cfg.EventRetryDelay = getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay)
	cfg.EventRetentionDays = getEnvAsInt("EVENT_RETENTION_DAYS", DefaultEventRetentionDays)
	cfg.TrustedProxies = getEnvAsList("TRUSTED_PROXIES")

	cfg.Rates = make(map[string]decimal.Decimal, len(DefaultRates))
	for resource, def := range DefaultRates {
		cfg.Rates[resource] = getEnvAsDecimal("RATE_"+strings.ToUpper(resource), def)
	}

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if cfg.StoreDriver != StoreDriverMemory && cfg.StoreDriver != StoreDriverPostgres {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: must be %s or %s", cfg.StoreDriver, StoreDriverMemory, StoreDriverPostgres)
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: must be positive")
	}
	if cfg.EmissionZoneOffsetHours < -12 || cfg.EmissionZoneOffsetHours > 14 {
		return nil, fmt.Errorf("invalid EMISSION_ZONE_OFFSET_HOURS: %d", cfg.EmissionZoneOffsetHours)
	}

	return cfg, nil
}

// EmissionLocation returns the fixed zone the daily cap resets in
func (c *Config) EmissionLocation() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.EmissionZoneOffsetHours), c.EmissionZoneOffsetHours*60*60)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an integer environment variable, falling back on parse failure
func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDuration retrieves a duration environment variable, falling back on parse failure
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDecimal parses a non-negative decimal, falling back to defaultValue
func getEnvAsDecimal(key, defaultValue string) decimal.Decimal {
	if v, err := decimal.NewFromString(getEnv(key, "")); err == nil && !v.IsNegative() {
		return v
	}
	return decimal.RequireFromString(defaultValue)
}

// getEnvAsList splits a comma-separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
