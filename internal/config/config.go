// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nrherve/Ishyirahamwe-Twangumugayo1/internal/models"
)

type Config struct {
	// HTTP Server
	Port string

	// Storage
	StoreBackend string
	DBPath       string
	SeedPath     string

	// Logging
	LogLevel  string
	LogFormat string

	// Auth
	JWTSecret   string
	RequireAuth bool

	// Receipts
	ReceiptBackend string
	ReceiptDir     string
	S3Bucket       string
	S3Region       string

	// Advice
	RedisURL       string
	GeminiAPIKey   string
	GeminiModel    string
	AdviceTimeout  time.Duration
	AdviceCacheTTL time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string

	// Initial group parameters, used when the store has no configuration yet
	GroupName          string
	DailyRate          int64
	ContributionAmount int64
	Currency           string
	Interval           string
	StartDate          string
	TotalMembers       int
}

// Load reads a local .env file when present, then the process environment.
func Load() *Config {
	// Missing .env is normal outside development
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		DBPath:       getEnv("DB_PATH", "./data/ibimina.db"),
		SeedPath:     getEnv("SEED_PATH", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		RequireAuth: getEnvBool("REQUIRE_AUTH", false),

		ReceiptBackend: getEnv("RECEIPT_BACKEND", "local"),
		ReceiptDir:     getEnv("RECEIPT_DIR", "./data/receipts"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", ""),

		RedisURL:       getEnv("REDIS_URL", ""),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		AdviceTimeout:  getEnvDuration("ADVICE_TIMEOUT", 8*time.Second),
		AdviceCacheTTL: getEnvDuration("ADVICE_CACHE_TTL", 6*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ibimina"),

		GroupName:          getEnv("GROUP_NAME", "Ishyirahamwe Twangumugayo"),
		DailyRate:          getEnvInt64("DAILY_RATE", 1000),
		ContributionAmount: getEnvInt64("CONTRIBUTION_AMOUNT", 5000),
		Currency:           getEnv("CURRENCY", "RWF"),
		Interval:           getEnv("INTERVAL", string(models.IntervalWeekly)),
		StartDate:          getEnv("START_DATE", "2026-01-01T08:00:00Z"),
		TotalMembers:       getEnvInt("TOTAL_MEMBERS", 5),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case "memory":
	case "sqlite":
		if c.DBPath == "" {
			errors = append(errors, "database path cannot be empty when using sqlite backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [memory sqlite]", c.StoreBackend))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.RequireAuth && c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required when REQUIRE_AUTH is set")
	}

	switch c.ReceiptBackend {
	case "local":
		if c.ReceiptDir == "" {
			errors = append(errors, "receipt directory cannot be empty when using local receipts")
		}
	case "s3":
		if c.S3Bucket == "" || c.S3Region == "" {
			errors = append(errors, "S3_BUCKET and S3_REGION are required when using s3 receipts")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid receipt backend '%s': must be one of [local s3]", c.ReceiptBackend))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RedisURL != "" {
		if parsedURL, err := url.Parse(c.RedisURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid Redis URL '%s': %v", c.RedisURL, err))
		} else if parsedURL.Scheme != "redis" && parsedURL.Scheme != "rediss" {
			errors = append(errors, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", parsedURL.Scheme))
		}
	}

	if c.AdviceTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid advice timeout %v: must be positive", c.AdviceTimeout))
	}

	if _, err := c.Group(); err != nil {
		errors = append(errors, err.Error())
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Group builds the initial group configuration from the environment values.
func (c *Config) Group() (models.GroupConfig, error) {
	start, err := time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return models.GroupConfig{}, fmt.Errorf("invalid start date '%s': must be RFC3339", c.StartDate)
	}

	cfg := models.GroupConfig{
		Name:               c.GroupName,
		DailyRate:          models.Money(c.DailyRate),
		ContributionAmount: models.Money(c.ContributionAmount),
		Currency:           c.Currency,
		Interval:           models.Interval(strings.ToUpper(c.Interval)),
		StartDate:          start.UTC(),
		TotalMembers:       c.TotalMembers,
	}
	if cfg.DailyRate <= 0 {
		return models.GroupConfig{}, fmt.Errorf("invalid daily rate %d: must be positive", c.DailyRate)
	}
	if !cfg.Interval.Valid() {
		return models.GroupConfig{}, fmt.Errorf("invalid interval '%s': must be WEEKLY or MONTHLY", c.Interval)
	}
	if start.Before(models.MinTime) || !start.Before(models.MaxTime) {
		return models.GroupConfig{}, fmt.Errorf("invalid start date '%s': must be between %d and %d",
			c.StartDate, models.MinTime.Year(), models.MaxTime.Year()-1)
	}
	if cfg.TotalMembers < 1 {
		return models.GroupConfig{}, fmt.Errorf("invalid total members %d: must be at least 1", c.TotalMembers)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
