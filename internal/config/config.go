// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/money"
)

// Config holds all configuration values for the application.
type Config struct {
	// AWS
	AWSRegion     string
	S3Bucket      string
	SnapshotKey   string
	ResultsPrefix string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Cache
	RedisAddr        string
	SnapshotCacheTTL time.Duration

	// SES
	SESSenderEmail string
	DashboardURL   string

	// Simulation
	DecimalPrecision   int
	DecimalRounding    string
	MinSignificantCost decimal.Decimal

	// Application
	Stage    string
	LogLevel string
	Port     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	minCost, err := decimal.NewFromString(getEnv("MIN_SIGNIFICANT_COST", "0.0001"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_SIGNIFICANT_COST: %w", err)
	}

	cfg := &Config{
		// AWS
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", "card-fee-simulator-dev"),
		SnapshotKey:   getEnv("SNAPSHOT_KEY", ""),
		ResultsPrefix: getEnv("RESULTS_PREFIX", "results"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBName:     getEnv("DB_NAME", "card_fee_simulator"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),

		// Cache
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		SnapshotCacheTTL: time.Duration(getEnvInt("SNAPSHOT_CACHE_TTL_SECONDS", 300)) * time.Second,

		// SES
		SESSenderEmail: getEnv("SES_SENDER_EMAIL", ""),
		DashboardURL:   getEnv("DASHBOARD_URL", "http://localhost:8080"),

		// Simulation
		DecimalPrecision:   getEnvInt("DECIMAL_PRECISION", int(money.DefaultPrecision)),
		DecimalRounding:    getEnv("DECIMAL_ROUNDING", "half_up"),
		MinSignificantCost: minCost,

		// Application
		Stage:    getEnv("STAGE", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),
	}

	return cfg, nil
}

// DecimalContext builds the arithmetic context handed to the simulation engine.
func (c *Config) DecimalContext() (money.Context, error) {
	rounding, err := money.ParseRounding(c.DecimalRounding)
	if err != nil {
		return money.Context{}, err
	}
	precision := c.DecimalPrecision
	if precision <= 0 {
		precision = int(money.DefaultPrecision)
	}
	return money.Context{Precision: int32(precision), Rounding: rounding}, nil
}

// DatabaseURL returns the PostgreSQL connection string.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	sslMode := "require" // Use SSL for RDS
	if c.DBHost == "localhost" || c.DBHost == "127.0.0.1" {
		sslMode = "disable"
	}
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + strconv.Itoa(c.DBPort) + "/" + c.DBName + "?sslmode=" + sslMode
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
