package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sebuszqo/FinMind/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBConnectionString string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBConnMaxLifetime  time.Duration

	// Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Dashboard cache
	RedisAddr string
	CacheTTL  time.Duration
	CacheSize int

	// Budget alerts
	AMQPURL       string
	AMQPExchange  string
	AMQPQueue     string
	AlertSchedule string

	LogLevel string
}

// Load reads .env when present and then the process environment.
func Load() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBConnectionString: getEnv("DB_CONNECTION_STRING", ""),
		DBMaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 50),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getEnvDuration("CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("CACHE_SIZE", 1000),

		AMQPURL:       getEnv("AMQP_URL", ""),
		AMQPExchange:  getEnv("AMQP_EXCHANGE", "finmind"),
		AMQPQueue:     getEnv("AMQP_QUEUE", "budget_alerts"),
		AlertSchedule: getEnv("ALERT_SCHEDULE", "@every 1h"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate checks everything the server needs and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if err := c.ValidateDatabase(); err != nil {
		problems = append(problems, err.Error())
	}

	if c.JWTSecret == "" {
		problems = append(problems, "missing JWT_SECRET")
	}
	if c.JWTAccessTTL <= 0 {
		problems = append(problems, "JWT_ACCESS_TTL must be positive")
	}

	if c.CacheSize <= 0 {
		problems = append(problems, "CACHE_SIZE must be positive")
	}
	if c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive")
	}

	if c.AlertSchedule == "" {
		problems = append(problems, "ALERT_SCHEDULE must not be empty")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed: " + strings.Join(problems, "; "))
	}
	return nil
}

// ValidateDatabase covers the subset needed by the migrate command.
func (c *Config) ValidateDatabase() error {
	var problems []string
	if c.DBConnectionString == "" {
		problems = append(problems, "missing DB_CONNECTION_STRING")
	}
	if c.DBMaxOpenConns <= 0 {
		problems = append(problems, "DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DBMaxIdleConns < 0 || c.DBMaxIdleConns > c.DBMaxOpenConns {
		problems = append(problems, "DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
