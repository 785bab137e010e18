package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External source
	Asil AsilConfig

	// Batch/valuation policy
	Batch BatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// AsilConfig holds Asil (아실) source configuration
type AsilConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec int // 초당 호출 제한
}

// BatchConfig holds the batch policy knobs
// 기준 창(365일/180일)과 배수(30/35)는 정책값이므로 여기서만 정한다
type BatchConfig struct {
	RefreshWindowDays     int // 시세 갱신 기준 창 (기본 365일)
	RefreshFastWindowDays int // 빠른 갱신 창 (기본 180일)
	TrailingMonths        int // 요약 통계 이동 창 (기본 6개월)
	RentMultipleLow       int // 월세 기반 기대 매매가 하한 배수
	RentMultipleHigh      int // 월세 기반 기대 매매가 상한 배수
	Workers               int // 아파트 단위 동시 처리 수
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "invest_info"),
			User:            getEnv("DB_USER", "aptper"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// External source
		Asil: AsilConfig{
			BaseURL:    getEnv("ASIL_BASE_URL", "https://asil.kr"),
			Timeout:    getEnvAsDuration("ASIL_TIMEOUT", "15s"),
			RatePerSec: getEnvAsInt("ASIL_RATE_PER_SEC", 5),
		},

		// Batch policy
		Batch: BatchConfig{
			RefreshWindowDays:     getEnvAsInt("REFRESH_WINDOW_DAYS", 365),
			RefreshFastWindowDays: getEnvAsInt("REFRESH_FAST_WINDOW_DAYS", 180),
			TrailingMonths:        getEnvAsInt("TRAILING_MONTHS", 6),
			RentMultipleLow:       getEnvAsInt("RENT_MULTIPLE_LOW", 30),
			RentMultipleHigh:      getEnvAsInt("RENT_MULTIPLE_HIGH", 35),
			Workers:               getEnvAsInt("BATCH_WORKERS", 4),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Batch.RefreshWindowDays <= 0 || c.Batch.RefreshFastWindowDays <= 0 {
		return fmt.Errorf("refresh windows must be positive")
	}

	if c.Batch.TrailingMonths <= 0 {
		return fmt.Errorf("TRAILING_MONTHS must be positive")
	}

	if c.Batch.RentMultipleLow > c.Batch.RentMultipleHigh {
		return fmt.Errorf("RENT_MULTIPLE_LOW must not exceed RENT_MULTIPLE_HIGH")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
