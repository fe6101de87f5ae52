package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	Secure       bool   // Send HSTS and mark cookies secure
	Environment  string // "development", "production", "test"
	Debug        bool
	TemplatesDir string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
	MinConns int32
	// StatementTimeout caps any single query; zero leaves the server default.
	StatementTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	// JWT bearer tokens are accepted only when a secret is configured.
	JWTSecret string
	JWTIssuer string
}

type RateLimitConfig struct {
	Actions int64
	Window  time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

var loadDotEnv = godotenv.Load

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; variables already set win.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			Secure:       getEnvBool("SERVER_SECURE", false),
			Environment:  getEnv("APP_ENV", "development"),
			Debug:        getEnvBool("DEBUG", false),
			TemplatesDir: getEnvNonEmpty("TEMPLATES_DIR", "web/templates"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "combohub"),
			Password: getEnv("DB_PASSWORD", "combohub"),
			DBName:   getEnv("DB_NAME", "combohub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 20)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),

			StatementTimeout: getEnvDuration("DB_STATEMENT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		Session: SessionConfig{
			CookieName: getEnvNonEmpty("SESSION_COOKIE_NAME", "session_id"),
			TTL:        getEnvDuration("SESSION_TTL", 30*24*time.Hour),
			JWTSecret:  getEnv("SESSION_JWT_SECRET", ""),
			JWTIssuer:  getEnvNonEmpty("SESSION_JWT_ISSUER", "combohub-auth"),
		},
		RateLimit: RateLimitConfig{
			Actions: int64(getEnvInt("RATE_LIMIT_ACTIONS", 60)),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if cfg.Session.JWTSecret != "" && len(cfg.Session.JWTSecret) < 32 {
		return nil, fmt.Errorf("SESSION_JWT_SECRET must be at least 32 characters")
	}
	if cfg.RateLimit.Actions <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_ACTIONS must be positive, got %d", cfg.RateLimit.Actions)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvNonEmpty(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		if strings.TrimSpace(value) != "" {
			return value
		}
		return defaultValue
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
