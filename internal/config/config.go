package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kitbuilder587/nosible-go/internal/ratelimit"
)

var (
	ErrMissingAPIKey      = errors.New("NOSIBLE_API_KEY is required")
	ErrInvalidCacheType   = errors.New("invalid cache type")
	ErrMissingRedisAddr   = errors.New("REDIS_ADDR is required for redis cache")
	ErrInvalidConcurrency = errors.New("concurrency must be positive")
)

type Config struct {
	Nosible  NosibleConfig
	LLM      LLMConfig
	Log      LogConfig
	Cache    CacheConfig
	Metrics  MetricsConfig
	Database DatabaseConfig
}

type NosibleConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Retries     int
	Concurrency int
}

type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type LogConfig struct {
	Level string
}

type CacheConfig struct {
	Type      string
	TTL       time.Duration
	RedisAddr string
}

type MetricsConfig struct {
	Addr string
}

// DatabaseConfig - опциональный postgres для архива результатов
type DatabaseConfig struct {
	URL string
}

// Plan is derived from the API key prefix.
func (c *Config) Plan() (ratelimit.Plan, error) {
	return ratelimit.PlanFromAPIKey(c.Nosible.APIKey)
}

func Load() (*Config, error) {
	cfg := &Config{
		Nosible: NosibleConfig{
			APIKey:      os.Getenv("NOSIBLE_API_KEY"),
			BaseURL:     getEnvOrDefault("NOSIBLE_BASE_URL", "https://www.nosible.ai/search/v1/"),
			Timeout:     time.Duration(getEnvIntOrDefault("NOSIBLE_TIMEOUT_SEC", 30)) * time.Second,
			Retries:     getEnvIntOrDefault("NOSIBLE_RETRIES", 5),
			Concurrency: getEnvIntOrDefault("NOSIBLE_CONCURRENCY", 10),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("LLM_API_KEY"),
			BaseURL: getEnvOrDefault("LLM_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   getEnvOrDefault("LLM_MODEL", "openai/gpt-4o"),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Cache: CacheConfig{
			Type:      strings.ToLower(getEnvOrDefault("CACHE_TYPE", "none")),
			TTL:       time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 3600)) * time.Second,
			RedisAddr: os.Getenv("REDIS_ADDR"),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
		Database: LoadDatabase(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Nosible.APIKey == "" {
		return ErrMissingAPIKey
	}
	if _, err := c.Plan(); err != nil {
		return err
	}
	if c.Nosible.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	switch c.Cache.Type {
	case "none", "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return ErrMissingRedisAddr
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCacheType, c.Cache.Type)
	}
	return nil
}

// LoadDatabase reads only the archive settings, so archive commands work
// without an API key.
func LoadDatabase() DatabaseConfig {
	return DatabaseConfig{URL: os.Getenv("DATABASE_URL")}
}

// LoadEnvFiles loads .env.local then .env. Variables already set in the
// environment win, missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env.local", ".env"}
	}

	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
