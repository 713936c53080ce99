// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Port     string
	LogLevel string

	TMDB  TMDBConfig
	LLM   LLMConfig
	Cache CacheConfig

	RateLimitPerMinute int
	DatabaseURL        string
	MoodRulesPath      string
	MinVoteCount       int
}

// TMDBConfig configures the catalog client.
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Timeout      time.Duration
	Attempts     int
	RPS          float64
}

// LLMConfig configures the model extractor.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// CacheConfig configures the page and provider cache.
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("TMDB_TIMEOUT", "3500ms")
	v.SetDefault("TMDB_ATTEMPTS", 2)
	v.SetDefault("TMDB_RPS", 40)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TIMEOUT", "8s")
	v.SetDefault("CACHE_BACKEND", CacheNone)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	v.SetDefault("MIN_VOTE_COUNT", 100)
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:     v.GetString("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),
		TMDB: TMDBConfig{
			APIKey:       v.GetString("TMDB_API_KEY"),
			BaseURL:      v.GetString("TMDB_BASE_URL"),
			ImageBaseURL: v.GetString("TMDB_IMAGE_BASE_URL"),
			Timeout:      v.GetDuration("TMDB_TIMEOUT"),
			Attempts:     v.GetInt("TMDB_ATTEMPTS"),
			RPS:          v.GetFloat64("TMDB_RPS"),
		},
		LLM: LLMConfig{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			BaseURL: v.GetString("OPENAI_BASE_URL"),
			Model:   v.GetString("OPENAI_MODEL"),
			Timeout: v.GetDuration("OPENAI_TIMEOUT"),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(v.GetString("CACHE_BACKEND")),
			TTL:           v.GetDuration("CACHE_TTL"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		MoodRulesPath:      v.GetString("MOOD_RULES_PATH"),
		MinVoteCount:       v.GetInt("MIN_VOTE_COUNT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of none, memory, redis; got %q", c.Cache.Backend)
	}
	if c.Cache.Backend != CacheNone && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RPS <= 0 {
		return fmt.Errorf("TMDB_RPS must be positive")
	}
	if c.TMDB.Attempts < 1 {
		return fmt.Errorf("TMDB_ATTEMPTS must be at least 1")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}
