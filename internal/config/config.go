// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

// Config holds all runtime configuration for the web service.
type Config struct {
	Port           string
	BackendURL     string        // base URL of the jobs backend, no trailing slash
	BackendTimeout time.Duration // per-request HTTP timeout towards the backend
	RedisURL       string
	SessionStore   string // "redis" or "postgres"
	DatabaseURL    string // only required when SessionStore is postgres
	SessionTTL     time.Duration
	CookieSecure   bool
	TagCacheTTL    time.Duration
	PagerIdleTTL   time.Duration
	SweepInterval  int // minutes between scheduler runs
	RateLimitRPS   float64
	RateLimitBurst int
	LogLevel       string
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	backendURL := strings.TrimRight(os.Getenv("BACKEND_URL"), "/")
	if backendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	store := os.Getenv("SESSION_STORE")
	if store == "" {
		store = SessionStoreRedis
	}
	if store != SessionStoreRedis && store != SessionStorePostgres {
		return nil, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreRedis, SessionStorePostgres, store)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if store == SessionStorePostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when SESSION_STORE=postgres")
	}

	port := os.Getenv("WEB_PORT")
	if port == "" {
		port = "8080"
	}

	cfg := &Config{
		Port:         port,
		BackendURL:   backendURL,
		RedisURL:     redisURL,
		SessionStore: store,
		DatabaseURL:  dbURL,
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	var err error
	if cfg.BackendTimeout, err = durationEnv("BACKEND_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TagCacheTTL, err = durationEnv("TAG_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PagerIdleTTL, err = durationEnv("PAGER_IDLE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = positiveIntEnv("SWEEP_INTERVAL_MINUTES", 5); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = positiveIntEnv("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}

	cfg.RateLimitRPS = 5
	if s := os.Getenv("RATE_LIMIT_RPS"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number, got %q", s)
		}
		cfg.RateLimitRPS = v
	}

	if s := os.Getenv("COOKIE_SECURE"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE must be a boolean, got %q", s)
		}
		cfg.CookieSecure = v
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return d, nil
}

func positiveIntEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
