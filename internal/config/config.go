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

// Backend names accepted by VIDMARK_STORE and VIDMARK_BROWSER_BACKEND.
const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout of the HTTP API

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Store          string        // redis | sqlite | file | memory
	SQLitePath     string        // database file for the sqlite store
	FilePath       string        // JSON document for the file store
	BrowserBackend string        // memory | redis, where the bookmark tree lives
	GrantBookmarks bool          // grant the bookmarks permission at startup
	OptionsFile    string        // optional YAML/TOML option overrides
	SweepInterval  time.Duration // auto-delete sweep period, 0 disables the ticker

	AllowedOrigins []string // CORS origins for the HTTP API

	// Redis, required when Store or BrowserBackend is redis
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, doubles
	RedisWarnThreshold  int           // warn after this many attempts
}

// Load reads the configuration from the environment. A .env file in the
// working directory (or at VIDMARK_ENV_FILE) is applied first without
// overriding variables that are already set.
func Load() *Config {
	loadDotEnv(getenv("VIDMARK_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("VIDMARK_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("VIDMARK_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("VIDMARK_REQUEST_TIMEOUT", 15*time.Second),

		// Logging
		LogLevel:  getenv("VIDMARK_LOG_LEVEL", "info"),
		PrettyLog: mustBool("VIDMARK_PRETTY_LOG", true),

		// Storage
		Store:          oneOf("VIDMARK_STORE", BackendSQLite, BackendRedis, BackendSQLite, BackendFile, BackendMemory),
		SQLitePath:     getenv("VIDMARK_SQLITE_PATH", "vidmark.db"),
		FilePath:       getenv("VIDMARK_FILE_PATH", "vidmark.json"),
		BrowserBackend: oneOf("VIDMARK_BROWSER_BACKEND", BackendMemory, BackendMemory, BackendRedis),
		GrantBookmarks: mustBool("VIDMARK_GRANT_BOOKMARKS", false),
		OptionsFile:    getenv("VIDMARK_OPTIONS_FILE", ""),
		SweepInterval:  mustDuration("VIDMARK_SWEEP_INTERVAL", time.Hour),

		AllowedOrigins: splitAndTrim(getenv("VIDMARK_ALLOWED_ORIGINS", "*")),
	}

	if cfg.NeedsRedis() {
		cfg.RedisAddr = requireEnv("VIDMARK_REDIS_ADDR")
		cfg.RedisUser = getenv("VIDMARK_REDIS_USERNAME", "")
		cfg.RedisPassword = getenv("VIDMARK_REDIS_PASSWORD", "")
		cfg.RedisDB = getenvInt("VIDMARK_REDIS_DB", 0)
		cfg.RedisDT = mustDuration("VIDMARK_REDIS_DIAL_TIMEOUT", 5*time.Second)
		cfg.RedisRT = mustDuration("VIDMARK_REDIS_READ_TIMEOUT", 3*time.Second)
		cfg.RedisWT = mustDuration("VIDMARK_REDIS_WRITE_TIMEOUT", 3*time.Second)
		cfg.RedisMaxWait = mustDuration("VIDMARK_REDIS_MAX_WAIT", 10*time.Second)
		cfg.RedisPingTimeout = mustDuration("VIDMARK_REDIS_PING_TIMEOUT", 5*time.Second)
		cfg.RedisPoolSize = getenvInt("VIDMARK_REDIS_POOL_SIZE", 10)
		cfg.RedisConnectTimeout = mustDuration("VIDMARK_REDIS_CONNECT_TIMEOUT", 30*time.Second)
		cfg.RedisRetryInterval = mustDuration("VIDMARK_REDIS_RETRY_INTERVAL", 2*time.Second)
		cfg.RedisWarnThreshold = getenvInt("VIDMARK_REDIS_WARN_THRESHOLD", 3)
	}

	return cfg
}

// NeedsRedis reports whether any configured backend lives in Redis.
func (c *Config) NeedsRedis() bool {
	return c.Store == BackendRedis || c.BrowserBackend == BackendRedis
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	if out.RedisPassword != "" {
		out.RedisPassword = "***REDACTED***"
	}
	if out.RedisUser != "" {
		out.RedisUser = "***REDACTED***"
	}
	return out
}

// helpers
func loadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Sprintf("❌ FATAL: Invalid env file %s: %v", path, err))
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

// oneOf returns the variable lowercased, panicking when it is not one of allowed.
func oneOf(key, def string, allowed ...string) string {
	v := strings.ToLower(getenv(key, def))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (allowed: %s)", key, v, strings.Join(allowed, ", ")))
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
