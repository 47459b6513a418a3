package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Link preview
	PreviewEndpoint string        // provider base URL
	PreviewTimeout  time.Duration // per-request timeout, 0 = none
	PreviewAPIKey   string        // bootstrap key, written to settings when none is stored

	// Persistence
	DatabaseURL      string        // sqlite path/file: DSN, or libsql:// for Turso
	SnapshotInterval time.Duration // periodic snapshot write (default: 1m)
	TrashRetention   time.Duration // purge trashed bookmarks older than this, 0 = never
	PurgeInterval    time.Duration // how often the purger runs (default: 1h)
	SeedFile         string        // optional homepage bookmarks.yaml imported into an empty shelf
	ExportTitle      string        // base name of export files (slugged)

	// Redis (optional, selects the Redis backend when RedisAddr is set)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Access restrictions
	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	RateBurst    int      // add/import burst per client IP
	RatePerMin   int      // add/import sustained rate per client IP
}

// Load reads the environment, after merging a .env file when one exists.
// Invalid combinations panic: the process should not start half configured.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKSHELF_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKSHELF_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKSHELF_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKSHELF_PRETTY_LOG", true),

		// Preview
		PreviewEndpoint: getenv("LINKSHELF_PREVIEW_ENDPOINT", "https://api.linkpreview.net/"),
		PreviewTimeout:  mustDuration("LINKSHELF_PREVIEW_TIMEOUT", 0),
		PreviewAPIKey:   strings.TrimSpace(os.Getenv("LINKSHELF_PREVIEW_API_KEY")),

		// Persistence
		DatabaseURL:      getenv("LINKSHELF_DATABASE_URL", "file:linkshelf.db"),
		SnapshotInterval: mustDuration("LINKSHELF_SNAPSHOT_INTERVAL", time.Minute),
		TrashRetention:   mustDuration("LINKSHELF_TRASH_RETENTION", 0),
		PurgeInterval:    mustDuration("LINKSHELF_PURGE_INTERVAL", time.Hour),
		SeedFile:         getenv("LINKSHELF_SEED_FILE", ""),
		ExportTitle:      getenv("LINKSHELF_EXPORT_TITLE", "linkshelf"),

		// Redis settings
		RedisAddr:             getenv("LINKSHELF_REDIS_ADDR", ""),
		RedisUser:             getenv("LINKSHELF_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("LINKSHELF_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("LINKSHELF_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LINKSHELF_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("LINKSHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("LINKSHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("LINKSHELF_TRUST_PROXY", false),
		RateBurst:    getenvInt("LINKSHELF_RATE_BURST", 20),
		RatePerMin:   getenvInt("LINKSHELF_RATE_PER_MIN", 60),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	return cfg
}

// Validate reports configuration combinations that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.UseRedis() && c.RedisPasswordRequired && c.RedisPassword == "" {
		errs = append(errs, errors.New("LINKSHELF_REDIS_PASSWORD is required when LINKSHELF_REDIS_PASSWORD_REQUIRED=true"))
	}
	if !c.UseRedis() && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("LINKSHELF_DATABASE_URL must not be empty"))
	}
	if c.SnapshotInterval <= 0 {
		errs = append(errs, fmt.Errorf("LINKSHELF_SNAPSHOT_INTERVAL must be > 0, got %v", c.SnapshotInterval))
	}
	if c.TrashRetention < 0 {
		errs = append(errs, fmt.Errorf("LINKSHELF_TRASH_RETENTION must be >= 0, got %v", c.TrashRetention))
	}
	if c.TrashRetention > 0 && c.PurgeInterval <= 0 {
		errs = append(errs, fmt.Errorf("LINKSHELF_PURGE_INTERVAL must be > 0 when retention is set, got %v", c.PurgeInterval))
	}
	if c.PreviewTimeout < 0 {
		errs = append(errs, fmt.Errorf("LINKSHELF_PREVIEW_TIMEOUT must be >= 0, got %v", c.PreviewTimeout))
	}
	if c.RateBurst <= 0 || c.RatePerMin <= 0 {
		errs = append(errs, errors.New("LINKSHELF_RATE_BURST and LINKSHELF_RATE_PER_MIN must be > 0"))
	}
	return errors.Join(errs...)
}

// UseRedis reports whether the Redis backend is selected.
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if cp.PreviewAPIKey != "" {
		cp.PreviewAPIKey = "***REDACTED***"
	}
	if i := strings.Index(cp.DatabaseURL, "authToken="); i >= 0 {
		cp.DatabaseURL = cp.DatabaseURL[:i] + "authToken=***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
