package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":4566"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel      string // "debug" | "info" | "warn" | "error"
	PrettyLog     bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile       string // optional rotating JSON log file
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	// Service definitions
	SpecDir             string            // botocore-style tree of service-2.json files (optional)
	CatalogFile         string            // compact YAML catalog, merged over SpecDir (optional)
	ReloadInterval      time.Duration     // interval to reload service definitions (default: 1h)
	MaxBodyBytes        int64             // body size beyond which form parsing is skipped
	Upstreams           map[string]string // service name -> base URL of the emulator handling it
	UpstreamTimeout     time.Duration     // timeout of upstream health probes
	StatsFlushInterval  time.Duration     // interval to push resolution stats to redis
	StatsBreakerTimeout time.Duration     // open state duration of the stats circuit breaker

	// Redis (optional, empty address disables persistence)
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

	// Admin endpoints (/_skyroute/*)
	AdminHosts   []string // optional, restrict admin access to specific Host headers
	AdminCIDRS   []string // optional, restrict admin access to specific IP ranges
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	ReloadBurst  int      // manual reload rate limit burst
	ReloadPerMin int      // manual reload rate limit refill per minute
}

// RedisEnabled reports whether a redis address was configured.
func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SKYROUTE_LISTEN_PORT", ":4566"),
		ShutdownTimeout: mustDuration("SKYROUTE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:      getenv("SKYROUTE_LOG_LEVEL", "info"),
		PrettyLog:     mustBool("SKYROUTE_PRETTY_LOG", true),
		LogFile:       getenv("SKYROUTE_LOG_FILE", ""),
		LogMaxSizeMB:  getenvInt("SKYROUTE_LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getenvInt("SKYROUTE_LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getenvInt("SKYROUTE_LOG_MAX_AGE_DAYS", 28),
		LogCompress:   mustBool("SKYROUTE_LOG_COMPRESS", true),

		// Service definitions
		SpecDir:             getenv("SKYROUTE_SPEC_DIR", ""),
		CatalogFile:         getenv("SKYROUTE_CATALOG_FILE", "/etc/skyroute/services.yaml"),
		ReloadInterval:      mustDuration("SKYROUTE_RELOAD_INTERVAL", time.Hour),
		MaxBodyBytes:        int64(getenvInt("SKYROUTE_MAX_BODY_BYTES", 10<<20)),
		Upstreams:           parseUpstreams(getenv("SKYROUTE_UPSTREAMS", "")),
		UpstreamTimeout:     mustDuration("SKYROUTE_UPSTREAM_TIMEOUT", 500*time.Millisecond),
		StatsFlushInterval:  mustDuration("SKYROUTE_STATS_FLUSH_INTERVAL", 30*time.Second),
		StatsBreakerTimeout: mustDuration("SKYROUTE_STATS_BREAKER_TIMEOUT", time.Minute),

		// Redis settings
		RedisAddr:             getenv("SKYROUTE_REDIS_ADDR", ""),
		RedisUser:             getenv("SKYROUTE_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SKYROUTE_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SKYROUTE_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SKYROUTE_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Admin restrictions
		AdminHosts:   splitAndTrim(getenv("SKYROUTE_ADMIN_HOSTS", "")),
		AdminCIDRS:   parseAllowedIPs(getenv("SKYROUTE_ADMIN_CIDRS", "")),
		TrustProxy:   mustBool("SKYROUTE_TRUST_PROXY", false),
		ReloadBurst:  getenvInt("SKYROUTE_RELOAD_BURST", 3),
		ReloadPerMin: getenvInt("SKYROUTE_RELOAD_PER_MIN", 6),
	}

	if cfg.MaxBodyBytes <= 0 {
		panic("❌ FATAL: SKYROUTE_MAX_BODY_BYTES must be positive")
	}

	// Validate Redis password configuration
	if cfg.RedisEnabled() && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SKYROUTE_REDIS_PASSWORD is required when SKYROUTE_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
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

// parseUpstreams parses "sqs=http://localhost:9324, s3=http://minio:9000".
// Service names are matched as-is; URLs must be absolute.
func parseUpstreams(s string) map[string]string {
	pairs := splitAndTrim(s)
	if len(pairs) == 0 {
		return nil
	}

	upstreams := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, target, ok := strings.Cut(pair, "=")
		name, target = strings.TrimSpace(name), strings.TrimSpace(target)
		if !ok || name == "" || target == "" {
			panic(fmt.Sprintf("❌ FATAL: Invalid upstream %q, expected service=url", pair))
		}
		u, err := url.Parse(target)
		if err != nil || u.Scheme == "" || u.Host == "" {
			panic(fmt.Sprintf("❌ FATAL: Invalid upstream URL for %s: %s", name, target))
		}
		upstreams[name] = target
	}
	return upstreams
}
