package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Diigo credentials (required)
	Username string // DIIGO_USERNAME
	Password string // DIIGO_PASSWORD
	APIKey   string // DIIGO_API_KEY

	// Upstream API
	BaseURL                string        // ex: https://secure.diigo.com/api/v2
	RequestTimeout         time.Duration // per-request HTTP timeout (ex: 10s)
	MaxBookmarksPerRequest int           // server page cap (Diigo caps at 100)
	MaxRetries             int           // attempts for transient failures
	RetryBackoff           float64       // backoff base, wait = base^attempt seconds
	BulkDelay              time.Duration // default delay between bulk saves
	CacheTTL               time.Duration // TTL for cached bookmark lists

	// Logging
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Optional HTTP transport (empty = stdio only)
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	// Optional Redis list cache (empty addr = cache disabled)
	RedisAddr           string // ex: "localhost:6379"
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisWarnThreshold  int           // warn after this many attempts
}

// Load reads configuration from the environment, with an optional YAML
// file (DIIGO_CONFIG_FILE) providing defaults underneath env overrides.
// It returns an error when required credentials are missing.
func Load() (*Config, error) {
	src, err := newSource(os.Getenv("DIIGO_CONFIG_FILE"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Username: src.get("DIIGO_USERNAME", ""),
		Password: src.get("DIIGO_PASSWORD", ""),
		APIKey:   src.get("DIIGO_API_KEY", ""),

		BaseURL:                src.get("DIIGO_BASE_URL", "https://secure.diigo.com/api/v2"),
		RequestTimeout:         src.duration("DIIGO_REQUEST_TIMEOUT", 10*time.Second),
		MaxBookmarksPerRequest: src.integer("DIIGO_MAX_BOOKMARKS_PER_REQUEST", 100),
		MaxRetries:             src.integer("DIIGO_MAX_RETRIES", 3),
		RetryBackoff:           src.float("DIIGO_RETRY_BACKOFF", 2.0),
		BulkDelay:              src.duration("DIIGO_BULK_DELAY", 500*time.Millisecond),
		CacheTTL:               src.duration("DIIGO_CACHE_TTL", 5*time.Minute),

		LogLevel:  src.get("DIIGO_LOG_LEVEL", "info"),
		PrettyLog: src.boolean("DIIGO_PRETTY_LOG", false),

		ListenPort:      src.get("DIIGO_LISTEN_PORT", ""),
		ShutdownTimeout: src.duration("DIIGO_SHUTDOWN_TIMEOUT", 5*time.Second),

		RedisAddr:           src.get("DIIGO_REDIS_ADDR", ""),
		RedisUser:           src.get("DIIGO_REDIS_USERNAME", "default"),
		RedisPassword:       src.get("DIIGO_REDIS_PASSWORD", ""),
		RedisDB:             src.integer("DIIGO_REDIS_DB", 0),
		RedisDT:             src.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             src.duration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             src.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       src.integer("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: src.duration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  src.duration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        src.duration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    src.duration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisWarnThreshold:  src.integer("REDIS_WARN_THRESHOLD", 3),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"DIIGO_USERNAME", c.Username},
		{"DIIGO_PASSWORD", c.Password},
		{"DIIGO_API_KEY", c.APIKey},
	}

	var missing []string
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s (set them in the environment or a DIIGO_CONFIG_FILE; API keys: https://www.diigo.com/api_keys/new/)",
			strings.Join(missing, ", "))
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("DIIGO_MAX_RETRIES must be >= 1, got %d", c.MaxRetries)
	}
	if c.RetryBackoff <= 0 {
		return fmt.Errorf("DIIGO_RETRY_BACKOFF must be > 0, got %v", c.RetryBackoff)
	}
	if c.MaxBookmarksPerRequest < 1 {
		return fmt.Errorf("DIIGO_MAX_BOOKMARKS_PER_REQUEST must be >= 1, got %d", c.MaxBookmarksPerRequest)
	}

	return nil
}

// source resolves keys from the environment first, then the optional
// YAML file, then the built-in default.
type source struct {
	file map[string]string
}

func newSource(path string) (*source, error) {
	s := &source{}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	s.file = values
	return s, nil
}

func (s *source) lookup(key string) (string, bool) {
	if v := os.Getenv(key); v != "" {
		return v, true
	}
	if v, ok := s.file[key]; ok && v != "" {
		return v, true
	}
	return "", false
}

func (s *source) get(key, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

func (s *source) integer(key string, def int) int {
	if v, ok := s.lookup(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (s *source) float(key string, def float64) float64 {
	if v, ok := s.lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (s *source) boolean(key string, def bool) bool {
	if v, ok := s.lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (s *source) duration(key string, def time.Duration) time.Duration {
	if v, ok := s.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are treated as seconds, matching the upstream
		// convention (DIIGO_REQUEST_TIMEOUT=10).
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
