package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/simp-lee/amcham/internal/domain"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Backend BackendConfig `koanf:"backend"`
	Locale  LocaleConfig  `koanf:"locale"`
}

// ServerConfig holds console HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// StorageConfig selects where client state (locale, tokens, profile) is persisted.
type StorageConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
	Redis    RedisConfig    `koanf:"redis"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host      string `koanf:"host"`
	Port      int    `koanf:"port"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// BackendConfig describes the AmCham REST backend.
type BackendConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout string `koanf:"timeout"`
	// PublicPaths are sent without a bearer token. Entries are "/path" (any
	// method) or "METHOD /path"; a trailing "*" matches a prefix and a
	// "{id}" segment matches any single segment.
	PublicPaths []string `koanf:"public_paths"`
}

// LocaleConfig holds display language settings.
type LocaleConfig struct {
	Default string `koanf:"default"`
}

// DefaultPublicPaths lists the backend endpoints reachable without a session.
var DefaultPublicPaths = []string{
	"POST /api/auth/signin",
	"POST /api/auth/refresh",
	"GET /api/events/upcoming",
	"GET /api/events/search",
	"GET /api/events/{id}",
	"GET /api/companies/search",
	"GET /api/companies/{id}",
	"GET /api/companies/{id}/schedules",
	"GET /api/ads/search",
	"GET /api/ads/{id}",
	"GET /api/sectors",
	"GET /api/sectors/{id}",
	"GET /api/categories",
	"GET /api/categories/{id}",
	"GET /api/partners",
	"GET /api/partners/{id}",
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__BACKEND__BASE_URL=https://api.example.com overrides backend.base_url.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values.
func (c *Config) Validate() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := c.validateStorage(); err != nil {
		return err
	}

	// Whitespace-only durations mean unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)
	c.Storage.Pool.ConnMaxLifetime = strings.TrimSpace(c.Storage.Pool.ConnMaxLifetime)
	c.Backend.Timeout = strings.TrimSpace(c.Backend.Timeout)

	optionalDurations := []struct {
		name  string
		value string
	}{
		{"server.timeout", c.Server.Timeout},
		{"server.cors.max_age", c.Server.CORS.MaxAge},
		{"storage.pool.conn_max_lifetime", c.Storage.Pool.ConnMaxLifetime},
		{"backend.timeout", c.Backend.Timeout},
	}
	for _, f := range optionalDurations {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", f.name, f.value, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s %q: must be greater than 0", f.name, f.value)
		}
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", c.Server.RateLimit.RPS)
		}
		if c.Server.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Burst)
		}
	}

	if err := c.validateBackend(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Locale.Default) == "" {
		c.Locale.Default = string(domain.DefaultLocale)
	}
	loc, ok := domain.ParseLocale(c.Locale.Default)
	if !ok {
		return fmt.Errorf("invalid locale.default %q: must be one of %q, %q", c.Locale.Default, domain.LocaleFR, domain.LocaleEN)
	}
	c.Locale.Default = string(loc)

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}

	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Storage.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("storage.sqlite.path is required when driver is sqlite")
		}
		c.Storage.SQLite.Path = sqlitePath
	case "postgres":
		pg := &c.Storage.Postgres
		pg.Host = strings.TrimSpace(pg.Host)
		if pg.Host == "" {
			return fmt.Errorf("storage.postgres.host is required when driver is postgres")
		}
		if pg.Port < 1 || pg.Port > 65535 {
			return fmt.Errorf("invalid storage.postgres.port %d: must be between 1 and 65535", pg.Port)
		}
		pg.User = strings.TrimSpace(pg.User)
		if pg.User == "" {
			return fmt.Errorf("storage.postgres.user is required when driver is postgres")
		}
		pg.DBName = strings.TrimSpace(pg.DBName)
		if pg.DBName == "" {
			return fmt.Errorf("storage.postgres.dbname is required when driver is postgres")
		}
		pg.SSLMode = strings.TrimSpace(pg.SSLMode)
		switch pg.SSLMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid storage.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
		}
		if c.Server.Mode == gin.ReleaseMode && pg.SSLMode != "require" && pg.SSLMode != "verify-ca" && pg.SSLMode != "verify-full" {
			return fmt.Errorf("invalid storage.postgres.sslmode %q: release mode requires %q, %q or %q", pg.SSLMode, "require", "verify-ca", "verify-full")
		}
	case "redis":
		r := &c.Storage.Redis
		r.Host = strings.TrimSpace(r.Host)
		if r.Host == "" {
			return fmt.Errorf("storage.redis.host is required when driver is redis")
		}
		if r.Port < 1 || r.Port > 65535 {
			return fmt.Errorf("invalid storage.redis.port %d: must be between 1 and 65535", r.Port)
		}
		if r.DB < 0 {
			return fmt.Errorf("invalid storage.redis.db %d: must not be negative", r.DB)
		}
	default:
		return fmt.Errorf("invalid storage.driver %q: must be one of %q, %q, %q", c.Storage.Driver, "sqlite", "postgres", "redis")
	}
	return nil
}

func (c *Config) validateBackend() error {
	raw := strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if raw == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid backend.base_url %q: %w", c.Backend.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend.base_url %q: scheme must be http or https", c.Backend.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend.base_url %q: host is required", c.Backend.BaseURL)
	}
	if c.Server.Mode == gin.ReleaseMode && u.Scheme != "https" {
		return fmt.Errorf("invalid backend.base_url %q: must use https in release mode", c.Backend.BaseURL)
	}
	c.Backend.BaseURL = raw

	if len(c.Backend.PublicPaths) == 0 {
		c.Backend.PublicPaths = append([]string(nil), DefaultPublicPaths...)
		return nil
	}

	paths := make([]string, 0, len(c.Backend.PublicPaths))
	seen := make(map[string]struct{}, len(c.Backend.PublicPaths))
	for idx, p := range c.Backend.PublicPaths {
		entry := strings.Join(strings.Fields(p), " ")
		if entry == "" {
			return fmt.Errorf("backend.public_paths[%d] cannot be empty", idx)
		}
		path := entry
		if method, rest, ok := strings.Cut(entry, " "); ok {
			if method != strings.ToUpper(method) {
				return fmt.Errorf("invalid backend.public_paths[%d] %q: method must be upper case", idx, p)
			}
			path = rest
		}
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("invalid backend.public_paths[%d] %q: path must start with '/'", idx, p)
		}
		if _, exists := seen[entry]; exists {
			continue
		}
		seen[entry] = struct{}{}
		paths = append(paths, entry)
	}
	c.Backend.PublicPaths = paths

	return nil
}

// BackendTimeout returns the configured backend timeout, 15s when unset.
func (c *Config) BackendTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Backend.Timeout); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}

// RequestTimeout returns the console request timeout, 30s when unset.
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Server.Timeout); err == nil && d > 0 {
		return d
	}
	return 30 * time.Second
}

// CORSMaxAge returns the preflight cache duration, 12h when unset.
func (c *Config) CORSMaxAge() time.Duration {
	if d, err := time.ParseDuration(c.Server.CORS.MaxAge); err == nil && d > 0 {
		return d
	}
	return 12 * time.Hour
}
