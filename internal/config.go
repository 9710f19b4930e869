package internal

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// InsecureJWTSecret is the placeholder secret shipped in sample env files. The server refuses to start with it.
const InsecureJWTSecret = "fallback-secret-change-me"

const (
	DefaultTokenTTL = 7 * 24 * time.Hour
	MaxTokenLeeway  = 5 * time.Minute
	MinSecretLength = 32
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	TokenLeeway time.Duration `mapstructure:"token_leeway"`
	Argon2      Argon2Config  `mapstructure:"argon2"`
}

// Argon2Config holds the argon2id cost parameters used for new password hashes.
type Argon2Config struct {
	Time       uint32 `mapstructure:"time"`
	MemoryKiB  uint32 `mapstructure:"memory_kib"`
	Threads    uint8  `mapstructure:"threads"`
	SaltLength uint32 `mapstructure:"salt_length"`
	KeyLength  uint32 `mapstructure:"key_length"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Endpoint     string  `mapstructure:"endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the values applied before the config file and environment are read.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"env":                                 "development",
		"http_server.port":                    3000,
		"http_server.allowed_origins":         "http://localhost:5173",
		"http_server.read_header_timeout":     "5s",
		"http_server.read_timeout":            "15s",
		"http_server.write_timeout":           "15s",
		"http_server.idle_timeout":            "60s",
		"http_server.shutdown_timeout":        "30s",
		"database.max_open_conns":             10,
		"database.max_idle_conns":             5,
		"database.conn_max_lifetime":          "30m",
		"database.conn_max_idle_time":         "5m",
		"security.jwt_issuer":                 "smartsupply",
		"security.token_ttl":                  "7d",
		"security.token_leeway":               "0s",
		"security.argon2.time":                3,
		"security.argon2.memory_kib":          64 * 1024,
		"security.argon2.threads":             2,
		"security.argon2.salt_length":         16,
		"security.argon2.key_length":          32,
		"observability.metrics.enabled":       true,
		"observability.metrics.path":          "/metrics",
		"observability.tracing.enabled":       false,
		"observability.tracing.service_name":  "smartsupply-api",
		"observability.tracing.sampling_rate": 1.0,
		"observability.logging.level":         "info",
		"observability.logging.format":        "text",
	}
}

// EnvBindings maps config keys to the plain environment variable names used by deployments.
func EnvBindings() map[string]string {
	return map[string]string{
		"env":                         "APP_ENV",
		"http_server.port":            "PORT",
		"database.source":             "DATABASE_URL",
		"security.jwt_secret":         "JWT_SECRET",
		"security.token_ttl":          "JWT_EXPIRES_IN",
		"security.jwt_issuer":         "JWT_ISSUER",
		"observability.logging.level": "LOG_LEVEL",
	}
}

// DurationHook decodes durations and additionally accepts a whole-day suffix such as "7d".
func DurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) || from.Kind() != reflect.String {
			return data, nil
		}
		return ParseDuration(data.(string))
	}
}

// ParseDuration extends time.ParseDuration with an "<n>d" form.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("observability config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	for _, origin := range c.Origins() {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits the comma separated allowed_origins value.
func (c *ServerConfig) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("jwt_secret is required (set JWT_SECRET)")
	case c.JWTSecret == InsecureJWTSecret:
		return errors.New("jwt_secret is set to the insecure placeholder value")
	case len(c.JWTSecret) < MinSecretLength:
		return fmt.Errorf("jwt_secret must be at least %d characters", MinSecretLength)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if c.TokenLeeway < 0 || c.TokenLeeway > MaxTokenLeeway {
		return fmt.Errorf("token_leeway must be between 0 and %s", MaxTokenLeeway)
	}
	return c.Argon2.Validate()
}

func (c *Argon2Config) Validate() error {
	if c.Time < 1 {
		return errors.New("argon2.time must be at least 1")
	}
	if c.MemoryKiB < 8*1024 {
		return errors.New("argon2.memory_kib must be at least 8192")
	}
	if c.Threads < 1 {
		return errors.New("argon2.threads must be at least 1")
	}
	if c.SaltLength < 8 {
		return errors.New("argon2.salt_length must be at least 8")
	}
	if c.KeyLength < 16 {
		return errors.New("argon2.key_length must be at least 16")
	}
	return nil
}

func (c *ObservabilityConfig) Validate() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	if c.Tracing.Enabled {
		if c.Tracing.Endpoint == "" {
			return errors.New("tracing.endpoint is required when tracing is enabled")
		}
		if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
			return errors.New("tracing.sampling_rate must be between 0 and 1")
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
