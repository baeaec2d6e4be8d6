package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// StoreBackend selects the key-value store implementation.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := StoreBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StoreMemory, StoreRedis, StorePostgres:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid store backend: %q (valid options: memory, redis, postgres)", string(text))
	}
}

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Postgres  PostgresConfig  `envPrefix:"POSTGRES_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Logger    LoggerConfig    `envPrefix:"LOG_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Authority AuthorityConfig `envPrefix:"AUTHORITY_"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"NAME"                    envDefault:"dashboard-session"`
	Env                   string `env:"ENV"                     envDefault:"development"`
	Host                  string `env:"HOST"                    envDefault:"0.0.0.0"`
	Port                  string `env:"PORT"                    envDefault:"8080"`
	Version               string `env:"VERSION"                 envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"DSN"`
	MaxConns       int32  `env:"MAX_CONNS"                 envDefault:"10"`
	MinConns       int32  `env:"MIN_CONNS"                 envDefault:"2"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS"            envDefault:"true"`
	MigrationsDir  string `env:"MIGRATIONS_DIR"            envDefault:"migrations"`
	ConnMaxIdleSec int32  `env:"CONN_MAX_IDLE_SECONDS"     envDefault:"30"`
	ConnMaxLifeSec int32  `env:"CONN_MAX_LIFE_SECONDS"     envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	// Addr may list several comma-separated nodes, which selects a cluster client.
	Addr     string `env:"ADDR"     envDefault:"127.0.0.1:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"       envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string `env:"LEVEL"    envDefault:"info"`
	Encoding string `env:"ENCODING" envDefault:"json"`
}

// StoreConfig selects where credentials and the account record live.
type StoreConfig struct {
	Backend   StoreBackend `env:"BACKEND"   envDefault:"memory"`
	Namespace string       `env:"NAMESPACE" envDefault:"dashboard"`
}

// AuthConfig defines credential and navigation parameters.
type AuthConfig struct {
	// JWTSecret verifies credential signatures when set. Expiry is read either way.
	JWTSecret   string `env:"JWT_SECRET"`
	// JWKSURL verifies signatures against a remote key set; it wins over JWTSecret.
	JWKSURL     string `env:"JWKS_URL"`
	SignInPath  string `env:"SIGN_IN_PATH"  envDefault:"/sign-in"`
	SignOutPath string `env:"SIGN_OUT_PATH" envDefault:"/sign-out"`

	// CoalesceChecks shares one in-flight remote check between concurrent navigations.
	CoalesceChecks bool `env:"COALESCE_CHECKS" envDefault:"false"`
}

// AuthorityConfig points at the authority of record for liveness checks.
type AuthorityConfig struct {
	BaseURL        string `env:"BASE_URL"        envDefault:"http://127.0.0.1:9000"`
	StatusPath     string `env:"STATUS_PATH"     envDefault:"/auth/status"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"5"`
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return &cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	c.Auth.SignInPath = ensureLeadingSlash(strings.TrimSpace(c.Auth.SignInPath), "/sign-in")
	c.Auth.SignOutPath = ensureLeadingSlash(strings.TrimSpace(c.Auth.SignOutPath), "/sign-out")
	c.Authority.BaseURL = strings.TrimRight(strings.TrimSpace(c.Authority.BaseURL), "/")
	c.Authority.StatusPath = ensureLeadingSlash(strings.TrimSpace(c.Authority.StatusPath), "/auth/status")
	if c.Authority.TimeoutSeconds <= 0 {
		c.Authority.TimeoutSeconds = 5
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreMemory
	}
	if strings.TrimSpace(c.Store.Namespace) == "" {
		c.Store.Namespace = "dashboard"
	}
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the liveness check timeout.
func (a AuthorityConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// StatusURL returns the full liveness check URL.
func (a AuthorityConfig) StatusURL() string {
	return a.BaseURL + a.StatusPath
}

func ensureLeadingSlash(path, fallback string) string {
	if path == "" {
		return fallback
	}
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}
