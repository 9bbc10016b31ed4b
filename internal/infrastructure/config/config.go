package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo  = "mongo"
	StoreSQLite = "sqlite"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Store     StoreConfig
	Mongo     MongoConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Throttle  ThrottleConfig
	Audit     AuditConfig
	Providers ProvidersConfig
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET, required"`
	TokenTTL         time.Duration `env:"TOKEN_TTL,  default=3h"`
	PBKDF2Iterations int           `env:"PBKDF2_ITERATIONS, default=28000"`
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=mongo"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=dashboard"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=dashboard.db"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ThrottleConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=10"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// ProvidersConfig carries the external provider credentials. The URL fields
// override the public endpoints and are left empty in production.
type ProvidersConfig struct {
	Timeout            time.Duration `env:"PROVIDER_TIMEOUT, default=10s"`
	GithubClientID     string        `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string        `env:"GITHUB_CLIENT_SECRET"`
	GithubRedirectURL  string        `env:"GITHUB_REDIRECT_URL"`
	GithubAPIURL       string        `env:"GITHUB_API_URL"`
	GithubOAuthURL     string        `env:"GITHUB_OAUTH_URL"`
	GoogleUserInfoURL  string        `env:"GOOGLE_USERINFO_URL"`
	FacebookGraphURL   string        `env:"FACEBOOK_GRAPH_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for process startup.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Auth.PBKDF2Iterations <= 0 {
		return fmt.Errorf("config: PBKDF2_ITERATIONS must be positive")
	}
	if c.Audit.Workers <= 0 {
		return fmt.Errorf("config: AUDIT_WORKERS must be positive")
	}
	return nil
}

// IsDevelopment reports whether human-readable logs should be emitted.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
