package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	AuthHeader = "header"
	AuthJWT    = "jwt"
	AuthEither = "either"
)

type DatabaseOptions struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	// UniqueIndex adds a (user_id, company, role) unique index on top of
	// the duplicate pre-check.
	UniqueIndex bool `env:"APPLICATIONS_UNIQUE_INDEX" envDefault:"false"`
}

type AuthOptions struct {
	Mode           string        `env:"AUTH_MODE" envDefault:"header"`
	IdentityHeader string        `env:"AUTH_IDENTITY_HEADER" envDefault:"user-id"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTTTL         time.Duration `env:"JWT_TTL" envDefault:"168h"`
}

type CORSOptions struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
}

type MetricsOptions struct {
	Enabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	Path    string `env:"METRICS_PATH" envDefault:"/metrics"`
}

type Config struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	Store     string `env:"STORE" envDefault:"postgres"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	Database DatabaseOptions
	Auth     AuthOptions
	CORS     CORSOptions
	Metrics  MetricsOptions
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	c.Auth.IdentityHeader = strings.TrimSpace(c.Auth.IdentityHeader)

	origins := c.CORS.AllowedOrigins[:0]
	for _, o := range c.CORS.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	c.CORS.AllowedOrigins = origins
}

func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if strings.TrimSpace(c.Database.URL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE is %q", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}

	switch c.Auth.Mode {
	case AuthHeader:
	case AuthJWT, AuthEither:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is %q", c.Auth.Mode)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of header, jwt, either; got %q", c.Auth.Mode)
	}
	if c.Auth.Mode != AuthJWT && c.Auth.IdentityHeader == "" {
		return fmt.Errorf("AUTH_IDENTITY_HEADER must not be empty")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be non-negative, got %d", c.Database.MaxIdleConns)
	}
	return nil
}

// TokenAuth reports whether local accounts and bearer tokens are enabled.
func (c Config) TokenAuth() bool {
	return c.Auth.Mode == AuthJWT || c.Auth.Mode == AuthEither
}
