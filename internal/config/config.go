package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/monocle-dev/taskdeck/db"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Development front-ends always allowed by CORS.
var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Env             string        `env:"ENV" envDefault:"local"`
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	CookieDomain    string        `env:"COOKIE_DOMAIN"`

	JWT      JWTConfig
	Session  SessionConfig
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	CORS     CORSConfig
	Log      LogConfig `envPrefix:"LOG_"`
}

type JWTConfig struct {
	Secret string `env:"JWT_SECRET,required,notEmpty"`
	Issuer string `env:"JWT_ISSUER" envDefault:"taskdeck"`
}

type SessionConfig struct {
	TTL         time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	RememberTTL time.Duration `env:"REMEMBER_TTL" envDefault:"720h"`
	// SweepInterval of zero disables the expired session sweeper.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`
}

type DatabaseConfig struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
	DSN    string `env:"DSN,required,notEmpty"`
}

type CORSConfig struct {
	ClientURL      string   `env:"CLIENT_URL"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	// File, when set, receives JSON logs in addition to stdout.
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"10"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"3"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	switch c.Database.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}

	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("session lifetimes must be positive")
	}

	if c.Session.SweepInterval < 0 {
		return fmt.Errorf("session sweep interval cannot be negative")
	}

	return nil
}

func (c *Config) IsLocal() bool {
	return c.Env == EnvLocal
}

// Origins merges the development defaults with CLIENT_URL and
// ALLOWED_ORIGINS, dropping blanks and duplicates.
func (c *Config) Origins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	candidates := append([]string{c.CORS.ClientURL}, c.CORS.AllowedOrigins...)

	for _, origin := range candidates {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" && !slices.Contains(origins, trimmed) {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
