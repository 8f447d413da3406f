// Package config loads the service configuration from environment variables.
package config

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// MinSigningKeyLen is the minimum decoded length of JWT_SECRET in bytes.
const MinSigningKeyLen = 32

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	JWT   JWTConfig
	Admin AdminConfig
	Login LoginConfig
	Audit AuditConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type JWTConfig struct {
	// Secret is the base64 (standard encoding) HMAC key.
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
}

type AdminConfig struct {
	Email     string `env:"ADMIN_EMAIL,      default=admin@example.com"`
	Password  string `env:"ADMIN_PASSWORD,   default=admin"`
	FirstName string `env:"ADMIN_FIRST_NAME, default=Admin"`
	LastName  string `env:"ADMIN_LAST_NAME,  default=User"`
}

type LoginConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=catalog"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l and validates the result.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that the env tags alone cannot express.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.SigningKey(); err != nil {
		errs = append(errs, err)
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL))
	}
	if c.Admin.Email == "" || c.Admin.Password == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must not be empty"))
	}
	if c.Login.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be positive, got %d", c.Login.MaxAttempts))
	}
	if c.Login.Window <= 0 {
		errs = append(errs, fmt.Errorf("LOGIN_WINDOW must be positive, got %s", c.Login.Window))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SigningKey decodes JWT_SECRET into the raw HMAC key.
func (c *Config) SigningKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("JWT_SECRET is not valid base64: %w", err)
	}
	if len(key) < MinSigningKeyLen {
		return nil, fmt.Errorf("JWT_SECRET must decode to at least %d bytes, got %d", MinSigningKeyLen, len(key))
	}
	return key, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
