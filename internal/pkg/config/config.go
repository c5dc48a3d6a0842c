package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMemory   = "memory"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	minSecretLength = 32

	defaultAdminPassword = "admin123"
	defaultUserPassword  = "user123"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	JWT    JWTConfig
	Hasher HasherConfig
	Store  StoreConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Login  LoginConfig
	Seed   SeedConfig
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL,    default=24h"`
	Issuer string        `env:"JWT_ISSUER, default=gourmet-gateway/user-service"`
}

type HasherConfig struct {
	Algorithm  string `env:"PASSWORD_HASHER, default=bcrypt"`
	BcryptCost int    `env:"BCRYPT_COST,     default=10"`
}

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER, default=memory"`
	PostgresDSN string `env:"POSTGRES_DSN"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=user_service"`
}

// RedisConfig is optional: an empty Addr disables the login throttle.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxFailures   int           `env:"LOGIN_MAX_FAILURES,   default=5"`
	FailureWindow time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

type SeedConfig struct {
	Enabled       bool   `env:"SEED_DEFAULT_USERS,  default=true"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD, default=admin123"`
	UserPassword  string `env:"SEED_USER_PASSWORD,  default=user123"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from an arbitrary lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}

	switch strings.ToLower(c.Hasher.Algorithm) {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER %q is not one of bcrypt, argon2id", c.Hasher.Algorithm))
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required for the mongo store"))
		}
	case StorePostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of memory, mongo, postgres", c.Store.Driver))
	}

	if c.Login.MaxFailures <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_FAILURES must be positive"))
	}
	if c.Login.FailureWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_FAILURE_WINDOW must be positive"))
	}
	if c.Seed.Enabled && !c.IsDevelopment() &&
		(c.Seed.AdminPassword == defaultAdminPassword || c.Seed.UserPassword == defaultUserPassword) {
		errs = append(errs, errors.New("SEED_ADMIN_PASSWORD and SEED_USER_PASSWORD must be changed from their defaults outside development"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ThrottleEnabled reports whether a Redis address was configured.
func (c *Config) ThrottleEnabled() bool {
	return c.Redis.Addr != ""
}
