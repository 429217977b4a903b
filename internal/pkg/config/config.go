package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo = "mongo"
	StoreMySQL = "mysql"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Store    string `env:"STORE_DRIVER, default=mongo"`

	Auth  AuthConfig
	Admin AdminConfig
	Mongo MongoConfig
	MySQL MySQLConfig
	Redis RedisConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	JWTAlgorithm   string        `env:"JWT_ALGORITHM,      default=HS256"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL,   default=15m"`
	BcryptCost     int           `env:"BCRYPT_COST,        default=10"`
	MaxAttempts    int           `env:"LOGIN_MAX_ATTEMPTS, default=5"`
	AttemptWindow  time.Duration `env:"LOGIN_WINDOW,       default=15m"`
}

// AdminConfig seeds the first administrator at startup when Email is set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
	Name     string `env:"ADMIN_NAME, default=Administrator"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN, default=root@tcp(localhost:3306)/accounts"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMongo, StoreMySQL:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store)
	}
	if c.Admin.Email != "" && c.Admin.Password == "" {
		return fmt.Errorf("config: ADMIN_PASSWORD is required when ADMIN_EMAIL is set")
	}
	return nil
}

// Process reads configuration from lookuper. Load is the production entry
// point; tests pass envconfig.MapLookuper.
func Process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}
