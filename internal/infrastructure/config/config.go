package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// Token lifetimes. The lockout threshold is a domain constant, not a knob.
	AccessTokenTTLMinutes     int   `env:"ACCESS_TOKEN_TTL_MINUTES,     default=15"`
	RefreshTokenTTLMillis     int64 `env:"REFRESH_TOKEN_TTL_MS,         default=86400000"`
	ActivationTokenTTLMinutes int   `env:"ACTIVATION_TOKEN_TTL_MINUTES, default=5"`
	ResetTokenTTLMinutes      int   `env:"RESET_TOKEN_TTL_MINUTES,      default=2"`
	PasswordMaxAgeDays        int   `env:"PASSWORD_MAX_AGE_DAYS,        default=90"`

	BlacklistMaxSize int64 `env:"BLACKLIST_MAX_SIZE, default=10000"`
	NotifierWorkers  int   `env:"NOTIFIER_WORKERS,   default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_service"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLMillis) * time.Millisecond
}

func (c *Config) ActivationTokenTTL() time.Duration {
	return time.Duration(c.ActivationTokenTTLMinutes) * time.Minute
}

func (c *Config) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLMinutes) * time.Minute
}

func (c *Config) PasswordMaxAge() time.Duration {
	return time.Duration(c.PasswordMaxAgeDays) * 24 * time.Hour
}
