package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string        `env:"PORT,        default=8080"`
	Env        string        `env:"ENV,         default=development"`
	JWTSecret  string        `env:"JWT_SECRET,  required"`
	LogLevel   string        `env:"LOG_LEVEL,   default=info"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	SessionTTL time.Duration `env:"SESSION_TTL, default=30m"`

	Mongo  MongoConfig
	Redis  RedisConfig
	SignIn SignInConfig
	Verify VerifyConfig
	Submit SubmitConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=parcel_portal"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,  default=5s"`
}

type SignInConfig struct {
	MaxAttempts   int           `env:"SIGNIN_MAX_ATTEMPTS,   default=5"`
	LockoutWindow time.Duration `env:"SIGNIN_LOCKOUT_WINDOW, default=15m"`
}

type VerifyConfig struct {
	TokenTTL    time.Duration `env:"VERIFY_TOKEN_TTL, default=24h"`
	BaseURL     string        `env:"VERIFY_BASE_URL,  default=http://localhost:8080"`
	MailWorkers int           `env:"MAIL_WORKERS,     default=4"`
}

type SubmitConfig struct {
	DedupTTL time.Duration `env:"SUBMIT_DEDUP_TTL, default=10m"`
}

// IsProduction reports whether cookies must be marked Secure and logs
// emitted as JSON.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	return &cfg, nil
}
