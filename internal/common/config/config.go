package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port            int           `env:"PORT" envDefault:"3000"`
		Origins         []string      `env:"ORIGINS" envSeparator:"," envDefault:"https://web.telegram.org,http://localhost:5173,http://localhost:3000"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}

	Storage struct {
		// postgres | memory
		Driver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"todo"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"20"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
		AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	}

	Redis struct {
		Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
		// TTL of cached users keyed by telegram id
		UserCacheTTL time.Duration `env:"REDIS_USER_CACHE_TTL" envDefault:"5m"`
	}

	Telegram struct {
		BotToken string `env:"BOT_TOKEN,required"`
		// Maximum age of auth_date; 0 disables the freshness check.
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"1h"`
		// Reject init-data without auth_date when true.
		RequireAuthDate bool   `env:"INIT_DATA_REQUIRE_AUTH_DATE" envDefault:"true"`
		MiniAppURL      string `env:"MINI_APP_URL" envDefault:""`
	}

	Auth struct {
		JWTSecret string        `env:"JWT_SECRET,required"`
		TokenTTL  time.Duration `env:"JWT_TTL" envDefault:"24h"`
		Issuer    string        `env:"JWT_ISSUER" envDefault:"todo-backend"`
	}

	Sharing struct {
		CodeLength    int  `env:"SHARE_CODE_LENGTH" envDefault:"6"`
		MaxAttempts   int  `env:"SHARE_CODE_MAX_ATTEMPTS" envDefault:"5"`
		AllowRotation bool `env:"SHARE_CODE_ALLOW_ROTATION" envDefault:"false"`
		// Join attempts per user per JoinRateWindow; 0 disables limiting.
		JoinRateLimit  int           `env:"JOIN_RATE_LIMIT" envDefault:"10"`
		JoinRateWindow time.Duration `env:"JOIN_RATE_WINDOW" envDefault:"1m"`
	}
}

// DSN builds a lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User, c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode)
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is fine: in production variables come from the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Sharing.CodeLength < 4 || c.Sharing.CodeLength > 16 {
		return fmt.Errorf("SHARE_CODE_LENGTH must be between 4 and 16, got %d", c.Sharing.CodeLength)
	}
	if c.Sharing.MaxAttempts < 1 {
		return fmt.Errorf("SHARE_CODE_MAX_ATTEMPTS must be positive, got %d", c.Sharing.MaxAttempts)
	}
	if c.Telegram.InitDataTTL < 0 {
		return fmt.Errorf("INIT_DATA_TTL cannot be negative")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	return nil
}
