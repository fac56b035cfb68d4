// Package config loads service configuration from config.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Feed      FeedConfig      `mapstructure:"feed"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects postgres (DSN built from parts) or sqlite (Path).
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type FeedConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Environment string  `mapstructure:"environment"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Insecure    bool    `mapstructure:"insecure"`
}

const defaultJWTSecret = "change-me-in-production-change-me"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "social")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "social.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", 72*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("feed.page_size", 20)
	v.SetDefault("feed.max_page_size", 100)

	v.SetDefault("ratelimit.rps", 20)
	v.SetDefault("ratelimit.burst", 40)

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("sentry.environment", "")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "social-graph")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.insecure", true)
}

// Load reads config.yaml (optional) from the working directory or ./config and lets
// environment variables override any key, e.g. DATABASE_HOST or FEED_PAGE_SIZE.
// A .env file in the working directory is loaded first; it never overrides
// variables that are already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Feed.PageSize <= 0 {
		return errors.New("feed.page_size must be positive")
	}
	if c.Feed.MaxPageSize < c.Feed.PageSize {
		return errors.New("feed.max_page_size must be >= feed.page_size")
	}
	if c.IsProduction() {
		if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
			return errors.New("jwt.secret must be changed and at least 32 characters in production")
		}
		if c.Database.Driver == "sqlite" {
			return errors.New("sqlite is not supported in production")
		}
	}
	return nil
}

// PostgresDSN renders the key/value DSN understood by the pgx driver.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}
