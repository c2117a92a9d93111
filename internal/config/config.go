// Package config loads service configuration from an optional YAML file and
// SLOTLEDGER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mmynk/slotledger/internal/calculator"
)

// EnvPrefix prefixes every environment override, e.g. SLOTLEDGER_DB_PATH.
const EnvPrefix = "SLOTLEDGER"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Lock    LockConfig    `mapstructure:"lock"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// PricingConfig holds slot prices as decimal strings.
type PricingConfig struct {
	OneHour  string `mapstructure:"one_hour"`
	TwoHour  string `mapstructure:"two_hour"`
	Currency string `mapstructure:"currency"`
}

// RedisConfig enables the Redis batch lock when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LockConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("db.path", "./data/slotledger.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("pricing.one_hour", "3.80")
	v.SetDefault("pricing.two_hour", "7.60")
	v.SetDefault("pricing.currency", "EUR")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lock.ttl", 30*time.Second)
	v.SetDefault("lock.retry_interval", 100*time.Millisecond)
	v.SetDefault("lock.max_retries", 50)
	v.SetDefault("log.level", "info")
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if _, err := cfg.Pricing.Pricing(); err != nil {
		return nil, err
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server.port %d", cfg.Server.Port)
	}

	return cfg, nil
}

// Pricing parses the configured prices. Both must be positive.
func (p PricingConfig) Pricing() (calculator.Pricing, error) {
	one, err := decimal.NewFromString(strings.TrimSpace(p.OneHour))
	if err != nil {
		return calculator.Pricing{}, fmt.Errorf("invalid pricing.one_hour %q: %w", p.OneHour, err)
	}
	two, err := decimal.NewFromString(strings.TrimSpace(p.TwoHour))
	if err != nil {
		return calculator.Pricing{}, fmt.Errorf("invalid pricing.two_hour %q: %w", p.TwoHour, err)
	}
	if !one.IsPositive() || !two.IsPositive() {
		return calculator.Pricing{}, errors.New("slot prices must be positive")
	}
	return calculator.Pricing{OneHour: one, TwoHour: two}, nil
}

// RedisEnabled reports whether a Redis lock should be used.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
