// Package config reads the service settings from the environment, with an
// optional YAML file layered underneath.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CommitMode selects how a sale is written to storage.
type CommitMode string

const (
	// CommitAtomic runs insert, stock decrement and sales increment in one database transaction.
	CommitAtomic CommitMode = "atomic"
	// CommitSequential issues each step separately with no compensation on failure.
	CommitSequential CommitMode = "sequential"
)

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	DBTimezone  string `yaml:"db_timezone"`
	DBLogLevel  string `yaml:"db_log_level"`
	RedisURL    string `yaml:"redis_url"`

	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	CommitMode        CommitMode `yaml:"commit_mode"`
	LowStockThreshold int64      `yaml:"low_stock_threshold"`
	CurrencySymbol    string     `yaml:"currency_symbol"`

	SeedOwnerEmail    string `yaml:"seed_owner_email"`
	SeedOwnerPassword string `yaml:"seed_owner_password"`
	SeedShopName      string `yaml:"seed_shop_name"`
}

func defaults() Config {
	return Config{
		Port:              "3000",
		DBTimezone:        "Asia/Kolkata",
		DBLogLevel:        "warn",
		JWTSecret:         "your-super-secret-key-change-in-production",
		TokenTTL:          24 * time.Hour,
		IdleTimeout:       5 * time.Minute,
		CommitMode:        CommitAtomic,
		LowStockThreshold: 5,
		CurrencySymbol:    "₹",
		SeedOwnerEmail:    "owner@example.com",
		SeedOwnerPassword: "owner123",
		SeedShopName:      "My Shop",
	}
}

// Load reads .env (if present), then POS_CONFIG_FILE (if set), then the
// process environment. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := defaults()
	if path := os.Getenv("POS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("DB_TIMEZONE", &c.DBTimezone)
	str("DB_LOG_LEVEL", &c.DBLogLevel)
	str("REDIS_URL", &c.RedisURL)
	str("JWT_SECRET", &c.JWTSecret)
	str("CURRENCY_SYMBOL", &c.CurrencySymbol)
	str("SEED_OWNER_EMAIL", &c.SeedOwnerEmail)
	str("SEED_OWNER_PASSWORD", &c.SeedOwnerPassword)
	str("SEED_SHOP_NAME", &c.SeedShopName)

	if c.DatabaseURL == "" && getenv("DB_HOST") != "" {
		c.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=%s",
			getenv("DB_HOST"), getenv("DB_USER"), getenv("DB_PASSWORD"),
			getenv("DB_NAME"), getenv("DB_PORT"), c.DBTimezone,
		)
	}

	if v := getenv("COMMIT_MODE"); v != "" {
		c.CommitMode = CommitMode(strings.ToLower(v))
	}
	if v := getenv("LOW_STOCK_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
		}
		c.LowStockThreshold = n
	}
	for key, dst := range map[string]*time.Duration{"TOKEN_TTL": &c.TokenTTL, "IDLE_TIMEOUT": &c.IdleTimeout} {
		if v := getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}
	return nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.CommitMode {
	case CommitAtomic, CommitSequential:
	default:
		return fmt.Errorf("COMMIT_MODE must be %q or %q, got %q", CommitAtomic, CommitSequential, c.CommitMode)
	}
	if c.LowStockThreshold < 0 {
		return fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}
