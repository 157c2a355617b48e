package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// RunModeLongpoll receives updates with getUpdates
	RunModeLongpoll = "longpoll"
	// RunModeWebhook receives updates on an HTTP endpoint
	RunModeWebhook = "webhook"

	SessionMemory   = "memory"
	SessionPostgres = "postgres"

	ProfileProd = "prod"
	ProfileDev  = "dev"
)

// Config holds all application configuration
type Config struct {
	BotToken  string          `yaml:"bot_token" envconfig:"BOT_TOKEN"`
	AdminID   int64           `yaml:"admin_id" envconfig:"ADMIN_ID"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	AI        AIConfig        `yaml:"ai"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Health    HealthConfig    `yaml:"health"`
	Log       LogConfig       `yaml:"log"`
}

// TelegramConfig selects how updates are received
type TelegramConfig struct {
	RunMode       string        `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	PollTimeout   time.Duration `yaml:"poll_timeout" envconfig:"TELEGRAM_POLL_TIMEOUT"`
	WebhookURL    string        `yaml:"webhook_url" envconfig:"WEBHOOK_URL"`
	WebhookListen string        `yaml:"webhook_listen" envconfig:"WEBHOOK_LISTEN"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host" envconfig:"DB_HOST"`
	Port            string        `yaml:"port" envconfig:"DB_PORT"`
	Name            string        `yaml:"name" envconfig:"DB_NAME"`
	User            string        `yaml:"user" envconfig:"DB_USER"`
	Password        string        `yaml:"password" envconfig:"DB_PASSWORD"`
	SSLMode         string        `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"DB_CONN_MAX_LIFETIME"`
	MigrationsURL   string        `yaml:"migrations_url" envconfig:"MIGRATIONS_URL"`
}

// SessionConfig selects where conversation states live
type SessionConfig struct {
	Backend string `yaml:"backend" envconfig:"SESSION_BACKEND"`
	// TTL of an idle persisted state; 0 keeps states forever
	TTL time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
}

// BroadcastConfig tunes the fan-out loop
type BroadcastConfig struct {
	BatchSize int           `yaml:"batch_size" envconfig:"BROADCAST_BATCH_SIZE"`
	Pause     time.Duration `yaml:"pause" envconfig:"BROADCAST_PAUSE"`
}

// AIConfig selects the completion model
type AIConfig struct {
	Model   string        `yaml:"model" envconfig:"AI_MODEL"`
	Timeout time.Duration `yaml:"timeout" envconfig:"AI_TIMEOUT"`
}

// RateLimitConfig limits inbound updates per user
type RateLimitConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"RATE_LIMIT_INTERVAL"`
	Burst    int           `yaml:"burst" envconfig:"RATE_LIMIT_BURST"`
}

// HealthConfig holds the probe server address; empty disables it
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// LogConfig selects the zap preset and level
type LogConfig struct {
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
	Level   string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Load reads configuration from .env, an optional YAML file (CONFIG_PATH)
// and environment variables, in that order of precedence from lowest
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Telegram.RunMode, RunModeLongpoll)
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = 10 * time.Second
	}
	setDefault(&c.Telegram.WebhookListen, ":8443")

	setDefault(&c.Database.Host, "localhost")
	setDefault(&c.Database.Port, "5432")
	setDefault(&c.Database.Name, "vipbot")
	setDefault(&c.Database.User, "vipbot")
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Database.MigrationsURL, "file://migrations")
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 5 * time.Minute
	}

	setDefault(&c.Session.Backend, SessionPostgres)

	if c.Broadcast.BatchSize == 0 {
		c.Broadcast.BatchSize = 10
	}
	if c.Broadcast.Pause == 0 {
		c.Broadcast.Pause = time.Second
	}

	setDefault(&c.AI.Model, "gemini-1.5-flash")
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}

	if c.RateLimit.Interval == 0 {
		c.RateLimit.Interval = 500 * time.Millisecond
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}

	setDefault(&c.Log.Profile, ProfileProd)
	setDefault(&c.Log.Level, "info")

	c.Telegram.RunMode = strings.ToLower(strings.TrimSpace(c.Telegram.RunMode))
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	c.Log.Profile = strings.ToLower(strings.TrimSpace(c.Log.Profile))
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	switch c.Telegram.RunMode {
	case RunModeLongpoll:
	case RunModeWebhook:
		if c.Telegram.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required when TELEGRAM_RUN_MODE is %q", RunModeWebhook)
		}
	default:
		return fmt.Errorf("invalid TELEGRAM_RUN_MODE %q; allowed: longpoll, webhook", c.Telegram.RunMode)
	}

	switch c.Session.Backend {
	case SessionMemory, SessionPostgres:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q; allowed: memory, postgres", c.Session.Backend)
	}

	switch c.Log.Profile {
	case ProfileProd, ProfileDev:
	default:
		return fmt.Errorf("invalid LOG_PROFILE %q; allowed: prod, dev", c.Log.Profile)
	}

	if c.Broadcast.BatchSize < 0 {
		return fmt.Errorf("BROADCAST_BATCH_SIZE must be > 0")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}
