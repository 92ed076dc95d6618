package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Booking    BookingConfig    `yaml:"booking"`
	Pricing    PricingConfig    `yaml:"pricing"`
	Payment    PaymentConfig    `yaml:"payment"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Redis      RedisConfig      `yaml:"redis"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Seed       SeedConfig       `yaml:"seed"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableGuards           bool   `yaml:"enable_guards"`
	LogQueries             bool   `yaml:"log_queries"`
}

// BookingConfig holds the booking engine settings.
type BookingConfig struct {
	Timezone             string         `yaml:"timezone"`
	Location             *time.Location `yaml:"-"`
	NoShowGraceMinutes   int            `yaml:"no_show_grace_minutes"`
	NoShowGrace          time.Duration  `yaml:"-"`
	SweepIntervalSeconds int            `yaml:"sweep_interval_seconds"`
	SweepInterval        time.Duration  `yaml:"-"`
	UndoHistory          int            `yaml:"undo_history"`
}

// PricingConfig overrides the hourly rate per account category.
type PricingConfig struct {
	DefaultRate int64            `yaml:"default_rate"`
	Rates       map[string]int64 `yaml:"rates"`
}

// PaymentConfig configures the payment ledger.
type PaymentConfig struct {
	MaxAmount int64 `yaml:"max_amount"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	Enabled    bool   `yaml:"enabled"`
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// RedisConfig enables the distributed engine lock when Addr is set.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	LockTTLSec int    `yaml:"lock_ttl_seconds"`
}

// AMQPConfig enables booking event publishing when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

// SeedConfig lists rooms and accounts upserted at start-up.
type SeedConfig struct {
	Rooms    []SeedRoom    `yaml:"rooms"`
	Accounts []SeedAccount `yaml:"accounts"`
}

type SeedRoom struct {
	Number   string `yaml:"number"`
	Building string `yaml:"building"`
	Capacity int    `yaml:"capacity"`
}

type SeedAccount struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Category   string `yaml:"category"`
	HourlyRate int64  `yaml:"hourly_rate"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.fillDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets secrets and endpoints come from the environment.
func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"BOOKING_DATABASE_DSN", &cfg.Database.DSN},
		{"BOOKING_VAPID_PUBLIC_KEY", &cfg.Push.PublicKey},
		{"BOOKING_VAPID_PRIVATE_KEY", &cfg.Push.PrivateKey},
		{"BOOKING_REDIS_ADDR", &cfg.Redis.Addr},
		{"BOOKING_AMQP_URL", &cfg.AMQP.URL},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

func (cfg *Config) fillDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 5
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return fmt.Errorf("invalid booking.timezone %q: %w", cfg.Booking.Timezone, err)
	}
	cfg.Booking.Location = loc

	if cfg.Booking.NoShowGraceMinutes <= 0 {
		cfg.Booking.NoShowGraceMinutes = 30
	}
	cfg.Booking.NoShowGrace = time.Duration(cfg.Booking.NoShowGraceMinutes) * time.Minute

	if cfg.Booking.SweepIntervalSeconds <= 0 {
		cfg.Booking.SweepIntervalSeconds = 60
	}
	cfg.Booking.SweepInterval = time.Duration(cfg.Booking.SweepIntervalSeconds) * time.Second

	if cfg.Booking.UndoHistory <= 0 {
		cfg.Booking.UndoHistory = 50
	}

	if cfg.Pricing.DefaultRate <= 0 {
		cfg.Pricing.DefaultRate = 20
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 100
	}

	if cfg.Redis.LockTTLSec <= 0 {
		cfg.Redis.LockTTLSec = 10
	}
	if cfg.AMQP.Exchange == "" {
		cfg.AMQP.Exchange = "bookings"
	}
	return nil
}
