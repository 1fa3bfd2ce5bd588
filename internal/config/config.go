package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Store        StoreConfig        `yaml:"store"`
	Payment      PaymentConfig      `yaml:"payment"`
	Notification NotificationConfig `yaml:"notification"`
	Admin        AdminConfig        `yaml:"admin"`
	Worker       WorkerConfig       `yaml:"worker"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           string `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	DBName         string `yaml:"dbname"`
	SSLMode        string `yaml:"sslmode"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MaxIdleConns   int    `yaml:"max_idle_conns"`
	MigrationsPath string `yaml:"migrations_path"`
}

// RedisConfig holds Redis settings. Redis is optional; without it checkout
// relies on row locks alone and carts are not persisted.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StoreConfig holds storefront business settings.
type StoreConfig struct {
	Timezone             string        `yaml:"timezone"`
	OrderPrefix          string        `yaml:"order_prefix"`
	CartTTL              time.Duration `yaml:"cart_ttl"`
	AvailabilityCacheTTL time.Duration `yaml:"availability_cache_ttl"`
	LockTTL              time.Duration `yaml:"lock_ttl"`
}

// PaymentConfig holds payment gateway settings. Provider "noop" disables
// session creation.
type PaymentConfig struct {
	Provider      string        `yaml:"provider"`
	BaseURL       string        `yaml:"base_url"`
	ServerKey     string        `yaml:"server_key"`
	WebhookSecret string        `yaml:"webhook_secret"`
	Timeout       time.Duration `yaml:"timeout"`
}

// NotificationConfig holds order notification channels.
type NotificationConfig struct {
	Channels   []string       `yaml:"channels"`
	Timeout    time.Duration  `yaml:"timeout"`
	AdminEmail string         `yaml:"admin_email"`
	SMTP       SMTPConfig     `yaml:"smtp"`
	SendGrid   SendGridConfig `yaml:"sendgrid"`
	Kafka      KafkaConfig    `yaml:"kafka"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// KafkaConfig holds the broker list and topic for outgoing messages.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// AdminConfig holds admin basic auth credentials.
type AdminConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// WorkerConfig holds background job settings.
type WorkerConfig struct {
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	PendingExpiry     time.Duration `yaml:"pending_expiry"`
	LifecycleSchedule string        `yaml:"lifecycle_schedule"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           "5432",
			User:           "postgres",
			Password:       "postgres",
			DBName:         "gear_rental",
			SSLMode:        "disable",
			MaxOpenConns:   25,
			MaxIdleConns:   5,
			MigrationsPath: "migrations",
		},
		Redis: RedisConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    "6379",
		},
		Store: StoreConfig{
			Timezone:             "Asia/Jakarta",
			OrderPrefix:          "RNT",
			CartTTL:              7 * 24 * time.Hour,
			AvailabilityCacheTTL: 30 * time.Second,
			LockTTL:              10 * time.Second,
		},
		Payment: PaymentConfig{
			Provider: "noop",
			Timeout:  10 * time.Second,
		},
		Notification: NotificationConfig{
			Channels: []string{"log"},
			Timeout:  15 * time.Second,
			SMTP:     SMTPConfig{Port: 587},
			Kafka:    KafkaConfig{Topic: "order-notifications"},
		},
		Worker: WorkerConfig{
			CleanupInterval:   time.Minute,
			PendingExpiry:     24 * time.Hour,
			LifecycleSchedule: "0 5 0 * * *",
		},
		Log: LogConfig{Env: "development"},
	}
}

// Load reads configuration from environment variables on top of the defaults.
func Load() *Config {
	return applyEnv(Default())
}

// LoadFile reads a YAML file on top of the defaults, then applies environment
// overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return applyEnv(cfg), nil
}

func applyEnv(c *Config) *Config {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnv("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.MigrationsPath = getEnv("MIGRATIONS_PATH", c.Database.MigrationsPath)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		applyDatabaseURL(&c.Database, dbURL)
	}

	c.Redis.Enabled = getBoolEnv("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnv("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		applyRedisURL(&c.Redis, redisURL)
	}

	c.Store.Timezone = getEnv("STORE_TIMEZONE", c.Store.Timezone)
	c.Store.OrderPrefix = getEnv("ORDER_PREFIX", c.Store.OrderPrefix)
	c.Store.CartTTL = getDurationEnv("CART_TTL", c.Store.CartTTL)
	c.Store.AvailabilityCacheTTL = getDurationEnv("AVAILABILITY_CACHE_TTL", c.Store.AvailabilityCacheTTL)
	c.Store.LockTTL = getDurationEnv("LOCK_TTL", c.Store.LockTTL)

	c.Payment.Provider = getEnv("PAYMENT_PROVIDER", c.Payment.Provider)
	c.Payment.BaseURL = getEnv("PAYMENT_BASE_URL", c.Payment.BaseURL)
	c.Payment.ServerKey = getEnv("PAYMENT_SERVER_KEY", c.Payment.ServerKey)
	c.Payment.WebhookSecret = getEnv("PAYMENT_WEBHOOK_SECRET", c.Payment.WebhookSecret)
	c.Payment.Timeout = getDurationEnv("PAYMENT_TIMEOUT", c.Payment.Timeout)

	n := &c.Notification
	n.Channels = getListEnv("NOTIFY_CHANNELS", n.Channels)
	n.Timeout = getDurationEnv("NOTIFY_TIMEOUT", n.Timeout)
	n.AdminEmail = getEnv("NOTIFY_ADMIN_EMAIL", n.AdminEmail)
	n.SMTP.Host = getEnv("SMTP_HOST", n.SMTP.Host)
	n.SMTP.Port = getIntEnv("SMTP_PORT", n.SMTP.Port)
	n.SMTP.User = getEnv("SMTP_USER", n.SMTP.User)
	n.SMTP.Password = getEnv("SMTP_PASSWORD", n.SMTP.Password)
	n.SMTP.From = getEnv("SMTP_FROM", n.SMTP.From)
	n.SendGrid.APIKey = getEnv("SENDGRID_API_KEY", n.SendGrid.APIKey)
	n.SendGrid.FromEmail = getEnv("SENDGRID_FROM_EMAIL", n.SendGrid.FromEmail)
	n.SendGrid.FromName = getEnv("SENDGRID_FROM_NAME", n.SendGrid.FromName)
	n.Kafka.Brokers = getListEnv("KAFKA_BROKERS", n.Kafka.Brokers)
	n.Kafka.Topic = getEnv("KAFKA_TOPIC", n.Kafka.Topic)

	c.Admin.User = getEnv("ADMIN_USER", c.Admin.User)
	c.Admin.Password = getEnv("ADMIN_PASSWORD", c.Admin.Password)

	c.Worker.CleanupInterval = getDurationEnv("CLEANUP_INTERVAL", c.Worker.CleanupInterval)
	c.Worker.PendingExpiry = getDurationEnv("PENDING_EXPIRY", c.Worker.PendingExpiry)
	c.Worker.LifecycleSchedule = getEnv("LIFECYCLE_SCHEDULE", c.Worker.LifecycleSchedule)

	c.Log.Env = getEnv("ENV", c.Log.Env)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	return c
}

// applyDatabaseURL parses a postgres:// URL as supplied by hosting platforms.
// Unparseable URLs leave the current values untouched.
func applyDatabaseURL(c *DatabaseConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Host = u.Hostname()
	if port := u.Port(); port != "" {
		c.Port = port
	}
	if u.User != nil {
		c.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
	if name := strings.TrimPrefix(u.Path, "/"); name != "" {
		c.DBName = name
	}
	c.SSLMode = "require"
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.SSLMode = mode
	}
}

func applyRedisURL(c *RedisConfig, raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	c.Enabled = true
	c.Host = u.Hostname()
	if port := u.Port(); port != "" {
		c.Port = port
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr returns the Redis address.
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Location resolves the store timezone, falling back to UTC.
func (c *StoreConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
