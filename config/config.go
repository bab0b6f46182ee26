package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
	Metrics     MetricsConfig
	Reminder    ReminderConfig
	Maintenance MaintenanceConfig
}

type AppConfig struct {
	Port          string
	Env           string
	LogLevel      string
	Timezone      string
	Location      *time.Location
	PublicBaseURL string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	SlotCacheTTL time.Duration
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	CookieName    string
}

// StorageConfig holds the Cloudinary account used for doctor photos.
type StorageConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

type ReminderConfig struct {
	Enabled     bool
	LeadTime    time.Duration
	Concurrency int
}

type MaintenanceConfig struct {
	BlockedSlotRetention time.Duration
	CleanupSpec          string
}

// LoadConfig reads ./.env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(".env")
}

// LoadConfigFrom is LoadConfig with an explicit env file path.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	config := &Config{
		App: AppConfig{
			Port:          v.GetString("APP_PORT"),
			Env:           v.GetString("APP_ENV"),
			LogLevel:      v.GetString("APP_LOG_LEVEL"),
			Timezone:      v.GetString("APP_TIMEZONE"),
			PublicBaseURL: v.GetString("APP_PUBLIC_BASE_URL"),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetString("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			SlotCacheTTL: v.GetDuration("REDIS_SLOT_CACHE_TTL"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  v.GetDuration("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: v.GetDuration("JWT_REFRESH_EXPIRY"),
			CookieName:    v.GetString("JWT_COOKIE_NAME"),
		},
		Storage: StorageConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("STORAGE_FOLDER"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Path:      v.GetString("METRICS_PATH"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		Reminder: ReminderConfig{
			Enabled:     v.GetBool("REMINDER_ENABLED"),
			LeadTime:    v.GetDuration("REMINDER_LEAD_TIME"),
			Concurrency: v.GetInt("REMINDER_CONCURRENCY"),
		},
		Maintenance: MaintenanceConfig{
			BlockedSlotRetention: v.GetDuration("MAINTENANCE_BLOCKED_SLOT_RETENTION"),
			CleanupSpec:          v.GetString("MAINTENANCE_CLEANUP_SPEC"),
		},
	}

	loc, err := time.LoadLocation(config.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown APP_TIMEZONE %q: %w", config.App.Timezone, err)
	}
	config.App.Location = loc

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_LOG_LEVEL", "info")
	v.SetDefault("APP_TIMEZONE", "UTC")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_SLOT_CACHE_TTL", "5m")

	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h")
	v.SetDefault("JWT_COOKIE_NAME", "access_token")

	v.SetDefault("STORAGE_FOLDER", "doctor-photos")

	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
	v.SetDefault("METRICS_NAMESPACE", "mediconnect")

	v.SetDefault("REMINDER_ENABLED", true)
	v.SetDefault("REMINDER_LEAD_TIME", "1h")
	v.SetDefault("REMINDER_CONCURRENCY", 5)

	v.SetDefault("MAINTENANCE_BLOCKED_SLOT_RETENTION", "720h")
	v.SetDefault("MAINTENANCE_CLEANUP_SPEC", "@daily")
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.App.Location == nil {
		return fmt.Errorf("APP_TIMEZONE %q is not loaded", c.App.Timezone)
	}
	if c.Redis.SlotCacheTTL <= 0 {
		return fmt.Errorf("REDIS_SLOT_CACHE_TTL must be positive, got %s", c.Redis.SlotCacheTTL)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive, got %v/%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// StorageEnabled reports whether Cloudinary credentials are configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.CloudName != "" && c.Storage.APIKey != "" && c.Storage.APISecret != ""
}

// DSN is the key/value connection string gorm's postgres driver expects.
func (c DBConfig) DSN(timezone string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, timezone,
	)
}

// MigrationURL is the pgx5:// URL golang-migrate's pgx driver expects.
func (c DBConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}
