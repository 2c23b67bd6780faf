package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
)

// Config represents the full application configuration surface.
type Config struct {
	LogLevel string
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	MongoDB  MongoDBConfig
	Digest   DigestConfig
	WhatsApp WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port    string
	GinMode string
}

// BackendConfig points at the production-tracking REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// Username and Password enable a headless login for scheduled jobs.
	Username string
	Password string
}

// HasServiceAccount reports whether scheduled jobs can log in on their own.
func (c BackendConfig) HasServiceAccount() bool {
	return c.Username != "" && c.Password != ""
}

// SessionConfig selects where the token pair is persisted.
type SessionConfig struct {
	Store    string
	FilePath string
}

// RedisConfig holds settings for the Redis token store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// MongoDBConfig holds settings for the digest archive. An empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// Enabled reports whether the archive is configured.
func (c MongoDBConfig) Enabled() bool {
	return c.URI != ""
}

// DigestConfig holds scheduler-related settings.
type DigestConfig struct {
	Enabled      bool
	CronSchedule string
	Timezone     string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API.
// The notifier stays off unless a token, phone number id and recipient are set.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	Recipient     string
}

// Enabled reports whether digests should be pushed to WhatsApp.
func (c WhatsAppConfig) Enabled() bool {
	return c.AccessToken != "" && c.PhoneNumberID != "" && c.Recipient != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv builds a Config from the process environment without validating it.
func FromEnv() (*Config, error) {
	timeout, err := getenvDuration("BACKEND_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	digestEnabled, err := getenvBool("DIGEST_ENABLED", true)
	if err != nil {
		return nil, err
	}

	return &Config{
		LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:    getenvWithDefault("APP_PORT", "8080"),
			GinMode: getenvWithDefault("GIN_MODE", "release"),
		},
		Backend: BackendConfig{
			BaseURL:  getenvWithDefault("BACKEND_BASE_URL", "http://localhost:5000/api"),
			Timeout:  timeout,
			Username: os.Getenv("BACKEND_USERNAME"),
			Password: os.Getenv("BACKEND_PASSWORD"),
		},
		Session: SessionConfig{
			Store:    strings.ToLower(getenvWithDefault("SESSION_STORE", SessionStoreMemory)),
			FilePath: getenvWithDefault("SESSION_FILE", ".palmoil-session.json"),
		},
		Redis: RedisConfig{
			Addr:      getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getenvWithDefault("REDIS_KEY_PREFIX", "palmoil:session:"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "palmoil"),
		},
		Digest: DigestConfig{
			Enabled:      digestEnabled,
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 7 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Africa/Lagos"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			Recipient:     os.Getenv("WHATSAPP_RECIPIENT"),
		},
	}, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL must not be empty")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("BACKEND_BASE_URL must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("BACKEND_TIMEOUT must be positive")
	}
	if (c.Backend.Username == "") != (c.Backend.Password == "") {
		return errors.New("BACKEND_USERNAME and BACKEND_PASSWORD must be set together")
	}

	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreFile:
		if c.Session.FilePath == "" {
			return errors.New("SESSION_FILE must be provided when SESSION_STORE=file")
		}
	case SessionStoreRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of memory, file, redis, got %q", c.Session.Store)
	}

	if c.MongoDB.Enabled() && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	if c.Digest.Enabled {
		if c.Digest.CronSchedule == "" {
			return errors.New("DIGEST_CRON_SCHEDULE must be provided")
		}
		if c.Digest.Timezone == "" {
			return errors.New("TIMEZONE must be provided")
		}
		if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q is invalid: %w", c.Digest.Timezone, err)
		}
	}

	if c.WhatsApp.Enabled() {
		if c.WhatsApp.BaseURL == "" {
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		}
		if c.WhatsApp.APIVersion == "" {
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q: %w", key, value, err)
	}
	return b, nil
}
