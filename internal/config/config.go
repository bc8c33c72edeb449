package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// NotificationsAtomic writes notifications in the same transaction as
	// the mutation that triggered them.
	NotificationsAtomic = "atomic"
	// NotificationsBestEffort hands notifications to a queue after commit.
	NotificationsBestEffort = "best_effort"

	minJWTSecretLength = 16
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	DB            DBConfig            `yaml:"db"`
	JWT           JWTConfig           `yaml:"jwt"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Redis         RedisConfig         `yaml:"redis"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Log           LogConfig           `yaml:"log"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type JWTConfig struct {
	Secret          string `yaml:"secret"`
	ExpirationHours int    `yaml:"expiration_hours"`
}

type NotificationsConfig struct {
	Mode       string `yaml:"mode"`
	BufferSize int    `yaml:"buffer_size"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `yaml:"auth_rps"`
	AuthBurst int     `yaml:"auth_burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			FrontendURL: "http://localhost:3000",
		},
		DB: DBConfig{
			Driver:  DriverPostgres,
			Host:    "localhost",
			Port:    "5432",
			User:    "kamy",
			Name:    "kamy",
			SSLMode: "disable",
		},
		JWT: JWTConfig{
			ExpirationHours: 168,
		},
		Notifications: NotificationsConfig{
			Mode:       NotificationsAtomic,
			BufferSize: 256,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		RateLimit: RateLimitConfig{
			AuthRPS:   5,
			AuthBurst: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// KAMY_CONFIG (default config.yaml), a .env file and the process environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("KAMY_CONFIG", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func (c *Config) overrideFromEnv() {
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.FrontendURL = getEnv("FRONTEND_URL", c.Server.FrontendURL)

	c.DB.Driver = getEnv("DB_DRIVER", c.DB.Driver)
	c.DB.DSN = getEnv("DB_DSN", c.DB.DSN)
	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.ExpirationHours = getEnvAsInt("JWT_EXPIRATION_HOURS", c.JWT.ExpirationHours)

	c.Notifications.Mode = getEnv("NOTIFICATIONS_MODE", c.Notifications.Mode)
	c.Notifications.BufferSize = getEnvAsInt("NOTIFICATIONS_BUFFER_SIZE", c.Notifications.BufferSize)

	c.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)

	c.RateLimit.AuthRPS = getEnvAsFloat("AUTH_RATE_LIMIT_RPS", c.RateLimit.AuthRPS)
	c.RateLimit.AuthBurst = getEnvAsInt("AUTH_RATE_LIMIT_BURST", c.RateLimit.AuthBurst)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.JWT.ExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Driver == DriverSQLite && c.DB.DSN == "" {
		return errors.New("DB_DSN is required for the sqlite driver")
	}
	if origin := strings.TrimSpace(c.Server.FrontendURL); origin == "" || origin == "*" {
		return errors.New("FRONTEND_URL must name a single origin")
	}
	switch c.Notifications.Mode {
	case NotificationsAtomic, NotificationsBestEffort:
	default:
		return fmt.Errorf("unsupported NOTIFICATIONS_MODE %q", c.Notifications.Mode)
	}
	return nil
}

// TokenTTL is the lifetime of issued bearer tokens.
func (c JWTConfig) TokenTTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// PostgresDSN returns DSN when set, otherwise assembles one from the parts.
func (c DBConfig) PostgresDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
