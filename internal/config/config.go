package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	QueryTimeout   time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	TokenExpiry time.Duration
}

type RateLimitConfig struct {
	PublicPerMinute int
	LoginPerMinute  int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	return LoadWithFile("")
}

// LoadWithFile loads configuration from environment variables and then applies
// overrides from an optional YAML file. File values win over env values.
func LoadWithFile(path string) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			QueryTimeout:   time.Duration(getEnvInt("DATABASE_QUERY_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			JWTIssuer:   getEnv("JWT_ISSUER", "gatherhub"),
			TokenExpiry: time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 30)) * time.Minute,
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 120),
			LoginPerMinute:  getEnvInt("RATE_LIMIT_LOGIN", 10),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}
	return nil
}

// fileConfig mirrors Config with optional fields so a partial YAML file only
// overrides the settings it names.
type fileConfig struct {
	Server struct {
		Host *string `yaml:"host"`
		Port *int    `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		URL                 *string `yaml:"url"`
		MaxConnections      *int    `yaml:"max_connections"`
		QueryTimeoutSeconds *int    `yaml:"query_timeout_seconds"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret     *string `yaml:"jwt_secret"`
		JWTIssuer     *string `yaml:"jwt_issuer"`
		ExpiryMinutes *int    `yaml:"jwt_expiry_minutes"`
	} `yaml:"auth"`
	RateLimit struct {
		PublicPerMinute *int `yaml:"public_per_minute"`
		LoginPerMinute  *int `yaml:"login_per_minute"`
	} `yaml:"rate_limit"`
	Logging struct {
		Level  *string `yaml:"level"`
		Format *string `yaml:"format"`
	} `yaml:"logging"`
	Environment *string `yaml:"environment"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if file.Server.Host != nil {
		cfg.Server.Host = *file.Server.Host
	}
	if file.Server.Port != nil {
		cfg.Server.Port = *file.Server.Port
	}
	if file.Database.URL != nil {
		cfg.Database.URL = *file.Database.URL
	}
	if file.Database.MaxConnections != nil {
		cfg.Database.MaxConnections = *file.Database.MaxConnections
	}
	if file.Database.QueryTimeoutSeconds != nil {
		cfg.Database.QueryTimeout = time.Duration(*file.Database.QueryTimeoutSeconds) * time.Second
	}
	if file.Auth.JWTSecret != nil {
		cfg.Auth.JWTSecret = *file.Auth.JWTSecret
	}
	if file.Auth.JWTIssuer != nil {
		cfg.Auth.JWTIssuer = *file.Auth.JWTIssuer
	}
	if file.Auth.ExpiryMinutes != nil {
		cfg.Auth.TokenExpiry = time.Duration(*file.Auth.ExpiryMinutes) * time.Minute
	}
	if file.RateLimit.PublicPerMinute != nil {
		cfg.RateLimit.PublicPerMinute = *file.RateLimit.PublicPerMinute
	}
	if file.RateLimit.LoginPerMinute != nil {
		cfg.RateLimit.LoginPerMinute = *file.RateLimit.LoginPerMinute
	}
	if file.Logging.Level != nil {
		cfg.Logging.Level = *file.Logging.Level
	}
	if file.Logging.Format != nil {
		cfg.Logging.Format = *file.Logging.Format
	}
	if file.Environment != nil {
		cfg.Environment = *file.Environment
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
