package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Database Configuration
	Database DatabaseConfig `json:"database"`

	// Mongo Configuration (avatar media storage)
	Mongo MongoConfig `json:"mongo"`

	// Session Configuration
	Session SessionConfig `json:"session"`

	// Logging Configuration
	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port           string   `json:"port"`
	Host           string   `json:"host"`
	ReadTimeout    int      `json:"read_timeout"`
	WriteTimeout   int      `json:"write_timeout"`
	AllowedOrigins []string `json:"allowed_origins"`
	Environment    string   `json:"environment"` // development, staging, production
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// MongoConfig contains the avatar storage configuration. Avatars are
// optional: when URI is empty the media endpoints are disabled.
type MongoConfig struct {
	URI          string `json:"uri"`
	DatabaseName string `json:"database_name"`
	Enabled      bool   `json:"enabled"`
}

// SessionConfig contains session cookie and lifetime configuration
type SessionConfig struct {
	Secret     string `json:"-"`
	CookieName string `json:"cookie_name"`
	TTLDays    int    `json:"ttl_days"`
	Secure     bool   `json:"secure"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// Load builds a Config from environment variables, reading an optional
// .env file first.
func Load() (*Config, error) {
	// Missing .env is fine, system env still applies
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "*")},
			Environment:    getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "farmstand_user"),
			Password:     getEnv("DB_PASSWORD", ""),
			DatabaseName: getEnv("DB_NAME", "farmstand_db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Mongo: MongoConfig{
			URI:          getEnv("MONGO_URI", ""),
			DatabaseName: getEnv("MONGO_DB", "farmstand_media"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE", "farmstand_session"),
			TTLDays:    getEnvInt("SESSION_TTL_DAYS", 7),
			Secure:     getEnv("SESSION_SECURE", "false") == "true",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	cfg.Mongo.Enabled = cfg.Mongo.URI != ""

	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}

	return cfg, nil
}

func (cfg *Config) DSN() string {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "3306"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
