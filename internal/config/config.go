package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Database configuration
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Catalog query defaults
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host" env:"REELBASE_HOST"`
	Port           int           `yaml:"port" json:"port" env:"REELBASE_PORT"`
	Mode           string        `yaml:"mode" json:"mode" env:"REELBASE_GIN_MODE"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout" env:"REELBASE_READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout" env:"REELBASE_WRITE_TIMEOUT"`
	EnableCORS     bool          `yaml:"enable_cors" json:"enable_cors" env:"REELBASE_ENABLE_CORS"`
	TrustedProxies []string      `yaml:"trusted_proxies" json:"trusted_proxies" env:"REELBASE_TRUSTED_PROXIES"`
}

// DatabaseConfig selects and tunes the relational store
type DatabaseConfig struct {
	Type            string        `yaml:"type" json:"type" env:"DATABASE_TYPE"`
	URL             string        `yaml:"url" json:"url" env:"DATABASE_URL"`
	Path            string        `yaml:"path" json:"path" env:"REELBASE_DATABASE_PATH"`
	Host            string        `yaml:"host" json:"host" env:"POSTGRES_HOST"`
	Port            int           `yaml:"port" json:"port" env:"POSTGRES_PORT"`
	Username        string        `yaml:"username" json:"username" env:"POSTGRES_USER"`
	Password        string        `yaml:"password" json:"password" env:"POSTGRES_PASSWORD"`
	Name            string        `yaml:"name" json:"name" env:"POSTGRES_DB"`
	SSLMode         string        `yaml:"ssl_mode" json:"ssl_mode" env:"POSTGRES_SSLMODE"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	SlowThreshold   time.Duration `yaml:"slow_threshold" json:"slow_threshold" env:"DB_SLOW_THRESHOLD"`
	LogQueries      bool          `yaml:"log_queries" json:"log_queries" env:"DB_LOG_QUERIES"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" json:"format" env:"LOG_FORMAT"`
}

// CatalogConfig bounds list operations
type CatalogConfig struct {
	DefaultPageSize int `yaml:"default_page_size" json:"default_page_size" env:"REELBASE_DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `yaml:"max_page_size" json:"max_page_size" env:"REELBASE_MAX_PAGE_SIZE"`
}

// DefaultConfig returns the configuration used when nothing else is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Mode:         "release",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			EnableCORS:   true,
		},
		Database: DatabaseConfig{
			Type:            "sqlite",
			Path:            filepath.Join("data", "reelbase.db"),
			Host:            "localhost",
			Port:            5432,
			Username:        "reelbase",
			Name:            "reelbase",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 2 * time.Hour,
			SlowThreshold:   200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Catalog: CatalogConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
	}
}

// Load builds the configuration from defaults, then the file at path (if
// any), then environment variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json":
		return json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("sqlite database path is required")
		}
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("postgres host or url is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	if c.Catalog.MaxPageSize < 1 {
		return fmt.Errorf("invalid max page size: %d", c.Catalog.MaxPageSize)
	}
	if c.Catalog.DefaultPageSize < 1 || c.Catalog.DefaultPageSize > c.Catalog.MaxPageSize {
		return fmt.Errorf("invalid default page size: %d (max %d)", c.Catalog.DefaultPageSize, c.Catalog.MaxPageSize)
	}

	return nil
}

// PostgresDSN returns the connection string for the postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.Username, d.Name, sslMode)
	if d.Password != "" {
		dsn += " password=" + d.Password
	}
	return dsn
}
