package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMinCommentLength is the shortest comment (in characters, after trimming)
// accepted together with a rating.
const DefaultMinCommentLength = 11

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string        `yaml:"port" env:"SERVER_PORT"`
		Mode            string        `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		TxTimeout       string `yaml:"tx_timeout" env:"DB_TX_TIMEOUT"`
		MigrationsOnRun bool   `yaml:"migrations_on_run" env:"DB_MIGRATIONS_ON_RUN"`
	} `yaml:"database"`

	Review struct {
		MinScore         float64 `yaml:"min_score" env:"REVIEW_MIN_SCORE"`
		MaxScore         float64 `yaml:"max_score" env:"REVIEW_MAX_SCORE"`
		MinCommentLength int     `yaml:"min_comment_length" env:"REVIEW_MIN_COMMENT_LENGTH"`
		MaxCommentLength int     `yaml:"max_comment_length" env:"REVIEW_MAX_COMMENT_LENGTH"`
		// IsolationLevel is passed to BEGIN for every transaction. Only READ COMMITTED is
		// accepted: submissions serialise on the course row lock, and stricter levels abort
		// the waiting transaction with a serialization failure once the holder commits.
		IsolationLevel string `yaml:"isolation_level" env:"REVIEW_ISOLATION_LEVEL"`
	} `yaml:"review"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Path    string `yaml:"path" env:"METRICS_PATH"`
	} `yaml:"metrics"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a .env file, a YAML file and environment variables,
// in that order of increasing precedence.
func LoadConfig(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = 10 * time.Second
	config.Server.WriteTimeout = 10 * time.Second
	config.Server.ShutdownTimeout = 10 * time.Second

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "coursereview"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.TxTimeout = "30s"
	config.Database.MigrationsOnRun = true

	config.Review.MinScore = 1.0
	config.Review.MaxScore = 5.0
	config.Review.MinCommentLength = DefaultMinCommentLength
	config.Review.MaxCommentLength = 5000

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Server.ReadTimeout <= 0 || config.Server.WriteTimeout <= 0 || config.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.TxTimeout); err != nil {
		return fmt.Errorf("invalid database transaction timeout: %w", err)
	}

	if config.Review.MinScore <= 0 || config.Review.MaxScore < config.Review.MinScore {
		return fmt.Errorf("review score range [%v, %v] is invalid", config.Review.MinScore, config.Review.MaxScore)
	}

	if config.Review.MinCommentLength < 1 {
		return fmt.Errorf("review min comment length must be positive")
	}

	if config.Review.MaxCommentLength < config.Review.MinCommentLength {
		return fmt.Errorf("review max comment length must not be below the minimum")
	}

	if _, err := config.ReviewTxOptions(); err != nil {
		return err
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// ReviewTxOptions converts the configured isolation level into pgx transaction options.
// The level is always set explicitly so a server-wide default_transaction_isolation
// cannot change it.
func (c *Config) ReviewTxOptions() (pgx.TxOptions, error) {
	switch strings.ToLower(strings.TrimSpace(c.Review.IsolationLevel)) {
	case "", "read committed", "read_committed":
		return pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, nil
	default:
		return pgx.TxOptions{}, fmt.Errorf("unsupported review isolation level %q: only read committed is supported", c.Review.IsolationLevel)
	}
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "production" || c.Server.Mode == "release"
}
