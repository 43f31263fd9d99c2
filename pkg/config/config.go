// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Source kinds
const (
	SourceCSV       = "csv"
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
)

// Value parse policies
const (
	PolicyStrict  = "strict"
	PolicyLenient = "lenient"
)

// DefaultDataLocation is the public GSS 2018 extract the dashboard was built for
const DefaultDataLocation = "https://github.com/jkropko/DS-6001/raw/master/localdata/gss2018.csv"

// Config represents the application configuration
type Config struct {
	// Raw dataset
	Source       string
	Location     string
	Encoding     string
	Table        string
	FetchTimeout time.Duration
	ParsePolicy  string

	// Database connections, only loaded for SQL sources
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// HTTP server
	Host  string
	Port  int
	Debug bool

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Source:       strings.ToLower(getEnv("DATA_SOURCE", SourceCSV)),
		Location:     getEnv("DATA_LOCATION", DefaultDataLocation),
		Encoding:     getEnv("DATA_ENCODING", "windows-1252"),
		Table:        getEnv("DATA_TABLE", "gss2018"),
		FetchTimeout: time.Duration(getEnvAsInt("DATA_FETCH_TIMEOUT_SECONDS", 120)) * time.Second,
		ParsePolicy:  strings.ToLower(getEnv("VALUE_PARSE_POLICY", PolicyStrict)),
		Host:         getEnv("SERVER_HOST", "0.0.0.0"),
		Port:         getEnvAsInt("SERVER_PORT", 8051),
		Debug:        getEnvAsBool("DEBUG", true),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
	}

	// Load database configuration for the selected source only
	switch cfg.Source {
	case SourceSnowflake:
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	case SourcePostgres:
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.Location == "" {
			return errors.New("DATA_LOCATION is required for csv sources")
		}
	case SourcePostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	case SourceSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	default:
		return fmt.Errorf("unknown data source %q (expected csv, postgres or snowflake)", c.Source)
	}

	if c.Source != SourceCSV && c.Table == "" {
		return errors.New("DATA_TABLE is required for database sources")
	}

	if c.ParsePolicy != PolicyStrict && c.ParsePolicy != PolicyLenient {
		return fmt.Errorf("unknown value parse policy %q (expected strict or lenient)", c.ParsePolicy)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Port)
	}

	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}

	return nil
}

// Addr returns the host:port the server listens on
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
