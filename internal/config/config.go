// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Cache backend names accepted in the "cache_backend" field.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via
// CLI flags or environment variables.
type Config struct {
	// Paths
	CriteriaPath string `json:"criteria,omitempty"`   // Path to criteria JSON (résumé-derived elements)
	CachePath    string `json:"cache_path,omitempty"` // SQLite database path for the sqlite backend

	// LLM
	APIKey string `json:"api_key,omitempty"` // Gemini API key
	Model  string `json:"model,omitempty"`   // Gemini model name

	// Cache
	CacheBackend  string `json:"cache_backend,omitempty"`   // memory|sqlite|redis|postgres
	CacheTTLHours int    `json:"cache_ttl_hours,omitempty"` // Entry validity window in hours
	DatabaseURL   string `json:"database_url,omitempty"`    // PostgreSQL connection URL
	RedisAddr     string `json:"redis_addr,omitempty"`      // Redis host:port
	RedisPassword string `json:"redis_password,omitempty"`  // Redis password
	RedisDB       int    `json:"redis_db,omitempty"`        // Redis database number

	// Behavior
	TimeoutSeconds int  `json:"timeout_seconds,omitempty"` // Per-analysis LLM timeout
	Concurrency    int  `json:"concurrency,omitempty"`     // Bulk analysis worker count
	Verbose        bool `json:"verbose,omitempty"`         // Print detailed debug information
	JSONLogs       bool `json:"json_logs,omitempty"`       // Emit structured JSON logs
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required-field checks happen after flag merging, not here.
func (c *Config) Validate() error {
	switch c.CacheBackend {
	case "", BackendMemory, BackendSQLite, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("config error: unknown cache_backend %q", c.CacheBackend)
	}

	if c.CacheBackend == BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("config error: 'redis_addr' is required for the redis backend")
	}
	if c.CacheBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
	}

	if c.CacheTTLHours < 0 {
		return fmt.Errorf("config error: 'cache_ttl_hours' must be non-negative")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'timeout_seconds' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}

	if c.CriteriaPath != "" {
		if _, err := os.Stat(c.CriteriaPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: criteria file not found: %s", c.CriteriaPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CriteriaPath == "" {
		result.CriteriaPath = defaults.CriteriaPath
	}
	if result.CachePath == "" {
		result.CachePath = defaults.CachePath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.CacheBackend == "" {
		result.CacheBackend = defaults.CacheBackend
	}
	if result.CacheTTLHours == 0 {
		result.CacheTTLHours = defaults.CacheTTLHours
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}
	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}
	if !result.JSONLogs {
		result.JSONLogs = defaults.JSONLogs
	}

	return result
}

// ApplyEnv fills still-empty fields from environment variables. Flags and the
// config file always win over the environment.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.RedisAddr == "" {
		c.RedisAddr = os.Getenv("REDIS_ADDR")
	}
	if c.RedisPassword == "" {
		c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	}
	if c.RedisDB == 0 {
		if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
			c.RedisDB = db
		}
	}
}
