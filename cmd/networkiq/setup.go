package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/analyzer"
	"github.com/jonathan/networkiq/internal/cache"
	"github.com/jonathan/networkiq/internal/config"
	"github.com/jonathan/networkiq/internal/logger"
	"github.com/jonathan/networkiq/internal/schemas"
	"github.com/jonathan/networkiq/internal/types"
)

// defaultConfig supplies the values used when neither flags, config file, nor
// environment provide one.
var defaultConfig = config.Config{
	Model:          analyzer.DefaultModel,
	CacheBackend:   config.BackendMemory,
	CachePath:      "networkiq.db",
	CacheTTLHours:  24,
	TimeoutSeconds: 30,
	Concurrency:    4,
}

// resolveConfig loads the optional config file, applies environment
// fallbacks, merges defaults, and validates the result.
func resolveConfig(path string) (config.Config, error) {
	cfg := config.Config{}
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	cfg.ApplyEnv()
	merged := cfg.MergeWithDefaults(defaultConfig)
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

func buildLogger(cfg config.Config) (*zap.Logger, error) {
	return logger.New(cfg.JSONLogs, cfg.Verbose)
}

// openCache constructs the analysis cache on the configured backend. The
// returned closer releases the backing store.
func openCache(ctx context.Context, cfg config.Config, log *zap.Logger) (*cache.AnalysisCache, func(), error) {
	var store cache.Store
	var err error

	switch cfg.CacheBackend {
	case config.BackendMemory, "":
		store = cache.NewMemoryStore()
	case config.BackendSQLite:
		store, err = cache.NewSQLiteStore(cfg.CachePath)
	case config.BackendRedis:
		store, err = cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case config.BackendPostgres:
		store, err = cache.NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		err = fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s cache: %w", cfg.CacheBackend, err)
	}

	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	c := cache.New(store, log, cache.WithTTL(ttl))
	closer := func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close cache store", zap.Error(err))
		}
	}
	return c, closer, nil
}

// criteriaFile is the on-disk criteria document produced by résumé
// extraction.
type criteriaFile struct {
	ResumeName  string                   `json:"resume_name,omitempty"`
	GeneratedAt string                   `json:"generated_at,omitempty"`
	Elements    []types.CriterionElement `json:"elements"`
}

// loadCriteria reads and schema-validates a criteria file. An empty path
// falls back to the built-in default criteria set.
func loadCriteria(path string) ([]types.CriterionElement, error) {
	if path == "" {
		return types.DefaultElements(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read criteria file: %w", err)
	}

	if err := schemas.ValidateCriteria(data); err != nil {
		return nil, fmt.Errorf("invalid criteria file %s: %w", path, err)
	}

	var file criteriaFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse criteria JSON: %w", err)
	}

	// Schema validation is structural; Validate catches what it cannot,
	// like blank values.
	for i := range file.Elements {
		if err := file.Elements[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid criteria element %d (%s): %w",
				i, file.Elements[i].Category, err)
		}
	}
	return file.Elements, nil
}

// loadProfile reads a profile JSON file.
func loadProfile(path string) (*types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var profile types.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &profile, nil
}

// cacheFromConfig wires a logger and cache from the shared cache --config
// flag, for the cache subcommands.
func cacheFromConfig(ctx context.Context) (*cache.AnalysisCache, func(), error) {
	cfg, err := resolveConfig(cacheConfigPath)
	if err != nil {
		return nil, nil, err
	}

	log, err := buildLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return openCache(ctx, cfg, log)
}

// timeoutFrom converts the configured per-analysis timeout to a duration.
func timeoutFrom(cfg config.Config) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return analyzer.DefaultTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// printResult writes a result as indented JSON to stdout.
func printResult(result any) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
