package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/config"
	"github.com/jonathan/networkiq/internal/types"
)

func TestResolveConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := resolveConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.CacheBackend)
	assert.Equal(t, 24, cfg.CacheTTLHours)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Concurrency)
}

func TestResolveConfig_FileOverridesDefaults(t *testing.T) {
	content := `{"cache_backend": "sqlite", "cache_path": "custom.db", "timeout_seconds": 10}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := resolveConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, config.BackendSQLite, cfg.CacheBackend)
	assert.Equal(t, "custom.db", cfg.CachePath)
	assert.Equal(t, 10, cfg.TimeoutSeconds)
	assert.Equal(t, 24, cfg.CacheTTLHours, "unset fields keep defaults")
}

func TestResolveConfig_InvalidBackendRejected(t *testing.T) {
	content := `{"cache_backend": "dynamo"}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := resolveConfig(tmpFile)
	assert.Error(t, err)
}

func TestLoadCriteria_EmptyPathUsesDefaults(t *testing.T) {
	elements, err := loadCriteria("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultElements(), elements)
}

func TestLoadCriteria_ValidFile(t *testing.T) {
	content := `{
		"resume_name": "alice-2025",
		"elements": [
			{"category": "education", "value": "stanford university", "weight": 30, "display": "Stanford University"}
		]
	}`
	tmpFile := filepath.Join(t.TempDir(), "criteria.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	elements, err := loadCriteria(tmpFile)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	assert.Equal(t, "stanford university", elements[0].Value)
	assert.Equal(t, 30, elements[0].Weight)
}

func TestLoadCriteria_SchemaViolationRejected(t *testing.T) {
	content := `{"elements": [{"category": "hobby", "value": "chess", "weight": 10}]}`
	tmpFile := filepath.Join(t.TempDir(), "criteria.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := loadCriteria(tmpFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid criteria file")
}

func TestLoadCriteria_BlankValueRejected(t *testing.T) {
	// A whitespace-only value satisfies the schema's minLength but fails
	// element validation.
	content := `{"elements": [{"category": "skill", "value": "   ", "weight": 10}]}`
	tmpFile := filepath.Join(t.TempDir(), "criteria.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	_, err := loadCriteria(tmpFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid criteria element 0")
}

func TestLoadCriteria_FileNotFound(t *testing.T) {
	_, err := loadCriteria("/nonexistent/criteria.json")
	assert.Error(t, err)
}

func TestLoadProfile_Valid(t *testing.T) {
	content := `{"url": "https://www.linkedin.com/in/alice", "name": "Alice Johnson", "headline": "Engineer"}`
	tmpFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	profile, err := loadProfile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, "Alice Johnson", profile.Name)
	assert.Equal(t, "https://www.linkedin.com/in/alice", profile.URL)
}

func TestLoadProfile_MalformedJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte("{ nope }"), 0644))

	_, err := loadProfile(tmpFile)
	assert.Error(t, err)
}

func TestOpenCache_MemoryBackend(t *testing.T) {
	cfg := config.Config{CacheBackend: config.BackendMemory, CacheTTLHours: 24}

	c, closer, err := openCache(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closer()

	require.NotNil(t, c)
	total, expired := c.Stats(context.Background())
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, expired)
}

func TestOpenCache_SQLiteBackend(t *testing.T) {
	cfg := config.Config{
		CacheBackend:  config.BackendSQLite,
		CachePath:     filepath.Join(t.TempDir(), "analyses.db"),
		CacheTTLHours: 24,
	}

	c, closer, err := openCache(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer closer()
	require.NotNil(t, c)
}

func TestTimeoutFrom(t *testing.T) {
	assert.Equal(t, 10*time.Second, timeoutFrom(config.Config{TimeoutSeconds: 10}))
	assert.Equal(t, 30*time.Second, timeoutFrom(config.Config{}))
}
