package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "252490", cfg.AppID)
	assert.Equal(t, 90, cfg.BaseTimeoutSec)
	assert.Equal(t, 500, cfg.StatusPollMs)
	assert.Equal(t, 3, cfg.MaxRetryPasses)
	assert.Equal(t, 30, cfg.RateLimitBackoffSec)
	assert.Equal(t, 4, cfg.PassBudget())
}

func TestLoadAppliesKDLOverrides(t *testing.T) {
	dir := t.TempDir()
	kdl := `app_id "252490"
timeouts {
    base_timeout_sec 60
    ratelimit_backoff_sec 15
}
retry {
    max_passes 2
}
run {
    max_concurrent_instances 2
    skip_existing true
}
exclude {
    "49*"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "downloader.kdl"), []byte(kdl), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.BaseTimeoutSec)
	assert.Equal(t, 15, cfg.RateLimitBackoffSec)
	assert.Equal(t, 2, cfg.MaxRetryPasses)
	assert.Equal(t, 2, cfg.MaxConcurrentInstances)
	assert.True(t, cfg.SkipExisting)
	assert.Equal(t, []string{"49*"}, cfg.Exclude)
}

func TestLoadFallsBackToLegacyTOML(t *testing.T) {
	dir := t.TempDir()
	content := `app_id = "252490"
max_concurrent_instances = 5
skip_existing = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "downloader.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxConcurrentInstances)
	assert.True(t, cfg.SkipExisting)
}

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Default().BaseTimeoutSec, cfg.BaseTimeoutSec)
}

func TestAllowedRespectsExcludeThenInclude(t *testing.T) {
	cfg := Default()
	cfg.Exclude = []string{"49*"}
	assert.False(t, cfg.Allowed("490217825/skin"))
	assert.True(t, cfg.Allowed("123456/skin"))

	cfg.Include = []string{"1*"}
	assert.True(t, cfg.Allowed("123456/skin"))
	assert.False(t, cfg.Allowed("777777/skin"))
}
