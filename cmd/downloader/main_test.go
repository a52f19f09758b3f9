package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

func TestSelectWorkingSetAppliesExcludeGlob(t *testing.T) {
	cfg := config.Default()
	cfg.Exclude = []string{"49*"}

	ids := []string{"111111", "490217825"}
	titles := map[string]string{"111111": "Keep", "490217825": "Drop"}

	om := outcome.NewMap()
	got := selectWorkingSet(cfg, ids, titles, t.TempDir(), om)
	assert.Equal(t, []string{"111111"}, got)

	dropped, ok := om.Get("490217825")
	require.True(t, ok)
	assert.Equal(t, outcome.Skipped, dropped)
}

func TestSelectWorkingSetSkipsExistingWhenConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.SkipExisting = true
	cfg.SharedRoot = t.TempDir()

	present := filepath.Join(cfg.SharedRoot, "steamapps", "workshop", "content", cfg.AppID, "111111")
	require.NoError(t, os.MkdirAll(present, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(present, "f.bin"), []byte("x"), 0644))

	ids := []string{"111111", "222222"}
	om := outcome.NewMap()
	got := selectWorkingSet(cfg, ids, map[string]string{}, t.TempDir(), om)
	assert.Equal(t, []string{"222222"}, got)

	dropped, ok := om.Get("111111")
	require.True(t, ok)
	assert.Equal(t, outcome.Skipped, dropped)
}

func TestSelectWorkingSetUsesFailedIDsWhenRetryFailedOnly(t *testing.T) {
	cfg := config.Default()
	cfg.RetryFailedOnly = true

	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "failed_ids.txt"), []byte("222222\n333333\n"), 0644))

	om := outcome.NewMap()
	got := selectWorkingSet(cfg, []string{"111111"}, map[string]string{}, workDir, om)
	assert.ElementsMatch(t, []string{"222222", "333333"}, got)
}

func TestIsYesAcceptsCommonForms(t *testing.T) {
	assert.True(t, isYes("y\n"))
	assert.True(t, isYes("Yes\n"))
	assert.False(t, isYes("n\n"))
	assert.False(t, isYes("\n"))
}

func TestDirHasFilesIgnoresEmptyAndMissingDirs(t *testing.T) {
	assert.False(t, dirHasFiles(filepath.Join(t.TempDir(), "nope")))

	dir := t.TempDir()
	assert.False(t, dirHasFiles(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.bin"), []byte("x"), 0644))
	assert.True(t, dirHasFiles(dir))
}
