package worker

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

// TestMain guards against goroutine leaks from Run's per-instance process
// polling (internal/proc.Spawn starts its own wait goroutine per spawn).
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunReconcilesFilesPresentAsSuccess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a posix shell as a steamcmd stand-in")
	}

	workDir := t.TempDir()
	shared := t.TempDir()
	cfg := &config.Config{
		AppID:               "252490",
		BaseTimeoutSec:       5,
		StatusPollMs:         5,
		RateLimitBackoffSec:  0,
		WorkingDir:           workDir,
		SharedRoot:           shared,
	}

	id := "123456"
	inst := instanceDir(cfg, 0)
	contentDir := filepath.Join(inst, "steamapps", "workshop", "content", cfg.AppID, id)
	require.NoError(t, os.MkdirAll(contentDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "payload.bin"), []byte("data"), 0644))

	job := Job{Cfg: cfg, BinPath: "/bin/sh", IDs: []string{id}, Index: 0, Pass: 0}

	om := outcome.NewMap()
	err := Run(context.Background(), job, om)
	require.NoError(t, err)

	got, ok := om.Get(id)
	require.True(t, ok)
	assert.Equal(t, outcome.Success, got)

	dst := filepath.Join(shared, "steamapps", "workshop", "content", cfg.AppID, id, "payload.bin")
	_, statErr := os.Stat(dst)
	assert.NoError(t, statErr)
}

func TestRunRecordsUnknownWhenFilesNeverAppear(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a posix shell as a steamcmd stand-in")
	}

	workDir := t.TempDir()
	shared := t.TempDir()
	cfg := &config.Config{
		AppID:              "252490",
		BaseTimeoutSec:     5,
		StatusPollMs:       5,
		RateLimitBackoffSec: 0,
		WorkingDir:         workDir,
		SharedRoot:         shared,
	}

	job := Job{Cfg: cfg, BinPath: "/bin/sh", IDs: []string{"654321"}, Index: 1, Pass: 0}

	om := outcome.NewMap()
	err := Run(context.Background(), job, om)
	require.NoError(t, err)

	got, ok := om.Get("654321")
	require.True(t, ok)
	assert.Equal(t, outcome.Unknown, got)
}
