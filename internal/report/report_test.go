package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

func TestWriteProducesTotalsAndFailureList(t *testing.T) {
	dir := t.TempDir()
	snapshot := map[string]outcome.Outcome{
		"111111": outcome.Success,
		"222222": outcome.Skipped,
		"333333": outcome.LockFailed,
		"444444": outcome.Timeout,
	}

	require.NoError(t, Write(dir, snapshot))

	reportData, err := os.ReadFile(filepath.Join(dir, ReportFilename))
	require.NoError(t, err)
	report := string(reportData)

	assert.Contains(t, report, "processed: 4")
	assert.Contains(t, report, "success: 1")
	assert.Contains(t, report, "skipped: 1")
	assert.Contains(t, report, "failed: 2")
	assert.Contains(t, report, "333333  [LockFailed]")
	assert.Contains(t, report, "444444  [Timeout]")
	assert.NotContains(t, report, "111111")
	assert.NotContains(t, report, "222222")

	failedData, err := os.ReadFile(filepath.Join(dir, FailedIDsFilename))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(failedData)), "\n")
	assert.ElementsMatch(t, []string{"333333", "444444"}, lines)
}

func TestWriteWithNoFailuresProducesEmptyFailedIDsFile(t *testing.T) {
	dir := t.TempDir()
	snapshot := map[string]outcome.Outcome{"111111": outcome.Success}

	require.NoError(t, Write(dir, snapshot))

	data, err := os.ReadFile(filepath.Join(dir, FailedIDsFilename))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}
