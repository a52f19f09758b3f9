package logclassify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

func TestClassifySuccessResultLine(t *testing.T) {
	log := `[AppID 252490] Download item 490217825 result : OK`
	pl, err := Classify(strings.NewReader(log), []string{"490217825"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Success, pl.PerItem["490217825"])
	assert.False(t, pl.AnyLockFailed)
	assert.Equal(t, 1, pl.SuccessCount)
}

func TestClassifyLockFailedResultLine(t *testing.T) {
	log := `[AppID 252490] Download item 3511955902 result : Locking Failed`
	pl, err := Classify(strings.NewReader(log), []string{"3511955902"})
	require.NoError(t, err)
	assert.Equal(t, outcome.LockFailed, pl.PerItem["3511955902"])
	assert.True(t, pl.AnyLockFailed)
	assert.Equal(t, 1, pl.FailureCount)
}

func TestClassifyRateLimitResultLine(t *testing.T) {
	log := `[AppID 252490] Download item 123456 result : Rate limited, try again`
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.RateLimit, pl.PerItem["123456"])
	assert.True(t, pl.AnyRateLimit)
}

func TestClassifyTimeoutResultLine(t *testing.T) {
	log := `[AppID 252490] Download item 123456 result : Timeout waiting for response`
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Timeout, pl.PerItem["123456"])
	assert.True(t, pl.AnyTimeout)
}

func TestClassifyUnrecognizedReasonIsError(t *testing.T) {
	log := `[AppID 252490] Download item 123456 result : something weird`
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Error, pl.PerItem["123456"])
}

func TestClassifySuccessLine(t *testing.T) {
	log := "Success. Downloaded item 123456"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Success, pl.PerItem["123456"])
}

func TestClassifyErrorLine(t *testing.T) {
	log := "ERROR! Download item 123456 failed (Locking Failed)"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.LockFailed, pl.PerItem["123456"])
	assert.True(t, pl.AnyLockFailed)
}

func TestClassifyStandaloneTimeoutLine(t *testing.T) {
	log := "Timeout downloading item 123456"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Timeout, pl.PerItem["123456"])
	assert.True(t, pl.AnyTimeout)
}

func TestClassifyValidationFailedWithID(t *testing.T) {
	log := "Staged file validation failed for item 123456"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.ValidationFailed, pl.PerItem["123456"])
	assert.True(t, pl.AnyValidationFail)
}

func TestClassifyValidationFailedNoIDUpgradesLastID(t *testing.T) {
	log := "[AppID 252490] Download item 123456 result : some error\nStaged file validation failed\n"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.ValidationFailed, pl.PerItem["123456"])
	assert.True(t, pl.AnyValidationFail)
}

func TestClassifyLockFailedPatchStateNoIDUpgradesLastID(t *testing.T) {
	log := "[AppID 252490] Download item 123456 result : some error\nFailed to write patch state file (File locked)\n"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.LockFailed, pl.PerItem["123456"])
	assert.True(t, pl.AnyLockFailed)
}

func TestClassifyUpgradeDoesNotOverwriteNonErrorOutcome(t *testing.T) {
	log := "[AppID 252490] Download item 123456 result : OK\nStaged file validation failed\n"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Success, pl.PerItem["123456"])
}

func TestClassifyRateLimitHintAloneOnlySetsFlag(t *testing.T) {
	log := "warning: throttled by remote host"
	pl, err := Classify(strings.NewReader(log), []string{"123456"})
	require.NoError(t, err)
	assert.True(t, pl.AnyRateLimit)
	assert.Equal(t, outcome.Unknown, pl.PerItem["123456"])
}

func TestClassifyUnmentionedIDStaysUnknown(t *testing.T) {
	log := `[AppID 252490] Download item 111111 result : OK`
	pl, err := Classify(strings.NewReader(log), []string{"111111", "222222"})
	require.NoError(t, err)
	assert.Equal(t, outcome.Success, pl.PerItem["111111"])
	assert.Equal(t, outcome.Unknown, pl.PerItem["222222"])
}

func TestClassifyCachedReturnsEquivalentResultOnRepeat(t *testing.T) {
	content := []byte(`[AppID 252490] Download item 123456 result : OK`)
	first, err := ClassifyCached(content, []string{"123456"})
	require.NoError(t, err)
	second, err := ClassifyCached(content, []string{"123456"})
	require.NoError(t, err)
	assert.Equal(t, first.PerItem, second.PerItem)
}
