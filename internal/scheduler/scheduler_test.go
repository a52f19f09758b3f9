package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// TestMain guards against goroutine leaks left behind by any test in this
// package.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPartitionEvenSplit(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5", "6"}
	chunks := Partition(ids, 3)
	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.Len(t, c, 2)
	}
	assert.Equal(t, ids, flatten(chunks))
}

func TestPartitionUnevenSplitDiffersByAtMostOne(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5"}
	chunks := Partition(ids, 3)
	assert.Len(t, chunks, 3)

	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c)
	}
	min, max := sizes[0], sizes[0]
	for _, s := range sizes {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	assert.LessOrEqual(t, max-min, 1)
	assert.Equal(t, ids, flatten(chunks))
}

func TestPartitionClampsToWorkingSetSize(t *testing.T) {
	ids := []string{"1", "2"}
	chunks := Partition(ids, 10)
	assert.Len(t, chunks, 2)
}

func TestPartitionEmptyInput(t *testing.T) {
	chunks := Partition(nil, 3)
	assert.Empty(t, chunks)
}

func flatten(chunks [][]string) []string {
	var out []string
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
