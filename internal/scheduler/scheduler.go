// Package scheduler implements the Pass Scheduler of spec §4.7: it
// partitions a pass's working set into evenly sized chunks, runs one
// Instance Worker per chunk concurrently via errgroup, and drives a
// progress-display poller alongside them.
package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
	"github.com/standardbeagle/rust-workshop-downloader/internal/worker"
)

// ProgressInterval is how often the progress task polls shared counters
// (spec §4.7).
const ProgressInterval = 500 * time.Millisecond

// ProgressFunc is invoked on every progress tick with a snapshot of the
// aggregate counters; the caller renders it however it likes (teletype
// line, log, MCP resource, ...).
type ProgressFunc func(counts map[outcome.Outcome]int64, processed, total int64)

// Partition splits ids into min(n, len(ids)) contiguous slices whose sizes
// differ by at most one, preserving order (spec §4.7).
func Partition(ids []string, n int) [][]string {
	if n <= 0 {
		n = 1
	}
	if n > len(ids) {
		n = len(ids)
	}
	if n == 0 {
		return nil
	}

	chunks := make([][]string, n)
	base := len(ids) / n
	rem := len(ids) % n

	pos := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		chunks[i] = ids[pos : pos+size]
		pos += size
	}
	return chunks
}

// RunPass partitions workingSet into concurrency chunks, runs one worker
// per chunk, and polls progress until every worker returns.
func RunPass(ctx context.Context, cfg *config.Config, binPath string, workingSet []string, pass, concurrency int, om *outcome.Map, onProgress ProgressFunc) error {
	chunks := Partition(workingSet, concurrency)
	total := int64(len(workingSet))

	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()

	if onProgress != nil {
		go runProgress(progressCtx, om, total, onProgress)
	}

	// Plain errgroup.Group, not errgroup.WithContext: one worker's mkdir/
	// script-write failure must not cancel a derived context shared by its
	// siblings, or every other still-downloading instance would see
	// ctx.Done(), get marked Timeout, and have its steamcmd process killed
	// well before its own hard timeout. Each worker gets ctx itself —
	// cancelled only by the run's own shutdown signal, not by a sibling.
	var g errgroup.Group
	for i, chunk := range chunks {
		i, chunk := i, chunk
		if len(chunk) == 0 {
			continue
		}
		g.Go(func() error {
			job := worker.Job{Cfg: cfg, BinPath: binPath, IDs: chunk, Index: i, Pass: pass}
			dbg.LogScheduler("pass %d: worker t%d starting with %d identifiers", pass, i, len(chunk))
			err := worker.Run(ctx, job, om)
			dbg.LogScheduler("pass %d: worker t%d done, err=%v", pass, i, err)
			return err
		})
	}

	return g.Wait()
}

func runProgress(ctx context.Context, om *outcome.Map, total int64, onProgress ProgressFunc) {
	ticker := time.NewTicker(ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts, processed := om.Counts()
			onProgress(counts, processed, total)
		}
	}
}
