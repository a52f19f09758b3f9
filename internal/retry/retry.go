// Package retry implements the Retry Controller of spec §4.8: the
// pass-budget state machine deciding whether a failed set gets another
// pass, and the prepareRetry step that resets shared state between passes.
package retry

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
	"github.com/standardbeagle/rust-workshop-downloader/internal/staging"
)

// Decision is the result of evaluating one pass's failed set against the
// pass budget.
type Decision int

const (
	// Done means no further pass should run.
	Done Decision = iota
	// Retry means prepareRetry should run and another pass should start.
	Retry
)

// Decide implements the PASS(k) state machine: an empty failed set or an
// exhausted pass budget ends the run, otherwise another pass is due.
func Decide(failedSet []string, passIndex, passBudget int) Decision {
	if len(failedSet) == 0 {
		return Done
	}
	if passIndex >= passBudget {
		return Done
	}
	return Retry
}

// Controller tracks the mutable state prepareRetry adjusts across passes:
// the current concurrency. Whether a rate limit was observed is kept by the
// caller and passed to PrepareRetry.
type Controller struct {
	Concurrency int
}

// NewController seeds a Controller from the configured starting
// concurrency.
func NewController(cfg *config.Config) *Controller {
	return &Controller{Concurrency: cfg.MaxConcurrentInstances}
}

// PrepareRetry implements spec §4.8's prepareRetry: wipe staging in every
// instance directory and the shared staging area, apply the rate-limit
// backoff if any worker saw one this pass, reset the retry set's outcomes
// and counters, and halve concurrency (minimum 1).
func (c *Controller) PrepareRetry(cfg *config.Config, om *outcome.Map, retrySet []string, instanceCount int, anyRateLimit *bool, rateLimitBackoffSec int) {
	for i := 0; i < instanceCount; i++ {
		if err := staging.CleanInstance(instancePath(cfg, i)); err != nil {
			dbg.LogScheduler("retry: staging cleanup for instance %d: %v", i, err)
		}
	}
	if err := staging.CleanShared(cfg.SharedRoot); err != nil {
		dbg.LogScheduler("retry: shared staging cleanup: %v", err)
	}

	if *anyRateLimit {
		sleepFor := time.Duration(2*rateLimitBackoffSec) * time.Second
		dbg.LogScheduler("retry: rate limit observed last pass, sleeping %s", sleepFor)
		time.Sleep(sleepFor)
		*anyRateLimit = false
	}

	for _, id := range retrySet {
		om.Reset(id)
	}

	if c.Concurrency > 1 {
		c.Concurrency /= 2
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
}

func instancePath(cfg *config.Config, index int) string {
	return filepath.Join(cfg.WorkingDir, "instances", fmt.Sprintf("rust_workshop_t%d", index))
}
