// Package worker implements the Instance Worker of spec §4.6: one pass of
// one chunk through one external-tool invocation, ending in reconciliation
// of the log-reported outcome against on-disk reality.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
	"github.com/standardbeagle/rust-workshop-downloader/internal/fsutil"
	"github.com/standardbeagle/rust-workshop-downloader/internal/logclassify"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
	"github.com/standardbeagle/rust-workshop-downloader/internal/proc"
	"github.com/standardbeagle/rust-workshop-downloader/internal/script"
	"github.com/standardbeagle/rust-workshop-downloader/internal/staging"
)

// Job is the input to a single worker invocation.
type Job struct {
	Cfg     *config.Config
	BinPath string
	IDs     []string
	Index   int // instance index within the pass
	Pass    int
}

// instanceDir returns the per-instance install tree, per spec §4.6 step 1.
func instanceDir(cfg *config.Config, index int) string {
	return filepath.Join(cfg.WorkingDir, "instances", fmt.Sprintf("rust_workshop_t%d", index))
}

func tempScriptDir(cfg *config.Config, index int) string {
	return filepath.Join(cfg.WorkingDir, "temp_scripts", fmt.Sprintf("t%d", index))
}

func logPath(cfg *config.Config, pass, index int) string {
	return filepath.Join(cfg.WorkingDir, "logs", fmt.Sprintf("instance_p%d_t%d.log", pass, index))
}

// Run executes the full Instance Worker sequence and records each
// identifier's final Outcome in om. It never returns an error for
// per-identifier failures — those become Outcome values — only for
// conditions that prevented the worker from attempting the chunk at all.
func Run(ctx context.Context, job Job, om *outcome.Map) error {
	cfg := job.Cfg
	inst := instanceDir(cfg, job.Index)
	tempDir := tempScriptDir(cfg, job.Index)

	if err := os.MkdirAll(inst, 0755); err != nil {
		return orcherrors.NewWorkerError(job.Index, job.Pass, "mkdir instance dir", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return orcherrors.NewWorkerError(job.Index, job.Pass, "mkdir temp script dir", err)
	}
	logDir := filepath.Join(cfg.WorkingDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return orcherrors.NewWorkerError(job.Index, job.Pass, "mkdir logs dir", err)
	}

	if err := staging.CleanInstance(inst); err != nil {
		dbg.LogWorker("t%d: pre-run staging cleanup: %v", job.Index, err)
	}

	scriptPath, err := script.Write(tempDir, inst, cfg.AppID, job.IDs)
	if err != nil {
		return orcherrors.NewWorkerError(job.Index, job.Pass, "write script", err)
	}

	logp := logPath(cfg, job.Pass, job.Index)
	h, err := proc.Spawn(job.BinPath, cfg.WorkingDir, logp, "+runscript", scriptPath)
	if err != nil {
		dbg.LogWorker("t%d: spawn failed: %v", job.Index, err)
		recordAllUnknown(om, job.IDs)
		if err := staging.CleanInstance(inst); err != nil {
			dbg.LogWorker("t%d: post-failure staging cleanup: %v", job.Index, err)
		}
		return nil
	}

	hardTimeout := time.Duration(cfg.BaseTimeoutSec) * time.Duration(len(job.IDs)) * time.Second
	waitCtx, cancel := context.WithTimeout(ctx, hardTimeout)
	timedOut, waitErr := h.Wait(waitCtx, time.Duration(cfg.StatusPollMs)*time.Millisecond)
	cancel()
	if waitErr != nil && !timedOut {
		dbg.LogWorker("t%d: process wait error: %v", job.Index, waitErr)
	}

	script.Remove(scriptPath)

	pl := classify(logp, job.IDs)

	if pl.AnyRateLimit {
		dbg.LogWorker("t%d: rate limit observed, backing off %ds", job.Index, cfg.RateLimitBackoffSec)
		time.Sleep(time.Duration(cfg.RateLimitBackoffSec) * time.Second)
	}

	reconcile(cfg, inst, job.IDs, pl, timedOut, om, job.Index)

	if err := staging.CleanInstance(inst); err != nil {
		dbg.LogWorker("t%d: post-run staging cleanup: %v", job.Index, err)
	}

	return nil
}

func classify(logp string, ids []string) *logclassify.ParsedLog {
	content, err := os.ReadFile(logp)
	if err != nil {
		pl := &logclassify.ParsedLog{PerItem: make(map[string]outcome.Outcome, len(ids))}
		for _, id := range ids {
			pl.PerItem[id] = outcome.Unknown
		}
		return pl
	}
	pl, err := logclassify.ClassifyCached(content, ids)
	if err != nil {
		pl = &logclassify.ParsedLog{PerItem: make(map[string]outcome.Outcome, len(ids))}
		for _, id := range ids {
			pl.PerItem[id] = outcome.Unknown
		}
	}
	return pl
}

func recordAllUnknown(om *outcome.Map, ids []string) {
	for _, id := range ids {
		om.Set(id, outcome.Unknown)
	}
}

// reconcile implements spec §4.6 step 9: the filesystem is authoritative
// over the classified log outcome.
func reconcile(cfg *config.Config, inst string, ids []string, pl *logclassify.ParsedLog, timedOut bool, om *outcome.Map, index int) {
	for _, id := range ids {
		sr := pl.PerItem[id]

		src := filepath.Join(inst, "steamapps", "workshop", "content", cfg.AppID, id)
		dst := filepath.Join(cfg.SharedRoot, "steamapps", "workshop", "content", cfg.AppID, id)

		if fsutil.Move(src, dst) {
			sr = outcome.Success
		} else if sr == outcome.Success {
			dbg.LogWorker("t%d: item %s reported Success but no files at %s, downgrading to ValidationFailed", index, id, dst)
			sr = outcome.ValidationFailed
		}

		if timedOut && sr != outcome.Success {
			sr = outcome.Timeout
		}

		om.Set(id, sr)
	}
}
