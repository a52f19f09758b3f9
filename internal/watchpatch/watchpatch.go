// Package watchpatch implements the optional watch mode companion to the
// one-shot Manifest Patcher (SPEC_FULL §11.4): rather than patching once,
// it watches the shared content tree for new subdirectories and re-runs
// Collect+Splice on a debounce timer.
package watchpatch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	"github.com/standardbeagle/rust-workshop-downloader/internal/manifest"
)

// DefaultDebounce coalesces bursts of subdirectory creation events (one
// per downloaded item) into a single patch pass.
const DefaultDebounce = 2 * time.Second

// Watcher re-patches manifestPath whenever new content appears under
// <contentRoot>/<appID>/.
type Watcher struct {
	manifestPath string
	contentRoot  string
	appID        string
	debounce     time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
}

// New creates a Watcher on the given shared content root, watching
// <contentRoot>/<appID>/ for new entries.
func New(manifestPath, contentRoot, appID string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	watchDir := contentRoot + "/" + appID
	if err := fsw.Add(watchDir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		manifestPath: manifestPath,
		contentRoot:  contentRoot,
		appID:        appID,
		debounce:     debounce,
		fsw:          fsw,
	}, nil
}

// Run blocks, re-patching on every debounced filesystem event, until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedulePatch(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			dbg.LogManifest("watch error: %v", err)
		}
	}
}

func (w *Watcher) schedulePatch(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending {
		w.timer.Reset(w.debounce)
		return
	}

	w.pending = true
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := manifest.Patch(w.manifestPath, w.contentRoot, w.appID); err != nil {
			dbg.LogManifest("watch-triggered patch failed: %v", err)
		}
	})
}
