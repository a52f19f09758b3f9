// Package staging implements the Staging Cleaner of spec §4.3: emptying
// an instance's partial-download subdirectories between passes, and
// removing stale .patch/.lock files from the shared staging area.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
)

// instanceSubdirs are the external tool's partial-download subdirectories
// relative to an instance's install directory (spec §4.3).
var instanceSubdirs = []string{
	filepath.Join("steamapps", "workshop", "downloads"),
	filepath.Join("steamapps", "workshop", "temp"),
	filepath.Join("steamapps", "downloading"),
}

// CleanInstance empties every direct child of instanceSubdirs under inst.
// Non-existence is success; removal failures are collected and returned as
// a single warning-level MultiError, never as a fatal condition (spec
// §4.3) — callers log it and continue.
func CleanInstance(inst string) error {
	var errs []error
	for _, sub := range instanceSubdirs {
		errs = append(errs, emptyDir(filepath.Join(inst, sub))...)
	}
	return asError(errs)
}

func emptyDir(dir string) []error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil // non-existence, or unreadable: not a failure
	}
	var errs []error
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}
	return errs
}

func asError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return orcherrors.NewMultiError(errs)
}

// stalePatterns are the shared staging artifacts that outlive a crashed or
// interrupted instance and must be cleared between passes (spec §4.3).
var stalePatterns = []string{"*.patch", "*.lock"}

// CleanShared removes every direct child of
// <shared>/steamapps/workshop/downloads whose filename matches one of
// stalePatterns.
func CleanShared(sharedRoot string) error {
	dir := filepath.Join(sharedRoot, "steamapps", "workshop", "downloads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var errs []error
	for _, e := range entries {
		name := e.Name()
		for _, pattern := range stalePatterns {
			matched, err := doublestar.Match(pattern, name)
			if err != nil || !matched {
				continue
			}
			path := filepath.Join(dir, name)
			if err := os.RemoveAll(path); err != nil {
				errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			}
			break
		}
	}
	return asError(errs)
}
