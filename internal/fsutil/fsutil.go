// Package fsutil implements the Filesystem Primitives of spec §4.2: the
// small set of directory predicates and the move-or-copy helper that the
// Instance Worker and Manifest Patcher both build on.
package fsutil

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

// HasFiles reports whether dir exists, is a directory, and contains at
// least one direct-child regular file with non-zero byte size. It does
// not recurse. All filesystem errors are swallowed and return false
// (spec §4.2).
func HasFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Mode().IsRegular() && info.Size() > 0 {
			return true
		}
	}
	return false
}

// TotalSize returns the recursive sum of Size() over all regular-file
// descendants of dir. Filesystem errors are swallowed; partial sums are
// returned (spec §4.2).
func TotalSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total
}

// NewestMtime returns the maximum last-write time over regular-file
// descendants of dir, as seconds since the Unix epoch. It returns 0 if dir
// has no regular-file descendants or cannot be walked (spec §4.2).
func NewestMtime(dir string) int64 {
	var newest time.Time
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if newest.IsZero() {
		return 0
	}
	return newest.UTC().Unix()
}

// Move creates dst's parent, attempts an atomic rename, and on failure
// falls back to a recursive copy followed by removing the source. It
// returns whether the destination subsequently HasFiles (spec §4.2) — the
// caller uses this, not the error, to decide success.
func Move(src, dst string) bool {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return HasFiles(dst)
	}

	if err := os.Rename(src, dst); err == nil {
		return HasFiles(dst)
	}

	if err := copyTree(src, dst); err == nil {
		_ = os.RemoveAll(src)
	}

	return HasFiles(dst)
}

func copyTree(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return copyFile(src, dst, info)
	}

	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		s := filepath.Join(src, e.Name())
		d := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if err := copyTree(s, d); err != nil {
				return err
			}
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		if err := copyFile(s, d, info); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
