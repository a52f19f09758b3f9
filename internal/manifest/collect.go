package manifest

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/standardbeagle/rust-workshop-downloader/internal/fsutil"
)

// SkinInfo is the per-item metadata collected from the shared content
// tree, used to build a manifest entry (spec §4.10 "Collect").
type SkinInfo struct {
	ID          string
	Size        int64
	TimeUpdated int64
	TimeTouched int64
}

var (
	publishDateLine = regexp.MustCompile(`"PublishDate"\s*:\s*"([^"]+)"`)
	publishDateTime = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})`)
)

// Collect scans every immediate, all-digit, hasFiles subdirectory of
// <contentRoot>/<appID>/ and computes its SkinInfo.
func Collect(contentRoot, appID string) ([]SkinInfo, error) {
	dir := filepath.Join(contentRoot, appID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UTC().Unix()

	var skins []SkinInfo
	for _, e := range entries {
		if !e.IsDir() || !isDigitRun(e.Name()) {
			continue
		}
		itemDir := filepath.Join(dir, e.Name())
		if !fsutil.HasFiles(itemDir) {
			continue
		}

		skins = append(skins, SkinInfo{
			ID:          e.Name(),
			Size:        fsutil.TotalSize(itemDir),
			TimeUpdated: timeUpdated(itemDir),
			TimeTouched: now,
		})
	}

	return skins, nil
}

func timeUpdated(itemDir string) int64 {
	data, err := os.ReadFile(filepath.Join(itemDir, "manifest.txt"))
	if err == nil {
		if ts, ok := parsePublishDate(data); ok {
			return ts
		}
	}
	return fsutil.NewestMtime(itemDir)
}

func parsePublishDate(data []byte) (int64, bool) {
	m := publishDateLine.FindSubmatch(data)
	if m == nil {
		return 0, false
	}
	tm := publishDateTime.FindStringSubmatch(string(m[1]))
	if tm == nil {
		return 0, false
	}

	year, _ := strconv.Atoi(tm[1])
	month, _ := strconv.Atoi(tm[2])
	day, _ := strconv.Atoi(tm[3])
	hour, _ := strconv.Atoi(tm[4])
	min, _ := strconv.Atoi(tm[5])
	sec, _ := strconv.Atoi(tm[6])

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return t.Unix(), true
}
