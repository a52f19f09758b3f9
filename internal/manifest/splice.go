package manifest

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/rust-workshop-downloader/internal/dbg"
	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
)

// diagnosticLineCount is how many input lines are dumped when Splice
// refuses to write (spec §4.10 "Failure handling").
const diagnosticLineCount = 30

// Patch reads manifestPath, collects live skin metadata from
// <contentRoot>/<appID>/, and splices in entries for any identifier
// missing from either section. It always writes a timestamped backup
// before touching the live file, and is idempotent: a second call with no
// new skins on disk leaves the file untouched.
func Patch(manifestPath, contentRoot, appID string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return orcherrors.NewManifestError("read", manifestPath, err)
	}

	skins, err := Collect(contentRoot, appID)
	if err != nil {
		return orcherrors.NewManifestError("collect", manifestPath, err)
	}

	lines := Lines(raw)
	idx := Parse(lines)

	outLines, changed, err := splice(lines, idx, skins)
	if err != nil {
		dumpDiagnostic(lines)
		return orcherrors.NewManifestError("splice", manifestPath, err)
	}
	if !changed {
		dbg.LogManifest("no missing identifiers, manifest unchanged")
		return nil
	}

	if err := backup(manifestPath, raw); err != nil {
		return orcherrors.NewManifestError("backup", manifestPath, err)
	}

	out := []byte(strings.Join(outLines, "\n") + "\n")
	if err := os.WriteFile(manifestPath, out, 0644); err != nil {
		return orcherrors.NewManifestError("write (is the external tool running?)", manifestPath, err)
	}

	dbg.LogManifest("spliced missing entries from %d collected identifier(s) into %s", len(skins), manifestPath)
	return nil
}

// splice implements spec §4.10 "Splice". It returns the rewritten lines
// and whether anything changed.
func splice(lines []string, idx *Index, skins []SkinInfo) ([]string, bool, error) {
	var missingInstalled, missingDetails []SkinInfo
	for _, s := range skins {
		if !idx.InstalledIDs[s.ID] {
			missingInstalled = append(missingInstalled, s)
		}
		if !idx.DetailsIDs[s.ID] {
			missingDetails = append(missingDetails, s)
		}
	}

	if len(missingInstalled) == 0 && len(missingDetails) == 0 {
		return lines, false, nil
	}

	if len(missingInstalled) > 0 && idx.InstalledInsertLine < 0 {
		return nil, false, fmt.Errorf("WorkshopItemsInstalled section closing brace not found")
	}
	if len(missingDetails) > 0 && idx.DetailsInsertLine < 0 {
		return nil, false, fmt.Errorf("WorkshopItemDetails section closing brace not found")
	}

	var installedBlock, detailsBlock []string
	for _, s := range missingInstalled {
		installedBlock = append(installedBlock, BuildInstalledEntry(s)...)
	}
	for _, s := range missingDetails {
		detailsBlock = append(detailsBlock, BuildDetailsEntry(s)...)
	}

	out := append([]string(nil), lines...)

	type insertion struct {
		line  int
		block []string
	}
	ins := []insertion{
		{idx.InstalledInsertLine, installedBlock},
		{idx.DetailsInsertLine, detailsBlock},
	}
	// Insert the buffer whose insertion index is larger first, so the
	// smaller index is untouched by the first splice (spec §4.10).
	if ins[0].line < ins[1].line {
		ins[0], ins[1] = ins[1], ins[0]
	}

	for _, in := range ins {
		if len(in.block) == 0 {
			continue
		}
		out = insertAt(out, in.line, in.block)
	}

	return out, true, nil
}

// insertAt inserts block immediately before lines[idx] (i.e. before the
// section's closing brace line).
func insertAt(lines []string, idx int, block []string) []string {
	out := make([]string, 0, len(lines)+len(block))
	out = append(out, lines[:idx]...)
	out = append(out, block...)
	out = append(out, lines[idx:]...)
	return out
}

func backup(manifestPath string, raw []byte) error {
	backupPath := fmt.Sprintf("%s.bak-%d", manifestPath, time.Now().UTC().Unix())
	return os.WriteFile(backupPath, raw, 0644)
}

func dumpDiagnostic(lines []string) {
	n := diagnosticLineCount
	if n > len(lines) {
		n = len(lines)
	}
	dbg.LogManifest("refusing to write; first %d line(s) of input:", n)
	for i := 0; i < n; i++ {
		dbg.LogManifest("%4d: %s", i+1, lines[i])
	}
}

// ContentHash returns the xxhash of raw manifest bytes, a cheap key for
// telling whether two manifest contents are identical. Patch and watch mode
// do not call it; Patch detects "nothing to insert" from the parsed index.
func ContentHash(raw []byte) uint64 {
	return xxhash.Sum64(raw)
}
