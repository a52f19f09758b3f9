// Package manifest implements the Manifest Patcher of spec §4.10: a
// single-pass line parser for the Valve-format content manifest, a
// filesystem scan collecting per-item metadata, entry builders, and the
// splice that inserts missing entries without disturbing the rest of the
// file.
package manifest

import (
	"bytes"
	"strings"
)

const (
	sectionInstalled = "WorkshopItemsInstalled"
	sectionDetails   = "WorkshopItemDetails"
)

// Index is the result of parsing a manifest: which identifiers are
// already present in each section, and the line at which new entries for
// that section should be inserted.
type Index struct {
	InstalledIDs map[string]bool
	DetailsIDs   map[string]bool

	// -1 means the section's closing brace was never found at the
	// expected depth; Splice must refuse to write in that case.
	InstalledInsertLine int
	DetailsInsertLine   int
}

// Lines splits raw manifest bytes into lines with trailing carriage
// returns stripped (spec §4.10: "read in binary mode; trailing carriage
// returns are stripped on read").
func Lines(raw []byte) []string {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	text := strings.TrimSuffix(string(raw), "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Parse walks lines tracking absolute brace depth and returns an Index.
// It is a single-pass line parser, not a general VDF reader: it recognises
// exactly the shape described in spec §4.10.
func Parse(lines []string) *Index {
	idx := &Index{
		InstalledIDs:        make(map[string]bool),
		DetailsIDs:           make(map[string]bool),
		InstalledInsertLine:  -1,
		DetailsInsertLine:    -1,
	}

	depth := 0
	section := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch trimmed {
		case "{":
			depth++
			continue
		case "}":
			prevDepth := depth
			depth--
			if prevDepth == 2 && depth == 1 {
				switch section {
				case sectionInstalled:
					idx.InstalledInsertLine = i
				case sectionDetails:
					idx.DetailsInsertLine = i
				}
			}
			continue
		}

		token := firstQuotedToken(line)
		if token == "" {
			continue
		}

		switch {
		case depth == 1 && (token == sectionInstalled || token == sectionDetails):
			section = token
		case depth == 2 && isDigitRun(token):
			switch section {
			case sectionInstalled:
				idx.InstalledIDs[token] = true
			case sectionDetails:
				idx.DetailsIDs[token] = true
			}
		}
	}

	return idx
}

// firstQuotedToken returns the text between the first pair of double
// quotes on line, or "" if there is no such pair.
func firstQuotedToken(line string) string {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return ""
	}
	return line[start+1 : start+1+end]
}

func isDigitRun(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
