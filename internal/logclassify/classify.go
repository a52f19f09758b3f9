// Package logclassify implements the Log Classifier of spec §4.5: it turns
// a captured external-tool log into a ParsedLog of per-identifier outcomes
// plus global flags, by scanning lines against a fixed precedence of
// patterns.
package logclassify

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

// ParsedLog is the Classifier's output (spec §3): a per-identifier Outcome
// defaulting to Unknown, four global flags, and two aggregate counters.
type ParsedLog struct {
	PerItem map[string]outcome.Outcome

	AnyRateLimit      bool
	AnyTimeout        bool
	AnyLockFailed     bool
	AnyValidationFail bool

	SuccessCount int
	FailureCount int
}

func newParsedLog(ids []string) *ParsedLog {
	pl := &ParsedLog{PerItem: make(map[string]outcome.Outcome, len(ids))}
	for _, id := range ids {
		pl.PerItem[id] = outcome.Unknown
	}
	return pl
}

func (pl *ParsedLog) set(id string, o outcome.Outcome) {
	if _, known := pl.PerItem[id]; !known {
		// identifier outside the chunk under classification; ignore.
		return
	}
	pl.PerItem[id] = o
}

func (pl *ParsedLog) tally() {
	pl.SuccessCount, pl.FailureCount = 0, 0
	for _, o := range pl.PerItem {
		switch {
		case o == outcome.Success || o == outcome.Skipped:
			pl.SuccessCount++
		case o != outcome.Unknown:
			pl.FailureCount++
		}
	}
}

var (
	resultLine  = regexp.MustCompile(`\[AppID \d+\] Download item (\d+) result\s*:\s*(.+)`)
	successLine = regexp.MustCompile(`Success\. Downloaded item (\d+)`)
	errorLine   = regexp.MustCompile(`ERROR! Download item (\d+) failed \((.+)\)`)
	timeoutLine = regexp.MustCompile(`Timeout downloading item (\d+)`)

	validationWithID = regexp.MustCompile(`(?i)Staged file validation failed.*item (\d+)`)
	validationNoID   = regexp.MustCompile(`(?i)Staged file validation failed|Missing update files`)
	lockFailedLine   = regexp.MustCompile(`(?i)Failed to write patch state file \(File locked\)`)
	rateLimitHint    = regexp.MustCompile(`(?i)rate limit|too many requests|throttled`)
)

// classifyReason maps a free-text result reason to an Outcome per the
// precedence in spec §4.5's result-line row.
func classifyReason(reason string) (outcome.Outcome, bool) {
	switch {
	case reason == "OK" || strings.Contains(reason, "Success"):
		return outcome.Success, false
	case strings.Contains(reason, "Locking Failed") || strings.Contains(reason, "locked"):
		return outcome.LockFailed, true
	case strings.Contains(reason, "Timeout"):
		return outcome.Timeout, true
	case strings.ContainsAny(reason, "rR") && (strings.Contains(reason, "rate") || strings.Contains(reason, "Rate")):
		return outcome.RateLimit, true
	default:
		return outcome.Error, false
	}
}

// Classify reads r line by line and produces a ParsedLog seeded with
// Unknown for every id in chunkIDs.
func Classify(r io.Reader, chunkIDs []string) (*ParsedLog, error) {
	pl := newParsedLog(chunkIDs)
	lastID := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		classifyLine(pl, scanner.Text(), &lastID)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	pl.tally()
	return pl, nil
}

func classifyLine(pl *ParsedLog, line string, lastID *string) {
	switch {
	case resultLine.MatchString(line):
		m := resultLine.FindStringSubmatch(line)
		id, reason := m[1], m[2]
		o, flag := classifyReason(reason)
		pl.set(id, o)
		*lastID = id
		applyFlag(pl, o, flag)

	case validationWithID.MatchString(line):
		m := validationWithID.FindStringSubmatch(line)
		pl.set(m[1], outcome.ValidationFailed)
		pl.AnyValidationFail = true

	case validationNoID.MatchString(line):
		pl.AnyValidationFail = true
		upgradeLastID(pl, lastID, outcome.ValidationFailed)

	case lockFailedLine.MatchString(line):
		pl.AnyLockFailed = true
		upgradeLastID(pl, lastID, outcome.LockFailed)

	case successLine.MatchString(line):
		m := successLine.FindStringSubmatch(line)
		pl.set(m[1], outcome.Success)
		*lastID = m[1]

	case errorLine.MatchString(line):
		m := errorLine.FindStringSubmatch(line)
		id, reason := m[1], m[2]
		o, flag := classifyReason(reason)
		if o == outcome.Success {
			// an ERROR! line always denotes failure regardless of the
			// embedded reason text.
			o = outcome.Error
		}
		pl.set(id, o)
		*lastID = id
		applyFlag(pl, o, flag)

	case timeoutLine.MatchString(line):
		m := timeoutLine.FindStringSubmatch(line)
		pl.set(m[1], outcome.Timeout)
		pl.AnyTimeout = true

	case rateLimitHint.MatchString(line):
		pl.AnyRateLimit = true
	}
}

func applyFlag(pl *ParsedLog, o outcome.Outcome, flagged bool) {
	if !flagged {
		return
	}
	switch o {
	case outcome.LockFailed:
		pl.AnyLockFailed = true
	case outcome.Timeout:
		pl.AnyTimeout = true
	case outcome.RateLimit:
		pl.AnyRateLimit = true
	}
}

// upgradeLastID implements the "no identifier attached" rule: if lastID's
// current outcome is still Error or Unknown, it is upgraded to o.
func upgradeLastID(pl *ParsedLog, lastID *string, o outcome.Outcome) {
	if *lastID == "" {
		return
	}
	cur, known := pl.PerItem[*lastID]
	if !known {
		return
	}
	if cur == outcome.Error || cur == outcome.Unknown {
		pl.PerItem[*lastID] = o
	}
}

// cache memoizes ParsedLog results keyed by the xxhash of raw log bytes, so
// an unchanged retry log (same instance, same pass, re-read for a report)
// is not re-scanned.
type cache struct {
	mu   sync.Mutex
	data map[uint64]*ParsedLog
}

var memo = &cache{data: make(map[uint64]*ParsedLog)}

// ClassifyCached behaves like Classify but skips re-scanning content whose
// xxhash was already classified for the same chunk composition.
func ClassifyCached(content []byte, chunkIDs []string) (*ParsedLog, error) {
	h := xxhash.Sum64(content)
	key := h ^ chunkKey(chunkIDs)

	memo.mu.Lock()
	if cached, ok := memo.data[key]; ok {
		memo.mu.Unlock()
		return cached, nil
	}
	memo.mu.Unlock()

	pl, err := Classify(strings.NewReader(string(content)), chunkIDs)
	if err != nil {
		return nil, err
	}

	memo.mu.Lock()
	memo.data[key] = pl
	memo.mu.Unlock()

	return pl, nil
}

func chunkKey(ids []string) uint64 {
	d := xxhash.New()
	for _, id := range ids {
		_, _ = d.WriteString(id)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
