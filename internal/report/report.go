// Package report implements the Report Writer of spec §4.9: the
// human-readable end-of-run summary and the flat failed-identifiers list
// fed back into a subsequent "retry only previously failed" run.
package report

import (
	"fmt"
	"os"
	"sort"

	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
)

// ReportFilename and FailedIDsFilename are the produced-files names from
// spec §6.
const (
	ReportFilename    = "download_report.txt"
	FailedIDsFilename = "failed_ids.txt"
)

// failureKinds lists the non-terminal outcomes, Unknown included, in the fixed
// order the per-failure-kind breakdown is printed in.
var failureKinds = []outcome.Outcome{
	outcome.Timeout,
	outcome.RateLimit,
	outcome.LockFailed,
	outcome.ValidationFailed,
	outcome.Error,
	outcome.Unknown,
}

// Write renders the report and failed-ids files into workDir from a final
// snapshot of the OutcomeMap.
func Write(workDir string, snapshot map[string]outcome.Outcome) error {
	if err := writeReport(workDir, snapshot); err != nil {
		return err
	}
	return writeFailedIDs(workDir, snapshot)
}

func writeReport(workDir string, snapshot map[string]outcome.Outcome) error {
	ids := sortedKeys(snapshot)

	var success, skipped, failed int
	byKind := make(map[outcome.Outcome]int)
	for _, id := range ids {
		switch o := snapshot[id]; o {
		case outcome.Success:
			success++
		case outcome.Skipped:
			skipped++
		default:
			failed++
			byKind[o]++
		}
	}

	f, err := os.Create(workDir + "/" + ReportFilename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "processed: %d\n", len(ids))
	fmt.Fprintf(f, "success: %d\n", success)
	fmt.Fprintf(f, "skipped: %d\n", skipped)
	fmt.Fprintf(f, "failed: %d\n", failed)
	for _, k := range failureKinds {
		if byKind[k] > 0 {
			fmt.Fprintf(f, "  %s: %d\n", k, byKind[k])
		}
	}

	fmt.Fprintln(f)
	for _, id := range ids {
		if o := snapshot[id]; o != outcome.Success && o != outcome.Skipped {
			fmt.Fprintf(f, "%s  [%s]\n", id, o)
		}
	}

	return nil
}

func writeFailedIDs(workDir string, snapshot map[string]outcome.Outcome) error {
	ids := sortedKeys(snapshot)

	f, err := os.Create(workDir + "/" + FailedIDsFilename)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, id := range ids {
		if o := snapshot[id]; o != outcome.Success && o != outcome.Skipped {
			fmt.Fprintln(f, id)
		}
	}
	return nil
}

func sortedKeys(m map[string]outcome.Outcome) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
