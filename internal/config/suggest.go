package config

import (
	"fmt"
	"log"

	edlib "github.com/hbollon/go-edlib"
	"github.com/sblinch/kdl-go/document"
)

// knownKeys lists every recognized config key across the KDL grammar's
// children blocks. warnUnknownKey below does not consult it: it ranks an
// unrecognized key only against the keys its caller passes for that block.
var knownKeys = []string{
	"app_id",
	"base_timeout_sec", "status_poll_ms", "ratelimit_backoff_sec",
	"max_passes",
	"max_concurrent_instances", "skip_existing", "retry_failed_only",
	"shared_root", "working_dir",
	"include", "exclude",
}

// warnUnknownKey logs a "did you mean" suggestion for an unrecognized
// child node, using Levenshtein similarity the same way the teacher's
// fuzzy matcher ranks candidate terms (internal/semantic/fuzzy_matcher.go).
func warnUnknownKey(n *document.Node, valid ...string) {
	name := nodeName(n)
	if name == "" {
		return
	}

	best, bestScore := "", 0.0
	for _, candidate := range valid {
		score, err := edlib.StringsSimilarity(name, candidate, edlib.Levenshtein)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			best, bestScore = candidate, float64(score)
		}
	}

	if best != "" && bestScore >= 0.6 {
		log.Printf("config: unrecognized key %q (did you mean %q?)", name, best)
	} else {
		log.Printf("config: unrecognized key %q", name)
	}
}

// suggestKDLFix offers a coarse diagnostic when the whole file fails to
// parse: if the file's '{' and '}' counts differ, it reports by how much,
// rather than leaving the operator with only kdl-go's parse error. It does
// not point at a line, and returns "" when the braces balance.
func suggestKDLFix(content string) string {
	depth := 0
	for _, r := range content {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	if depth != 0 {
		return fmt.Sprintf("brace count unbalanced by %d — check for a missing '}' or '{'", depth)
	}
	return ""
}
