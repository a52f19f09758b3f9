package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
)

// applyKDLFile parses a downloader.kdl file and overlays its values onto
// cfg. Grammar mirrors the teacher's .lci.kdl: top-level nodes with either
// inline arguments ("app_id \"252490\"") or a children block.
//
//	app_id "252490"
//	timeouts {
//	    base_timeout_sec 90
//	    status_poll_ms 500
//	    ratelimit_backoff_sec 30
//	}
//	retry {
//	    max_passes 3
//	}
//	run {
//	    max_concurrent_instances 3
//	    skip_existing true
//	    retry_failed_only false
//	}
//	paths {
//	    shared_root "/path/to/steam/library"
//	}
//	include { "49*" }
//	exclude { "11111111*" }
func applyKDLFile(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return orcherrors.NewConfigError("kdl_file", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		if suggestion := suggestKDLFix(string(content)); suggestion != "" {
			return orcherrors.NewConfigError("kdl_file", path, fmt.Errorf("%w (%s)", err, suggestion))
		}
		return orcherrors.NewConfigError("kdl_file", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "app_id":
			if s, ok := firstStringArg(n); ok {
				cfg.AppID = s
			}
		case "timeouts":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "base_timeout_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.BaseTimeoutSec = v
					}
				case "status_poll_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.StatusPollMs = v
					}
				case "ratelimit_backoff_sec":
					if v, ok := firstIntArg(cn); ok {
						cfg.RateLimitBackoffSec = v
					}
				default:
					warnUnknownKey(cn, "base_timeout_sec", "status_poll_ms", "ratelimit_backoff_sec")
				}
			}
		case "retry":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_passes" {
					if v, ok := firstIntArg(cn); ok {
						cfg.MaxRetryPasses = v
					}
				} else {
					warnUnknownKey(cn, "max_passes")
				}
			}
		case "run":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_concurrent_instances":
					if v, ok := firstIntArg(cn); ok {
						cfg.MaxConcurrentInstances = v
					}
				case "skip_existing":
					if v, ok := firstBoolArg(cn); ok {
						cfg.SkipExisting = v
					}
				case "retry_failed_only":
					if v, ok := firstBoolArg(cn); ok {
						cfg.RetryFailedOnly = v
					}
				default:
					warnUnknownKey(cn, "max_concurrent_instances", "skip_existing", "retry_failed_only")
				}
			}
		case "paths":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "shared_root":
					if s, ok := firstStringArg(cn); ok {
						cfg.SharedRoot = s
					}
				case "working_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.WorkingDir = s
					}
				default:
					warnUnknownKey(cn, "shared_root", "working_dir")
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs gathers string values either from inline arguments
// or, for the block form (exclude { "49*" }), from child node names.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
