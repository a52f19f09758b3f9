// Package config loads and holds the orchestrator's runtime configuration:
// the embedded defaults from spec.md §6, overridable by an optional KDL
// config file and then by CLI flags, the same layering the teacher's
// config loader applies (KDL file, then urfave/cli flag overrides).
package config

import (
	"os"
	"runtime"
)

// Fixed per spec.md §6: the Steam Workshop application id this system
// downloads skins for.
const DefaultAppID = "252490"

// Config holds every tunable of the orchestrator. Fields map directly to
// spec.md §6's "Configuration constants" plus the run-scoped choices
// spec.md §6 has the operator answer interactively.
type Config struct {
	AppID string

	// Embedded constants (spec.md §6), overridable via config file only —
	// never prompted for interactively.
	BaseTimeoutSec       int
	StatusPollMs         int
	MaxRetryPasses       int
	RateLimitBackoffSec  int

	// Run-scoped choices, normally read from stdin (spec.md §6) but
	// pre-answerable via CLI flags or this config file.
	MaxConcurrentInstances int
	SkipExisting           bool
	RetryFailedOnly        bool

	// Paths.
	WorkingDir string // directory containing steamcmd and ImportedSkins.json
	SharedRoot string // the shared Steam library root containing steamapps/

	// Identifier filtering (§11.2): glob patterns matched against
	// "<id>/<title>" pseudo-paths recovered from the input file's
	// surrounding text.
	Include []string
	Exclude []string
}

// PassBudget is 1 initial attempt plus MaxRetryPasses retries (spec §4.8).
func (c *Config) PassBudget() int {
	return 1 + c.MaxRetryPasses
}

// Default returns the embedded defaults from spec.md §6, rooted at the
// current working directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return &Config{
		AppID:                  DefaultAppID,
		BaseTimeoutSec:         90,
		StatusPollMs:           500,
		MaxRetryPasses:         3,
		RateLimitBackoffSec:    30,
		MaxConcurrentInstances: minInt(3, runtime.NumCPU()),
		SkipExisting:           false,
		RetryFailedOnly:        false,
		WorkingDir:             cwd,
		SharedRoot:             cwd,
		Include:                []string{},
		Exclude:                []string{},
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Load builds a Config starting from defaults, then applying
// <workDir>/downloader.kdl if present, then <workDir>/downloader.toml if
// present and the KDL file was not (the legacy-upgrade path, §11.1).
func Load(workDir string) (*Config, error) {
	cfg := Default()
	cfg.WorkingDir = workDir
	cfg.SharedRoot = workDir

	kdlPath := workDir + "/downloader.kdl"
	if _, err := os.Stat(kdlPath); err == nil {
		if err := applyKDLFile(cfg, kdlPath); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	tomlPath := workDir + "/downloader.toml"
	if _, err := os.Stat(tomlPath); err == nil {
		if err := applyLegacyTOML(cfg, tomlPath); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
