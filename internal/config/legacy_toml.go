package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	orcherrors "github.com/standardbeagle/rust-workshop-downloader/internal/errors"
)

// legacyTOML is the flat shape an older, pre-KDL config file used. It is
// read only as an upgrade path (§11.1): a downloader.toml present without a
// downloader.kdl sibling is parsed here and merged into cfg on every load
// (no KDL file is written from it), the
// same role pelletier/go-toml/v2 plays for the teacher's own
// sibling-module legacy configs in the retrieval pack.
type legacyTOML struct {
	AppID                  string `toml:"app_id"`
	BaseTimeoutSec         int    `toml:"base_timeout_sec"`
	StatusPollMs           int    `toml:"status_poll_ms"`
	MaxRetryPasses         int    `toml:"max_retry_passes"`
	RateLimitBackoffSec    int    `toml:"ratelimit_backoff_sec"`
	MaxConcurrentInstances int    `toml:"max_concurrent_instances"`
	SkipExisting           bool   `toml:"skip_existing"`
	RetryFailedOnly        bool   `toml:"retry_failed_only"`
	SharedRoot             string `toml:"shared_root"`
}

func applyLegacyTOML(cfg *Config, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return orcherrors.NewConfigError("legacy_toml", path, err)
	}

	var legacy legacyTOML
	if err := toml.Unmarshal(content, &legacy); err != nil {
		return orcherrors.NewConfigError("legacy_toml", path, err)
	}

	if legacy.AppID != "" {
		cfg.AppID = legacy.AppID
	}
	if legacy.BaseTimeoutSec > 0 {
		cfg.BaseTimeoutSec = legacy.BaseTimeoutSec
	}
	if legacy.StatusPollMs > 0 {
		cfg.StatusPollMs = legacy.StatusPollMs
	}
	if legacy.MaxRetryPasses > 0 {
		cfg.MaxRetryPasses = legacy.MaxRetryPasses
	}
	if legacy.RateLimitBackoffSec > 0 {
		cfg.RateLimitBackoffSec = legacy.RateLimitBackoffSec
	}
	if legacy.MaxConcurrentInstances > 0 {
		cfg.MaxConcurrentInstances = legacy.MaxConcurrentInstances
	}
	cfg.SkipExisting = legacy.SkipExisting
	cfg.RetryFailedOnly = legacy.RetryFailedOnly
	if legacy.SharedRoot != "" {
		cfg.SharedRoot = legacy.SharedRoot
	}

	return nil
}
