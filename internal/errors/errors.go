// Package errors defines the orchestrator's own typed errors. These sit
// alongside, and are distinct from, the per-identifier Outcome taxonomy in
// internal/outcome: these wrap operational failures (bad config, a worker
// that could not even start), not per-item download results.
package errors

import (
	"fmt"
	"time"
)

// WorkerError represents a failure starting or running an Instance Worker
// itself, as opposed to a per-identifier Outcome recorded by one.
type WorkerError struct {
	Instance   int
	Pass       int
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewWorkerError creates a new worker error with context.
func NewWorkerError(instance, pass int, op string, err error) *WorkerError {
	return &WorkerError{
		Instance:   instance,
		Pass:       pass,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("instance %d pass %d: %s failed: %v", e.Instance, e.Pass, e.Operation, e.Underlying)
}

func (e *WorkerError) Unwrap() error { return e.Underlying }

// ManifestError represents a failure in the Manifest Patcher: a missing
// section insertion point, a backup failure, or a write-open failure.
type ManifestError struct {
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewManifestError creates a new manifest error with context.
func NewManifestError(op, path string, err error) *ManifestError {
	return &ManifestError{
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *ManifestError) Unwrap() error { return e.Underlying }

// ConfigError represents a configuration-loading or validation failure.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error.
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates multiple non-fatal errors (e.g. staging cleanup
// warnings across several instance directories).
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error, dropping any nil entries.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
