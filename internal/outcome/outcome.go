// Package outcome implements the per-identifier Outcome taxonomy and the
// OutcomeMap shared across Instance Workers for the lifetime of a run.
package outcome

import "sync"

// Outcome is the closed taxonomy of per-identifier results (spec §3).
type Outcome string

const (
	Success          Outcome = "Success"          // terminal, never retried
	Skipped          Outcome = "Skipped"           // terminal (pre-filter)
	Timeout          Outcome = "Timeout"           // retriable
	RateLimit        Outcome = "RateLimit"         // retriable; triggers inter-pass sleep
	LockFailed       Outcome = "LockFailed"        // retriable; shared-file contention
	ValidationFailed Outcome = "ValidationFailed"  // retriable; stale staging state
	Error            Outcome = "Error"             // retriable (generic)
	Unknown          Outcome = "Unknown"           // unobserved; treated as retriable
)

// Terminal reports whether an Outcome is never retried.
func (o Outcome) Terminal() bool {
	return o == Success || o == Skipped
}

// Retriable reports whether an Outcome is eligible for another pass. Per
// spec §4.8 this is "any Outcome other than Success or Skipped".
func (o Outcome) Retriable() bool {
	return !o.Terminal()
}

// Map is a mapping from identifier to Outcome, safe for concurrent use by
// multiple Instance Workers and the Retry Controller. It lives for the
// entire run.
type Map struct {
	mu   sync.Mutex
	data map[string]Outcome

	// Aggregate counters, updated atomically alongside data under the same
	// lock to keep Processed == sum(per-outcome) at pass boundaries
	// (spec §3 invariant).
	counters map[Outcome]int64
	processed int64
}

// NewMap creates an empty OutcomeMap.
func NewMap() *Map {
	return &Map{
		data:     make(map[string]Outcome),
		counters: make(map[Outcome]int64),
	}
}

// Set records the final outcome for id, replacing any prior entry, except
// that Success is monotonic: once recorded, it is never overwritten (spec
// §3 invariant).
func (m *Map) Set(id string, o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.data[id]; ok {
		if prev == Success {
			return
		}
		m.counters[prev]--
		m.processed--
	}

	m.data[id] = o
	m.counters[o]++
	m.processed++
}

// Get returns the current outcome for id and whether it has one.
func (m *Map) Get(id string) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.data[id]
	return o, ok
}

// Reset sets id back to Unknown without touching Success/Skipped entries,
// and without counting as a new Processed item (used by the Retry
// Controller's prepareRetry step, which un-does the prior pass's tally for
// identifiers being retried).
func (m *Map) Reset(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.data[id]; ok {
		if prev == Success || prev == Skipped {
			return
		}
		m.counters[prev]--
		m.processed--
	}
	m.data[id] = Unknown
	m.counters[Unknown]++
	m.processed++
}

// Failed returns the identifiers whose current outcome is retriable (spec
// §4.8's failure classification).
func (m *Map) Failed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for id, o := range m.data {
		if o.Retriable() {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot returns a point-in-time copy of the whole map.
func (m *Map) Snapshot() map[string]Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]Outcome, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// Counts returns the per-outcome tally and the total Processed count.
func (m *Map) Counts() (counts map[Outcome]int64, processed int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[Outcome]int64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, m.processed
}

// Len returns the number of identifiers with a recorded outcome.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
