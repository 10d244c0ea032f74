// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User projects lookup metrics
	IncUserLookup(outcome string) // outcome: "found", "not_found", "error"
	ObserveLookupDuration(duration time.Duration)
	ObserveProjectsReturned(count int)

	// Rate limiting
	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
