package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LookupsFound          uint64
	LookupsNotFound       uint64
	LookupsFailed         uint64
	LookupDurationCount   uint64
	LookupDurationTotalNs int64
	ProjectsReturned      uint64
	RateLimited           uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	lookupsFound          uint64
	lookupsNotFound       uint64
	lookupsFailed         uint64
	lookupDurationCount   uint64
	lookupDurationTotalNs int64
	projectsReturned      uint64
	rateLimited           uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LookupsFound:          atomic.LoadUint64(&m.lookupsFound),
		LookupsNotFound:       atomic.LoadUint64(&m.lookupsNotFound),
		LookupsFailed:         atomic.LoadUint64(&m.lookupsFailed),
		LookupDurationCount:   atomic.LoadUint64(&m.lookupDurationCount),
		LookupDurationTotalNs: atomic.LoadInt64(&m.lookupDurationTotalNs),
		ProjectsReturned:      atomic.LoadUint64(&m.projectsReturned),
		RateLimited:           atomic.LoadUint64(&m.rateLimited),
	}
}

// IncUserLookup increments the counter for the given outcome.
func (m *InMemoryRecorder) IncUserLookup(outcome string) {
	switch outcome {
	case OutcomeFound:
		atomic.AddUint64(&m.lookupsFound, 1)
	case OutcomeNotFound:
		atomic.AddUint64(&m.lookupsNotFound, 1)
	default:
		atomic.AddUint64(&m.lookupsFailed, 1)
	}
}

// ObserveLookupDuration records lookup duration.
func (m *InMemoryRecorder) ObserveLookupDuration(duration time.Duration) {
	atomic.AddUint64(&m.lookupDurationCount, 1)
	atomic.AddInt64(&m.lookupDurationTotalNs, duration.Nanoseconds())
}

// ObserveProjectsReturned adds to the returned projects total.
func (m *InMemoryRecorder) ObserveProjectsReturned(count int) {
	atomic.AddUint64(&m.projectsReturned, uint64(count))
}

// IncRateLimited increments the rate limited counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}
