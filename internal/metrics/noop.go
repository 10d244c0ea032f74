package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserLookup is a no-op.
func (n *NoopRecorder) IncUserLookup(outcome string) {}

// ObserveLookupDuration is a no-op.
func (n *NoopRecorder) ObserveLookupDuration(duration time.Duration) {}

// ObserveProjectsReturned is a no-op.
func (n *NoopRecorder) ObserveProjectsReturned(count int) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}
