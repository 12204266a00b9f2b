package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncCreated is a no-op.
func (n *NoopRecorder) IncCreated(resource Resource) {}

// IncUpdated is a no-op.
func (n *NoopRecorder) IncUpdated(resource Resource) {}

// IncDeleted is a no-op.
func (n *NoopRecorder) IncDeleted(resource Resource) {}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(success bool) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(scope string) {}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}
