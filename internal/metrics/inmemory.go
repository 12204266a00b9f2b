package metrics

import (
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Created         map[Resource]uint64
	Updated         map[Resource]uint64
	Deleted         map[Resource]uint64
	SignInSuccesses uint64
	SignInFailures  uint64
	RateLimited     map[string]uint64
	Requests        uint64
	RequestTotalNs  int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		Created:     make(map[Resource]uint64),
		Updated:     make(map[Resource]uint64),
		Deleted:     make(map[Resource]uint64),
		RateLimited: make(map[string]uint64),
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.snap
	out.Created = copyCounts(m.snap.Created)
	out.Updated = copyCounts(m.snap.Updated)
	out.Deleted = copyCounts(m.snap.Deleted)
	out.RateLimited = copyCounts(m.snap.RateLimited)
	return out
}

// IncCreated increments the created counter for resource.
func (m *InMemoryRecorder) IncCreated(resource Resource) {
	m.mu.Lock()
	m.snap.Created[resource]++
	m.mu.Unlock()
}

// IncUpdated increments the updated counter for resource.
func (m *InMemoryRecorder) IncUpdated(resource Resource) {
	m.mu.Lock()
	m.snap.Updated[resource]++
	m.mu.Unlock()
}

// IncDeleted increments the deleted counter for resource.
func (m *InMemoryRecorder) IncDeleted(resource Resource) {
	m.mu.Lock()
	m.snap.Deleted[resource]++
	m.mu.Unlock()
}

// IncSignIn counts a sign-in attempt.
func (m *InMemoryRecorder) IncSignIn(success bool) {
	m.mu.Lock()
	if success {
		m.snap.SignInSuccesses++
	} else {
		m.snap.SignInFailures++
	}
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request.
func (m *InMemoryRecorder) IncRateLimited(scope string) {
	m.mu.Lock()
	m.snap.RateLimited[scope]++
	m.mu.Unlock()
}

// ObserveRequest records a handled request.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.mu.Lock()
	m.snap.Requests++
	m.snap.RequestTotalNs += duration.Nanoseconds()
	m.mu.Unlock()
}

func copyCounts[K comparable](in map[K]uint64) map[K]uint64 {
	out := make(map[K]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
