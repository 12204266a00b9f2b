// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Resource names a kind of record whose lifecycle is counted.
type Resource string

const (
	ResourceAllergenic Resource = "allergenic"
	ResourceMeal       Resource = "meal"
	ResourceRating     Resource = "rating"
	ResourceMenu       Resource = "menu"
)

// Resources lists every counted resource.
var Resources = []Resource{ResourceAllergenic, ResourceMeal, ResourceRating, ResourceMenu}

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Record lifecycle metrics
	IncCreated(resource Resource)
	IncUpdated(resource Resource)
	IncDeleted(resource Resource)

	// Session metrics
	IncSignIn(success bool)

	// HTTP metrics
	IncRateLimited(scope string) // scope: "api" or "signin"
	ObserveRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
