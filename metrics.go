package dbqueue

import "time"

// Metrics captures queue-level telemetry.
type Metrics interface {
	// ObserveEnqueueDuration records the time to commit an enqueue batch.
	ObserveEnqueueDuration(duration time.Duration)
	// ObserveDequeueDuration records the time to commit a dequeue batch.
	ObserveDequeueDuration(duration time.Duration)
	// AddEnqueued increments the count of durably inserted items.
	AddEnqueued(count int)
	// AddDequeued increments the count of retrieved and removed items.
	AddDequeued(count int)
	// SetDepth updates the current live row count.
	SetDepth(count int64)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveEnqueueDuration implements Metrics.
func (NopMetrics) ObserveEnqueueDuration(time.Duration) {}

// ObserveDequeueDuration implements Metrics.
func (NopMetrics) ObserveDequeueDuration(time.Duration) {}

// AddEnqueued implements Metrics.
func (NopMetrics) AddEnqueued(int) {}

// AddDequeued implements Metrics.
func (NopMetrics) AddDequeued(int) {}

// SetDepth implements Metrics.
func (NopMetrics) SetDepth(int64) {}
