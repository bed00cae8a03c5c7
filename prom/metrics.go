// Package prom implements dbqueue.Metrics on Prometheus collectors.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nxminh/DatabaseQueue"
)

// Metrics records queue telemetry into Prometheus collectors.
type Metrics struct {
	enqueueDuration prometheus.Histogram
	dequeueDuration prometheus.Histogram
	enqueued        prometheus.Counter
	dequeued        prometheus.Counter
	depth           prometheus.Gauge
}

var _ dbqueue.Metrics = (*Metrics)(nil)

// New builds collectors under the given namespace and registers them with
// reg. It panics if a collector with the same name is already registered.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		enqueueDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dbqueue_enqueue_duration_seconds",
			Help:      "Time taken to commit an enqueue batch",
			Buckets:   prometheus.DefBuckets,
		}),
		dequeueDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dbqueue_dequeue_duration_seconds",
			Help:      "Time taken to commit a dequeue batch",
			Buckets:   prometheus.DefBuckets,
		}),
		enqueued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dbqueue_items_enqueued_total",
			Help:      "Total number of items durably inserted",
		}),
		dequeued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dbqueue_items_dequeued_total",
			Help:      "Total number of items retrieved and removed",
		}),
		depth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dbqueue_depth",
			Help:      "Current live row count of the queue table",
		}),
	}
}

// ObserveEnqueueDuration implements dbqueue.Metrics.
func (m *Metrics) ObserveEnqueueDuration(duration time.Duration) {
	m.enqueueDuration.Observe(duration.Seconds())
}

// ObserveDequeueDuration implements dbqueue.Metrics.
func (m *Metrics) ObserveDequeueDuration(duration time.Duration) {
	m.dequeueDuration.Observe(duration.Seconds())
}

// AddEnqueued implements dbqueue.Metrics.
func (m *Metrics) AddEnqueued(count int) {
	m.enqueued.Add(float64(count))
}

// AddDequeued implements dbqueue.Metrics.
func (m *Metrics) AddDequeued(count int) {
	m.dequeued.Add(float64(count))
}

// SetDepth implements dbqueue.Metrics.
func (m *Metrics) SetDepth(count int64) {
	m.depth.Set(float64(count))
}
