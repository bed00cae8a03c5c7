package dbqueue

import "time"

const (
	defaultBatchSize     = 50
	defaultPollInterval  = 50 * time.Millisecond
	defaultDepthInterval = 0
)

// Config defines queue behavior.
type Config struct {
	Logger Logger
	// Metrics receives batch durations, item counts, and the depth gauge.
	Metrics Metrics
	// SchemaProbe controls whether Init checks for the table before issuing
	// the create statement. Disable it for backends whose create statement
	// is naturally idempotent.
	SchemaProbe    bool
	schemaProbeSet bool
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if !c.schemaProbeSet {
		c.SchemaProbe = true
	}

	return c
}

// Option configures a Queue.
type Option func(*Config)

// WithLogger sets the queue logger.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the queue metrics recorder.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		c.Metrics = metrics
	}
}

// WithSchemaProbe enables or disables the table-exists check during Init.
func WithSchemaProbe(enabled bool) Option {
	return func(c *Config) {
		c.SchemaProbe = enabled
		c.schemaProbeSet = true
	}
}

// WorkerConfig defines how a Worker polls and processes items.
type WorkerConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	Clock         Clock
	Logger        Logger
	Metrics       Metrics
	ErrorHandler  ErrorHandler
	DepthInterval time.Duration
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}
	if c.DepthInterval <= 0 {
		c.DepthInterval = defaultDepthInterval
	}

	return c
}

// WorkerOption configures Worker behavior.
type WorkerOption func(*WorkerConfig)

// WithWorkerBatchSize sets the number of items dequeued per poll.
func WithWorkerBatchSize(size int) WorkerOption {
	return func(c *WorkerConfig) {
		c.BatchSize = size
	}
}

// WithWorkerPollInterval sets the delay between empty polls.
func WithWorkerPollInterval(interval time.Duration) WorkerOption {
	return func(c *WorkerConfig) {
		c.PollInterval = interval
	}
}

// WithWorkerClock sets the worker clock.
func WithWorkerClock(clock Clock) WorkerOption {
	return func(c *WorkerConfig) {
		c.Clock = clock
	}
}

// WithWorkerLogger sets the worker logger.
func WithWorkerLogger(logger Logger) WorkerOption {
	return func(c *WorkerConfig) {
		c.Logger = logger
	}
}

// WithWorkerMetrics sets the worker metrics recorder.
func WithWorkerMetrics(metrics Metrics) WorkerOption {
	return func(c *WorkerConfig) {
		c.Metrics = metrics
	}
}

// WithWorkerErrorHandler registers a callback for item handler failures.
func WithWorkerErrorHandler(handler ErrorHandler) WorkerOption {
	return func(c *WorkerConfig) {
		c.ErrorHandler = handler
	}
}

// WithWorkerDepthInterval sets the minimum interval between depth gauge
// samples. Use a positive value to enable sampling; the default is disabled.
func WithWorkerDepthInterval(interval time.Duration) WorkerOption {
	return func(c *WorkerConfig) {
		c.DepthInterval = interval
	}
}
