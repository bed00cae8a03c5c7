package dbqueue

import (
	"context"
	"errors"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock uses the system time in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Dequeuer is the queue surface a Worker polls.
type Dequeuer[T any] interface {
	// DequeueUpTo retrieves and removes up to max items.
	DequeueUpTo(ctx context.Context, max int) ([]T, error)
	// Count returns the best-known live row count.
	Count() int64
}

// Worker polls a Dequeuer and invokes a Handler for each item.
//
// A single loop drives the queue because a queue's session must not be used
// concurrently. Dequeue is destructive, so delivery is at most once: a
// handler failure is reported through the configured ErrorHandler and the
// item is not re-queued.
type Worker[T any] struct {
	source  Dequeuer[T]
	handler Handler[T]
	cfg     WorkerConfig

	depthAt time.Time
}

// NewWorker constructs a Worker with defaults and optional settings.
func NewWorker[T any](source Dequeuer[T], handler Handler[T], opts ...WorkerOption) *Worker[T] {
	if source == nil {
		panic("dbqueue: nil Dequeuer")
	}
	if handler == nil {
		panic("dbqueue: nil Handler")
	}

	var cfg WorkerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Worker[T]{
		source:  source,
		handler: handler,
		cfg:     cfg,
	}
}

// Run polls until the context is canceled, sleeping between empty polls.
// A clean cancellation returns nil.
func (w *Worker[T]) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.finish(ctx.Err())
		default:
		}

		processed, err := w.ProcessOnce(ctx)
		if err != nil {
			return w.finish(err)
		}
		if processed {
			continue
		}

		if err := w.sleep(ctx, w.cfg.PollInterval); err != nil {
			return w.finish(err)
		}
	}
}

// ProcessOnce dequeues and processes a single batch. It reports false when
// the queue had nothing to deliver.
func (w *Worker[T]) ProcessOnce(ctx context.Context) (bool, error) {
	items, err := w.source.DequeueUpTo(ctx, w.cfg.BatchSize)
	if err != nil {
		if errors.Is(err, ErrNoItems) {
			w.maybeSampleDepth()

			return false, nil
		}

		return false, err
	}

	for _, item := range items {
		if err := w.handler.Handle(ctx, item); err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			w.cfg.Logger.Error("dbqueue: handler failed", "err", err)
			if w.cfg.ErrorHandler != nil {
				w.cfg.ErrorHandler(ctx, err)
			}
		}
	}

	return true, nil
}

func (w *Worker[T]) finish(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	w.cfg.Logger.Error("dbqueue: worker stopped", "err", err)

	return err
}

func (w *Worker[T]) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (w *Worker[T]) maybeSampleDepth() {
	if w.cfg.DepthInterval <= 0 {
		return
	}

	now := w.cfg.Clock.Now()
	if !w.depthAt.IsZero() && now.Before(w.depthAt.Add(w.cfg.DepthInterval)) {
		return
	}
	w.depthAt = now
	w.cfg.Metrics.SetDepth(w.source.Count())
}
