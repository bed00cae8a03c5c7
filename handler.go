package dbqueue

import "context"

// Handler processes a single dequeued item.
type Handler[T any] interface {
	// Handle processes one item and returns an error on failure.
	Handle(ctx context.Context, item T) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, item T) error

// Handle implements Handler.
func (fn HandlerFunc[T]) Handle(ctx context.Context, item T) error {
	return fn(ctx, item)
}

// ErrorHandler is called when item processing returns an error. The item has
// already been removed from the store, so delivery is at most once.
type ErrorHandler func(ctx context.Context, err error)
