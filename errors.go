package dbqueue

import "errors"

var (
	// ErrBackendRequired is returned when a nil Backend is provided.
	ErrBackendRequired = errors.New("dbqueue: backend is required")
	// ErrSerializerRequired is returned when a nil Serializer is provided.
	ErrSerializerRequired = errors.New("dbqueue: serializer is required")
	// ErrNotInitialized is returned when the queue is used before Init.
	ErrNotInitialized = errors.New("dbqueue: queue is not initialized")
	// ErrAlreadyInitialized is returned when Init is called more than once.
	ErrAlreadyInitialized = errors.New("dbqueue: queue is already initialized")
	// ErrClosed is returned when the queue is used after Close.
	ErrClosed = errors.New("dbqueue: queue is closed")
	// ErrEmptyBatch is returned when EnqueueAll is called with no items.
	ErrEmptyBatch = errors.New("dbqueue: enqueue batch is empty")
	// ErrInvalidBatchSize indicates that the requested dequeue bound is not positive.
	ErrInvalidBatchSize = errors.New("dbqueue: batch size must be positive")
	// ErrNoItems signals that no items were available for dequeue.
	ErrNoItems = errors.New("dbqueue: no items available")
	// ErrEmptyValue is returned when a serializer is asked to decode or
	// produce an empty storage value.
	ErrEmptyValue = errors.New("dbqueue: serialized value is empty")
	// ErrTableNameRequired is returned when a schema table name is empty.
	ErrTableNameRequired = errors.New("dbqueue: table name is required")
	// ErrInvalidTableName is returned when a table name has disallowed characters.
	ErrInvalidTableName = errors.New("dbqueue: invalid table name")
	// ErrSchemaIncomplete is returned when a Schema is missing required SQL text.
	ErrSchemaIncomplete = errors.New("dbqueue: schema is incomplete")
)
