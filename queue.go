package dbqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Backend supplies the database session and the dialect schema for a queue.
type Backend interface {
	// Connect opens a new database handle for exclusive use by one queue.
	Connect(ctx context.Context) (*sql.DB, error)
	// Schema returns the storage schema the engine executes against.
	Schema() Schema
}

const (
	stateNew int32 = iota
	stateReady
	stateClosed
)

// Queue is a durable FIFO queue of T persisted through a Backend.
//
// The lifecycle is New -> Init -> (EnqueueAll | DequeueUpTo | Count)* -> Close.
// Operations before Init return ErrNotInitialized; operations after Close
// return ErrClosed. Close is idempotent. The live counter is primed from the
// store during Init and maintained incrementally after each committed batch,
// so Count is O(1) but blind to concurrent external writers.
type Queue[T any] struct {
	backend Backend
	schema  Schema
	codec   Serializer[T]
	cfg     Config

	db    *sql.DB
	state atomic.Int32
	size  atomic.Int64
}

type queueRow struct {
	key   int64
	value []byte
}

// New constructs a Queue with validated collaborators and optional settings.
// The connection is not opened until Init.
func New[T any](backend Backend, serializer Serializer[T], opts ...Option) (*Queue[T], error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}
	if serializer == nil {
		return nil, ErrSerializerRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	schema := backend.Schema()
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	return &Queue[T]{
		backend: backend,
		schema:  schema,
		codec:   serializer,
		cfg:     cfg,
	}, nil
}

// Init opens the database session, ensures the queue table exists, and primes
// the live counter from an authoritative count query. It must be called
// exactly once before any other operation.
func (q *Queue[T]) Init(ctx context.Context) error {
	switch q.state.Load() {
	case stateReady:
		return ErrAlreadyInitialized
	case stateClosed:
		return ErrClosed
	}

	if err := q.ensureOpen(ctx); err != nil {
		return err
	}
	if err := q.ensureTable(ctx); err != nil {
		return err
	}

	depth, err := q.queryCount(ctx)
	if err != nil {
		return err
	}
	q.size.Store(depth)
	q.cfg.Metrics.SetDepth(depth)
	q.state.Store(stateReady)
	q.cfg.Logger.Debug("dbqueue: initialized", "table", q.schema.Table, "depth", depth)

	return nil
}

// EnqueueAll inserts every item as one atomic batch, in input order. Either
// all items become durable or none do: a serialization or insert failure
// rolls back the whole transaction, and the live counter moves only after a
// successful commit.
func (q *Queue[T]) EnqueueAll(ctx context.Context, items []T) error {
	if err := q.ready(); err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptyBatch
	}
	if err := q.ensureOpen(ctx); err != nil {
		return err
	}

	start := time.Now()
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbqueue: begin tx: %w", err)
	}

	for i, item := range items {
		value, err := q.codec.Serialize(item)
		if err != nil {
			return q.rollbackWith(tx, fmt.Errorf("dbqueue: serialize item %d: %w", i, err))
		}
		if len(value) == 0 {
			return q.rollbackWith(tx, fmt.Errorf("dbqueue: serialize item %d: %w", i, ErrEmptyValue))
		}
		if _, err := tx.ExecContext(ctx, q.schema.Insert, value); err != nil {
			return q.rollbackWith(tx, fmt.Errorf("dbqueue: insert item %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return q.rollbackWith(tx, fmt.Errorf("dbqueue: commit enqueue: %w", err))
	}

	depth := q.size.Add(int64(len(items)))
	q.cfg.Metrics.AddEnqueued(len(items))
	q.cfg.Metrics.SetDepth(depth)
	q.cfg.Metrics.ObserveEnqueueDuration(time.Since(start))
	q.cfg.Logger.Debug("dbqueue: enqueued batch", "items", len(items), "depth", depth)

	return nil
}

// DequeueUpTo retrieves and removes up to max of the oldest items in one
// transaction, preserving insertion order. Rows whose value cannot be decoded
// are skipped and left in the store. An empty queue yields ErrNoItems.
func (q *Queue[T]) DequeueUpTo(ctx context.Context, max int) ([]T, error) {
	if err := q.ready(); err != nil {
		return nil, err
	}
	if max < 1 {
		return nil, ErrInvalidBatchSize
	}
	if err := q.ensureOpen(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("dbqueue: begin tx: %w", err)
	}

	rows, err := q.selectFront(ctx, tx, max)
	if err != nil {
		return nil, q.rollbackWith(tx, err)
	}

	items := make([]T, 0, len(rows))
	removed := 0
	for _, row := range rows {
		item, err := q.codec.Deserialize(row.value)
		if err != nil {
			// Undecodable rows stay persisted so an operator can inspect them.
			q.cfg.Logger.Warn("dbqueue: skipping undecodable row", "key", row.key, "err", err)

			continue
		}

		res, err := tx.ExecContext(ctx, q.schema.DeleteByKey, row.key)
		if err != nil {
			return nil, q.rollbackWith(tx, fmt.Errorf("dbqueue: delete key %d: %w", row.key, err))
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, q.rollbackWith(tx, fmt.Errorf("dbqueue: delete key %d: %w", row.key, err))
		}
		if affected != 1 {
			q.cfg.Logger.Warn("dbqueue: delete affected no rows", "key", row.key)

			continue
		}

		items = append(items, item)
		removed++
	}

	if err := tx.Commit(); err != nil {
		return nil, q.rollbackWith(tx, fmt.Errorf("dbqueue: commit dequeue: %w", err))
	}

	depth := q.size.Add(-int64(removed))
	if removed > 0 {
		q.cfg.Metrics.AddDequeued(removed)
		q.cfg.Metrics.SetDepth(depth)
	}
	q.cfg.Metrics.ObserveDequeueDuration(time.Since(start))

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	q.cfg.Logger.Debug("dbqueue: dequeued batch", "items", len(items), "depth", depth)

	return items, nil
}

// Count returns the best-known live row count without touching the store.
func (q *Queue[T]) Count() int64 {
	return q.size.Load()
}

// Recount re-primes the live counter from the authoritative count query,
// reconciling drift caused by external writers to the same table.
func (q *Queue[T]) Recount(ctx context.Context) (int64, error) {
	if err := q.ready(); err != nil {
		return 0, err
	}
	if err := q.ensureOpen(ctx); err != nil {
		return 0, err
	}

	depth, err := q.queryCount(ctx)
	if err != nil {
		return 0, err
	}
	q.size.Store(depth)
	q.cfg.Metrics.SetDepth(depth)

	return depth, nil
}

// Close releases the database session. It is idempotent; only the first call
// reaches the store.
func (q *Queue[T]) Close() error {
	if q.state.Swap(stateClosed) == stateClosed {
		return nil
	}
	if q.db == nil {
		return nil
	}

	db := q.db
	q.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("dbqueue: close: %w", err)
	}

	return nil
}

func (q *Queue[T]) ready() error {
	switch q.state.Load() {
	case stateNew:
		return ErrNotInitialized
	case stateClosed:
		return ErrClosed
	}

	return nil
}

// ensureOpen verifies the session is healthy and transparently reopens it
// through the backend when the ping fails.
func (q *Queue[T]) ensureOpen(ctx context.Context) error {
	if q.db != nil {
		err := q.db.PingContext(ctx)
		if err == nil {
			return nil
		}
		q.cfg.Logger.Warn("dbqueue: session unhealthy, reopening", "err", err)
		_ = q.db.Close()
		q.db = nil
	}

	db, err := q.backend.Connect(ctx)
	if err != nil {
		return fmt.Errorf("dbqueue: connect: %w", err)
	}
	q.db = db

	return nil
}

func (q *Queue[T]) ensureTable(ctx context.Context) error {
	if q.cfg.SchemaProbe && q.schema.TableExists != "" {
		exists, err := q.tableExists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
	}

	if _, err := q.db.ExecContext(ctx, q.schema.CreateTable); err != nil {
		return fmt.Errorf("dbqueue: create table %s: %w", q.schema.Table, err)
	}

	return nil
}

func (q *Queue[T]) tableExists(ctx context.Context) (bool, error) {
	var probe sql.NullString
	err := q.db.QueryRowContext(ctx, q.schema.TableExists).Scan(&probe)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("dbqueue: probe table %s: %w", q.schema.Table, err)
	}

	return probe.Valid, nil
}

func (q *Queue[T]) queryCount(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, q.schema.CountRows).Scan(&n); err != nil {
		return 0, fmt.Errorf("dbqueue: count rows: %w", err)
	}

	return n, nil
}

func (q *Queue[T]) selectFront(ctx context.Context, tx *sql.Tx, max int) ([]queueRow, error) {
	rows, err := tx.QueryContext(ctx, q.schema.SelectFront, max)
	if err != nil {
		return nil, fmt.Errorf("dbqueue: select front: %w", err)
	}
	defer rows.Close()

	// Rows are drained before any delete runs because the transaction owns a
	// single connection.
	out := make([]queueRow, 0, max)
	for rows.Next() {
		var row queueRow
		if err := rows.Scan(&row.key, &row.value); err != nil {
			return nil, fmt.Errorf("dbqueue: scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dbqueue: rows: %w", err)
	}

	return out, nil
}

func (q *Queue[T]) rollbackWith(tx *sql.Tx, err error) error {
	rollbackErr := tx.Rollback()
	if rollbackErr == nil || errors.Is(rollbackErr, sql.ErrTxDone) {
		return err
	}

	return errors.Join(err, fmt.Errorf("dbqueue: rollback failed: %w", rollbackErr))
}
