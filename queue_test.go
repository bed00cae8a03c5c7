package dbqueue_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/nxminh/DatabaseQueue"
	"github.com/nxminh/DatabaseQueue/sqlite"
)

const testTable = "jobs"

func newTestQueue(t *testing.T, path string, opts ...dbqueue.Option) *dbqueue.Queue[string] {
	t.Helper()

	backend, err := sqlite.New(path, sqlite.WithTable(testTable))
	require.NoError(t, err)

	queue, err := dbqueue.New[string](backend, dbqueue.JSONSerializer[string]{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = queue.Close()
	})

	return queue
}

func testDBPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "queue.db")
}

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func TestQueueRoundTripFIFO(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))
	require.NoError(t, queue.Init(ctx))

	in := []string{"first", "second", "third"}
	require.NoError(t, queue.EnqueueAll(ctx, in))
	require.Equal(t, int64(3), queue.Count())

	out, err := queue.DequeueUpTo(ctx, len(in))
	require.NoError(t, err)
	require.Equal(t, in, out)
	require.Equal(t, int64(0), queue.Count())
}

func TestQueueOpsRequireInit(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))

	err := queue.EnqueueAll(ctx, []string{"a"})
	require.ErrorIs(t, err, dbqueue.ErrNotInitialized)

	_, err = queue.DequeueUpTo(ctx, 1)
	require.ErrorIs(t, err, dbqueue.ErrNotInitialized)

	_, err = queue.Recount(ctx)
	require.ErrorIs(t, err, dbqueue.ErrNotInitialized)
}

func TestQueueInitExactlyOnce(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))

	require.NoError(t, queue.Init(ctx))
	require.ErrorIs(t, queue.Init(ctx), dbqueue.ErrAlreadyInitialized)
}

func TestQueueEnqueueEmptyBatch(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))
	require.NoError(t, queue.Init(ctx))

	require.ErrorIs(t, queue.EnqueueAll(ctx, nil), dbqueue.ErrEmptyBatch)
	require.ErrorIs(t, queue.EnqueueAll(ctx, []string{}), dbqueue.ErrEmptyBatch)
}

func TestQueueDequeueInvalidBound(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))
	require.NoError(t, queue.Init(ctx))

	for _, max := range []int{0, -1, -100} {
		_, err := queue.DequeueUpTo(ctx, max)
		require.ErrorIs(t, err, dbqueue.ErrInvalidBatchSize, "max=%d", max)
	}
}

func TestQueueExhaustion(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))
	require.NoError(t, queue.Init(ctx))

	in := []string{"a", "b", "c", "d", "e"}
	require.NoError(t, queue.EnqueueAll(ctx, in))

	out, err := queue.DequeueUpTo(ctx, 1000)
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = queue.DequeueUpTo(ctx, 1000)
	require.ErrorIs(t, err, dbqueue.ErrNoItems)
	require.Equal(t, int64(0), queue.Count())
}

func TestQueueCountSurvivesReinit(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t)

	queue := newTestQueue(t, path)
	require.NoError(t, queue.Init(ctx))
	require.NoError(t, queue.EnqueueAll(ctx, []string{"a", "b", "c", "d", "e"}))

	out, err := queue.DequeueUpTo(ctx, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(3), queue.Count())
	require.NoError(t, queue.Close())

	// A fresh queue over the same store must prime the same count and see
	// the existing table without error.
	fresh := newTestQueue(t, path)
	require.NoError(t, fresh.Init(ctx))
	require.Equal(t, int64(3), fresh.Count())

	rest, err := fresh.DequeueUpTo(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d", "e"}, rest)
}

func TestQueueCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	queue := newTestQueue(t, testDBPath(t))
	require.NoError(t, queue.Init(ctx))

	require.NoError(t, queue.Close())
	require.NoError(t, queue.Close())

	require.ErrorIs(t, queue.EnqueueAll(ctx, []string{"a"}), dbqueue.ErrClosed)
	_, err := queue.DequeueUpTo(ctx, 1)
	require.ErrorIs(t, err, dbqueue.ErrClosed)
	require.ErrorIs(t, queue.Init(ctx), dbqueue.ErrClosed)
}

func TestQueueSkipsUndecodableRow(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t)
	queue := newTestQueue(t, path)
	require.NoError(t, queue.Init(ctx))

	require.NoError(t, queue.EnqueueAll(ctx, []string{"good"}))

	// Corrupt a row behind the queue's back: invalid JSON must be skipped
	// and left in the store.
	raw := openRaw(t, path)
	_, err := raw.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (item) VALUES (?)", testTable), []byte("{broken"))
	require.NoError(t, err)

	out, err := queue.DequeueUpTo(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"good"}, out)

	var remaining int
	require.NoError(t, raw.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", testTable)).Scan(&remaining))
	require.Equal(t, 1, remaining)
}

func TestQueueRecountReconcilesExternalWrites(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t)
	queue := newTestQueue(t, path)
	require.NoError(t, queue.Init(ctx))
	require.NoError(t, queue.EnqueueAll(ctx, []string{"a"}))

	raw := openRaw(t, path)
	_, err := raw.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (item) VALUES (?)", testTable), []byte(`"external"`))
	require.NoError(t, err)

	require.Equal(t, int64(1), queue.Count())

	depth, err := queue.Recount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), depth)
	require.Equal(t, int64(2), queue.Count())
}

type failOn struct {
	marker string
}

func (f failOn) Serialize(item string) ([]byte, error) {
	if item == f.marker {
		return nil, errors.New("marked item")
	}

	return []byte(`"` + item + `"`), nil
}

func (f failOn) Deserialize(data []byte) (string, error) {
	if len(data) == 0 {
		return "", dbqueue.ErrEmptyValue
	}

	return string(data), nil
}

func TestQueueEnqueueIsAtomic(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t)

	backend, err := sqlite.New(path, sqlite.WithTable(testTable))
	require.NoError(t, err)

	queue, err := dbqueue.New[string](backend, failOn{marker: "poison"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = queue.Close()
	})
	require.NoError(t, queue.Init(ctx))

	err = queue.EnqueueAll(ctx, []string{"ok-1", "ok-2", "poison", "ok-3"})
	require.Error(t, err)

	// Nothing from the failed batch is visible and the counter is untouched.
	require.Equal(t, int64(0), queue.Count())
	_, err = queue.DequeueUpTo(ctx, 10)
	require.ErrorIs(t, err, dbqueue.ErrNoItems)

	raw := openRaw(t, path)
	var rows int
	require.NoError(t, raw.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", testTable)).Scan(&rows))
	require.Equal(t, 0, rows)
}

func TestQueueSchemaProbeDisabled(t *testing.T) {
	ctx := context.Background()
	path := testDBPath(t)

	queue := newTestQueue(t, path, dbqueue.WithSchemaProbe(false))
	require.NoError(t, queue.Init(ctx))
	require.NoError(t, queue.EnqueueAll(ctx, []string{"a"}))
	require.NoError(t, queue.Close())

	// Re-init over the existing table must still succeed: the create
	// statement is idempotent.
	fresh := newTestQueue(t, path, dbqueue.WithSchemaProbe(false))
	require.NoError(t, fresh.Init(ctx))
	require.Equal(t, int64(1), fresh.Count())
}

func TestQueueNilCollaborators(t *testing.T) {
	backend, err := sqlite.New(testDBPath(t))
	require.NoError(t, err)

	_, err = dbqueue.New[string](nil, dbqueue.JSONSerializer[string]{})
	require.ErrorIs(t, err, dbqueue.ErrBackendRequired)

	_, err = dbqueue.New[string](backend, nil)
	require.ErrorIs(t, err, dbqueue.ErrSerializerRequired)
}
