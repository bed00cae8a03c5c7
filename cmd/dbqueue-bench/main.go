// Command dbqueue-bench measures enqueue/dequeue throughput against a
// SQLite-backed queue. It seeds the queue in batches, drains it, and prints
// a JSON summary to stdout.
package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nxminh/DatabaseQueue"
	"github.com/nxminh/DatabaseQueue/sqlite"
)

const (
	defaultRecords      = 10000
	defaultBatchSize    = 100
	defaultPayloadBytes = 512
	exitUsage           = 2
)

var errDrainIncomplete = errors.New("dbqueue-bench: drained fewer items than seeded")

type result struct {
	Records            int           `json:"records"`
	BatchSize          int           `json:"batch_size"`
	PayloadBytes       int           `json:"payload_bytes"`
	EnqueueDuration    time.Duration `json:"enqueue_duration"`
	DequeueDuration    time.Duration `json:"dequeue_duration"`
	EnqueueThroughput  float64       `json:"enqueue_msg_per_sec"`
	DequeueThroughput  float64       `json:"dequeue_msg_per_sec"`
	FinalDepth         int64         `json:"final_depth"`
	DatabaseSizeBytes  int64         `json:"database_size_bytes"`
	DatabasePath       string        `json:"database_path"`
	DequeuedItemsTotal int           `json:"dequeued_items_total"`
}

func main() {
	var (
		dbPath       string
		table        string
		records      int
		batchSize    int
		payloadBytes int
		verbose      bool
	)

	flag.StringVar(&dbPath, "db", "", "SQLite database path (default: a temp file)")
	flag.StringVar(&table, "table", "dbqueue_bench", "queue table name")
	flag.IntVar(&records, "records", defaultRecords, "number of items to enqueue")
	flag.IntVar(&batchSize, "batch", defaultBatchSize, "items per enqueue/dequeue batch")
	flag.IntVar(&payloadBytes, "payload", defaultPayloadBytes, "payload size in bytes")
	flag.BoolVar(&verbose, "v", false, "log progress to stderr")
	flag.Parse()

	if records <= 0 || batchSize <= 0 || payloadBytes <= 0 {
		fmt.Fprintln(os.Stderr, "records, batch, and payload must be positive")
		os.Exit(exitUsage)
	}

	if err := run(dbPath, table, records, batchSize, payloadBytes, verbose); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dbPath, table string, records, batchSize, payloadBytes int, verbose bool) error {
	if dbPath == "" {
		dir, err := os.MkdirTemp("", "dbqueue-bench")
		if err != nil {
			return fmt.Errorf("dbqueue-bench: temp dir: %w", err)
		}
		defer os.RemoveAll(dir)
		dbPath = filepath.Join(dir, "bench.db")
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := dbqueue.SlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	backend, err := sqlite.New(dbPath, sqlite.WithTable(table))
	if err != nil {
		return err
	}

	queue, err := dbqueue.New[[]byte](backend, dbqueue.BytesSerializer{}, dbqueue.WithLogger(logger))
	if err != nil {
		return err
	}
	defer queue.Close()

	ctx := context.Background()
	if err := queue.Init(ctx); err != nil {
		return err
	}

	payload := make([]byte, payloadBytes)
	if _, err := rand.Read(payload); err != nil {
		return fmt.Errorf("dbqueue-bench: payload: %w", err)
	}

	res := result{
		Records:      records,
		BatchSize:    batchSize,
		PayloadBytes: payloadBytes,
		DatabasePath: dbPath,
	}

	enqueueStart := time.Now()
	for seeded := 0; seeded < records; {
		n := min(batchSize, records-seeded)
		batch := make([][]byte, n)
		for i := range batch {
			batch[i] = payload
		}
		if err := queue.EnqueueAll(ctx, batch); err != nil {
			return err
		}
		seeded += n
	}
	res.EnqueueDuration = time.Since(enqueueStart)

	dequeueStart := time.Now()
	for {
		items, err := queue.DequeueUpTo(ctx, batchSize)
		if errors.Is(err, dbqueue.ErrNoItems) {
			break
		}
		if err != nil {
			return err
		}
		res.DequeuedItemsTotal += len(items)
	}
	res.DequeueDuration = time.Since(dequeueStart)

	if res.DequeuedItemsTotal != records {
		return fmt.Errorf("%w: %d of %d", errDrainIncomplete, res.DequeuedItemsTotal, records)
	}

	res.EnqueueThroughput = float64(records) / res.EnqueueDuration.Seconds()
	res.DequeueThroughput = float64(records) / res.DequeueDuration.Seconds()
	res.FinalDepth = queue.Count()
	if info, err := os.Stat(dbPath); err == nil {
		res.DatabaseSizeBytes = info.Size()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(res)
}
