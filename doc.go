// Package dbqueue provides a durable FIFO queue persisted in a relational
// database, with pluggable storage backends and payload serializers.
//
// Typical flow:
//  1. Construct a Queue from a backend (sqlite, mysql, postgres) and a
//     Serializer for the payload type, then call Init once to open the
//     connection, ensure the table exists, and prime the live counter.
//  2. EnqueueAll inserts a batch of items as a single transaction.
//  3. DequeueUpTo selects the oldest items, deletes them, and returns the
//     decoded payloads, all within one transaction.
//
// A Queue owns exactly one database session and is not safe for concurrent
// enqueue/dequeue calls; use one Queue per worker or serialize access.
// For a polling consumer loop, see Worker.
package dbqueue
