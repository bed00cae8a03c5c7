// Package sqlite provides the SQLite binding for dbqueue, using the pure-Go
// modernc.org/sqlite driver.
//
// The queue table uses an INTEGER PRIMARY KEY AUTOINCREMENT key so freed keys
// are never reused and dequeue order follows insertion order. The session is
// opened in WAL mode with a busy timeout so a second process reading the same
// file does not fail immediately.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nxminh/DatabaseQueue"
)

const defaultTable = "dbqueue"

// ErrPathRequired is returned when the database path is empty.
var ErrPathRequired = errors.New("dbqueue sqlite: database path is required")

// Config defines SQLite backend behavior.
type Config struct {
	Table string
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}

	return c
}

// Option configures the SQLite backend.
type Option func(*Config)

// WithTable sets the queue table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// Backend connects dbqueue to a SQLite database file.
type Backend struct {
	path   string
	schema dbqueue.Schema
}

var _ dbqueue.Backend = (*Backend)(nil)

// New constructs a SQLite backend for the given database file path.
func New(path string, opts ...Option) (*Backend, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	if err := dbqueue.ValidateTableName(cfg.Table); err != nil {
		return nil, err
	}

	return &Backend{
		path:   path,
		schema: newSchema(cfg.Table),
	}, nil
}

// Connect opens a single-connection session for exclusive use by one queue.
func (b *Backend) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return nil, fmt.Errorf("dbqueue sqlite: open %s: %w", b.path, err)
	}

	// One session per queue: the engine serializes all statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()

			return nil, fmt.Errorf("dbqueue sqlite: apply pragma %q: %w", pragma, execErr)
		}
	}

	return db, nil
}

// Schema returns the SQLite storage schema.
func (b *Backend) Schema() dbqueue.Schema {
	return b.schema
}
