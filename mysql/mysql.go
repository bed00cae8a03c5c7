// Package mysql provides the MySQL 8.0+ binding for dbqueue.
//
// The queue table uses a BIGINT AUTO_INCREMENT key, so dequeue order follows
// insertion order, and a LONGBLOB value column for opaque serialized
// payloads. The table-exists probe consults information_schema for the
// current database.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/nxminh/DatabaseQueue"
)

const defaultTable = "dbqueue"

// ErrDSNRequired is returned when the DSN is empty.
var ErrDSNRequired = errors.New("dbqueue mysql: dsn is required")

// Config defines MySQL backend behavior.
type Config struct {
	Table string
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}

	return c
}

// Option configures the MySQL backend.
type Option func(*Config)

// WithTable sets the queue table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// Backend connects dbqueue to a MySQL server.
type Backend struct {
	dsn    string
	schema dbqueue.Schema
}

var _ dbqueue.Backend = (*Backend)(nil)

// New constructs a MySQL backend with validated configuration. The DSN is in
// go-sql-driver form, e.g. "user:pass@tcp(host:3306)/db".
func New(dsn string, opts ...Option) (*Backend, error) {
	if dsn == "" {
		return nil, ErrDSNRequired
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
		dsn:    dsn,
		schema: newSchema(cfg.Table),
	}, nil
}

// Connect opens a single-connection session for exclusive use by one queue.
func (b *Backend) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", b.dsn)
	if err != nil {
		return nil, fmt.Errorf("dbqueue mysql: open: %w", err)
	}

	// One session per queue: the engine serializes all statements.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("dbqueue mysql: ping: %w", err)
	}

	return db, nil
}

// Schema returns the MySQL storage schema.
func (b *Backend) Schema() dbqueue.Schema {
	return b.schema
}
