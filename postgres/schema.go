package postgres

import (
	"fmt"

	"github.com/nxminh/DatabaseQueue"
)

// newSchema bakes the table name into every statement. The name has already
// been validated, so interpolation is safe.
func newSchema(table string) dbqueue.Schema {
	return dbqueue.Schema{
		Table: table,
		Key:   dbqueue.Column{Name: "id", Type: "BIGINT"},
		Value: dbqueue.Column{Name: "item", Type: "BYTEA"},
		CreateTable: fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, item BYTEA NOT NULL)",
			table,
		),
		TableExists: fmt.Sprintf("SELECT to_regclass('%s')::text", table),
		CountRows:   fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		SelectFront: fmt.Sprintf("SELECT id, item FROM %s ORDER BY id ASC LIMIT $1", table),
		Insert:      fmt.Sprintf("INSERT INTO %s (item) VALUES ($1)", table),
		DeleteByKey: fmt.Sprintf("DELETE FROM %s WHERE id = $1", table),
	}
}
