package sqlite

import (
	"fmt"

	"github.com/nxminh/DatabaseQueue"
)

// newSchema bakes the table name into every statement. The name has already
// been validated, so interpolation is safe.
func newSchema(table string) dbqueue.Schema {
	return dbqueue.Schema{
		Table: table,
		Key:   dbqueue.Column{Name: "id", Type: "INTEGER"},
		Value: dbqueue.Column{Name: "item", Type: "BLOB"},
		CreateTable: fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, item BLOB NOT NULL)",
			table,
		),
		TableExists: fmt.Sprintf(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = '%s'",
			table,
		),
		CountRows:   fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		SelectFront: fmt.Sprintf("SELECT id, item FROM %s ORDER BY id ASC LIMIT ?", table),
		Insert:      fmt.Sprintf("INSERT INTO %s (item) VALUES (?)", table),
		DeleteByKey: fmt.Sprintf("DELETE FROM %s WHERE id = ?", table),
	}
}
