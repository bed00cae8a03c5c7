package mysql

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
		Value: dbqueue.Column{Name: "item", Type: "LONGBLOB"},
		CreateTable: fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id BIGINT NOT NULL AUTO_INCREMENT, item LONGBLOB NOT NULL, PRIMARY KEY (id))",
			table,
		),
		TableExists: fmt.Sprintf(
			"SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = '%s'",
			table,
		),
		CountRows:   fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		SelectFront: fmt.Sprintf("SELECT id, item FROM %s ORDER BY id ASC LIMIT ?", table),
		Insert:      fmt.Sprintf("INSERT INTO %s (item) VALUES (?)", table),
		DeleteByKey: fmt.Sprintf("DELETE FROM %s WHERE id = ?", table),
	}
}
