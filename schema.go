package dbqueue

import (
	"fmt"
	"strings"
)

// Column describes a persisted column by name and storage type.
type Column struct {
	Name string
	Type string
}

// Schema describes the persisted shape of a queue table and the dialect SQL
// the engine executes against it. A Schema is immutable once constructed;
// backends build one with their table name baked into every statement.
//
// SelectFront must yield rows ordered by the key column ascending, so the
// store-assigned key doubles as insertion order, and must accept a single
// limit parameter. Insert takes one value parameter, DeleteByKey one key
// parameter. TableExists is optional; when present it must yield a row with
// a non-NULL first column iff the table exists.
type Schema struct {
	Table string
	Key   Column
	Value Column

	CreateTable string
	TableExists string
	CountRows   string
	SelectFront string
	Insert      string
	DeleteByKey string
}

// Validate checks that the schema carries a safe table name, both column
// descriptors, and every required SQL statement.
func (s Schema) Validate() error {
	if err := ValidateTableName(s.Table); err != nil {
		return err
	}
	if s.Key.Name == "" || s.Value.Name == "" {
		return fmt.Errorf("%w: key and value columns are required", ErrSchemaIncomplete)
	}
	for _, stmt := range []struct {
		name string
		text string
	}{
		{"create table", s.CreateTable},
		{"count rows", s.CountRows},
		{"select front", s.SelectFront},
		{"insert", s.Insert},
		{"delete by key", s.DeleteByKey},
	} {
		if stmt.text == "" {
			return fmt.Errorf("%w: missing %s statement", ErrSchemaIncomplete, stmt.name)
		}
	}

	return nil
}

// ValidateTableName reports whether name is a plain or schema-qualified
// identifier made of letters, digits, and underscores. Table names are
// interpolated into SQL text, so anything else is rejected.
func ValidateTableName(name string) error {
	if name == "" {
		return ErrTableNameRequired
	}
	parts := strings.Split(name, ".")
	for _, part := range parts {
		if part == "" {
			return fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
		for _, r := range part {
			if r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				continue
			}

			return fmt.Errorf("%w: %s", ErrInvalidTableName, name)
		}
	}

	return nil
}
