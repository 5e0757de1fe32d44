package votes

import (
	"fmt"
	"strings"
)

// ColumnDef defines a single ClickHouse column. It is the single source of
// truth for the votes table schema in pkg/db/clickhouse/votes.
type ColumnDef struct {
	// Name is the column name
	Name string

	// Type is the ClickHouse data type (e.g., "UInt32", "String", "DateTime64(3)")
	Type string

	// Codec is the optional compression codec, empty for none
	Codec string
}

// SQL returns the full column definition for CREATE TABLE statements.
// Example: "roll_id String CODEC(ZSTD(1))"
func (c ColumnDef) SQL() string {
	if c.Codec != "" {
		return fmt.Sprintf("%s %s CODEC(%s)", c.Name, c.Type, c.Codec)
	}
	return fmt.Sprintf("%s %s", c.Name, c.Type)
}

// ColumnsSQL joins the column definitions for a CREATE TABLE body.
func ColumnsSQL(cols []ColumnDef) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, c.SQL())
	}
	return strings.Join(parts, ",\n\t\t\t")
}

// ColumnNames returns the bare column names in declaration order.
func ColumnNames(cols []ColumnDef) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}
