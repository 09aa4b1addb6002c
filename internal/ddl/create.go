// Package ddl defines a small, declarative model of a target table and pure
// helpers that render it as SQL text: CREATE TABLE for the definition itself,
// multi-row INSERT for a slice of records, and the COUNT(*) used to verify a
// load.
//
// The package does not quote identifiers and does not adapt to a dialect: the
// table name, column names, SQL type literals and default expressions are
// emitted verbatim. Dialect differences in type names are resolved by the
// caller before the TableDef is built (see storage.TypeFor).
package ddl

import (
	"fmt"
	"strings"
)

// CreateTableSQL renders the CREATE TABLE statement for t.
//
// The statement has the form:
//
//	CREATE TABLE IF NOT EXISTS <name> (
//	  <col1> <type>[ NOT NULL][ DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>),]
//	  [FOREIGN KEY (<cols>) REFERENCES <table>(<ref-cols>),]
//	  ...
//	)
//
// Columns are emitted in slice order; the primary key and foreign keys follow
// the columns. The output is a pure function of t. CreateTableSQL does not
// validate t; call Validate first.
func (t TableDef) CreateTableSQL() string {
	defs := make([]string, 0, len(t.Columns)+1+len(t.ForeignKeys))
	for _, c := range t.Columns {
		defs = append(defs, "  "+c.sqlDefinition())
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, "  "+fk.sqlDefinition())
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(t.Name)
	sb.WriteString(" (\n")
	sb.WriteString(strings.Join(defs, ",\n"))
	sb.WriteString("\n)")
	return sb.String()
}

// CountSQL renders the row-count query used to verify a load.
func (t TableDef) CountSQL() string {
	return "SELECT COUNT(*) FROM " + t.Name
}

// sqlDefinition renders <name> <type>[ NOT NULL][ DEFAULT <expr>].
func (c ColumnDef) sqlDefinition() string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	sb.WriteByte(' ')
	sb.WriteString(c.SQLType)
	if !c.Nullable {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		// Default is emitted as raw SQL expression.
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.Default)
	}
	return sb.String()
}

func (fk ForeignKeyDef) sqlDefinition() string {
	return fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
		strings.Join(fk.Columns, ", "),
		fk.ReferenceTable,
		strings.Join(fk.ReferenceColumns, ", "),
	)
}
