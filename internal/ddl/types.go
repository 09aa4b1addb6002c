package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: column name (unquoted, emitted as-is)
//   - SQLType: target SQL type literal (e.g., VARCHAR(10), INT, DATETIME),
//     embedded verbatim into DDL
//   - Nullable: whether NULL is allowed
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP);
//     empty means no DEFAULT clause
//   - Position: 0-based ordinal of the column within its table
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  string
	Position int
}

// ForeignKeyDef references ReferenceColumns of ReferenceTable from the local
// Columns. Both column lists are ordered and must have the same length.
type ForeignKeyDef struct {
	Columns          []string
	ReferenceTable   string
	ReferenceColumns []string
}

// TableDef is the declarative description of a target table. It is a value
// object: rendering DDL or DML never mutates it and repeated renders of an
// equal TableDef produce byte-identical text.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	PrimaryKey  []string
	ForeignKeys []ForeignKeyDef
}

// HasColumn reports whether name is one of the table's columns.
func (t TableDef) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in definition order.
func (t TableDef) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks the structural rules of a table definition:
//
//   - Name must be non-empty.
//   - At least one column is required; every column needs a Name and SQLType,
//     names are unique, and positions are strictly ascending and dense from 0.
//   - Every primary-key column must be a column of the table.
//   - Every foreign key needs a reference table, at least one column, local
//     columns that exist, and a reference column list of the same length.
func (t TableDef) Validate() error {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("ddl: at least one column is required")
	}

	seen := make(map[string]struct{}, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		if strings.TrimSpace(c.SQLType) == "" {
			return fmt.Errorf("ddl: column %s missing SQLType", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("ddl: duplicate column %s in table %s", c.Name, name)
		}
		seen[c.Name] = struct{}{}
		if c.Position != i {
			return fmt.Errorf("ddl: column %s has position %d, want %d", c.Name, c.Position, i)
		}
	}

	for _, pk := range t.PrimaryKey {
		if _, ok := seen[pk]; !ok {
			return fmt.Errorf("ddl: primary key column %s is not a column of %s", pk, name)
		}
	}

	for i, fk := range t.ForeignKeys {
		if strings.TrimSpace(fk.ReferenceTable) == "" {
			return fmt.Errorf("ddl: foreign key %d of %s has no reference table", i, name)
		}
		if len(fk.Columns) == 0 {
			return fmt.Errorf("ddl: foreign key %d of %s has no columns", i, name)
		}
		if len(fk.Columns) != len(fk.ReferenceColumns) {
			return fmt.Errorf("ddl: foreign key %d of %s: %d columns but %d reference columns",
				i, name, len(fk.Columns), len(fk.ReferenceColumns))
		}
		for _, c := range fk.Columns {
			if _, ok := seen[c]; !ok {
				return fmt.Errorf("ddl: foreign key column %s is not a column of %s", c, name)
			}
		}
	}
	return nil
}
