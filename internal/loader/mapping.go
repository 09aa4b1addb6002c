package loader

import (
	"errors"
	"fmt"

	"examimport/internal/convert"
	"examimport/internal/ddl"
)

// Field maps one source field (0-based index into a CSV row) to a target
// column.
type Field struct {
	Index  int
	Column string
}

// Mapping is the ordered list of fields a row is read through. The order of
// the fields is the column order of the records built from it.
type Mapping []Field

// Identity maps field i to cols[i].
func Identity(cols ...string) Mapping {
	m := make(Mapping, len(cols))
	for i, c := range cols {
		m[i] = Field{Index: i, Column: c}
	}
	return m
}

// Columns returns the target columns in mapping order.
func (m Mapping) Columns() []string {
	out := make([]string, len(m))
	for i, f := range m {
		out[i] = f.Column
	}
	return out
}

// Job describes one file to load into one table.
type Job struct {
	Path       string
	Table      ddl.TableDef
	HasHeader  bool
	Mapping    Mapping
	Converters convert.Bindings
}

// Validate checks the table definition and that the mapping and converter
// bindings only name columns of the table.
func (j Job) Validate() error {
	if j.Path == "" {
		return errors.New("loader: path must not be empty")
	}
	if err := j.Table.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(j.Mapping))
	for _, f := range j.Mapping {
		switch {
		case f.Index < 0:
			return fmt.Errorf("loader: mapping for column %s has negative index %d", f.Column, f.Index)
		case !j.Table.HasColumn(f.Column):
			return fmt.Errorf("loader: mapping targets %s, which is not a column of %s", f.Column, j.Table.Name)
		case seen[f.Column]:
			return fmt.Errorf("loader: column %s is mapped more than once", f.Column)
		}
		seen[f.Column] = true
	}

	for col, c := range j.Converters {
		if c == nil {
			return fmt.Errorf("loader: nil converter bound to %s", col)
		}
		if !j.Table.HasColumn(col) {
			return fmt.Errorf("loader: converter bound to %s, which is not a column of %s", col, j.Table.Name)
		}
	}
	return nil
}
