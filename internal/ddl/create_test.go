package ddl

import (
	"strconv"
	"strings"
	"testing"
)

func roomDef() TableDef {
	return TableDef{
		Name: "room",
		Columns: []ColumnDef{
			{Name: "kdno", SQLType: "VARCHAR(10)", Position: 0},
			{Name: "kcno", SQLType: "INT", Position: 1},
			{Name: "ccno", SQLType: "INT", Position: 2},
			{Name: "kdname", SQLType: "VARCHAR(50)", Nullable: true, Position: 3},
			{Name: "exptime", SQLType: "DATETIME", Nullable: true, Position: 4},
			{Name: "papername", SQLType: "VARCHAR(50)", Nullable: true, Position: 5},
		},
		PrimaryKey: []string{"kdno", "kcno", "ccno"},
	}
}

func studentDef() TableDef {
	return TableDef{
		Name: "student",
		Columns: []ColumnDef{
			{Name: "registno", SQLType: "VARCHAR(20)", Position: 0},
			{Name: "name", SQLType: "VARCHAR(50)", Nullable: true, Position: 1},
			{Name: "kdno", SQLType: "VARCHAR(10)", Position: 2},
			{Name: "kcno", SQLType: "INT", Position: 3},
			{Name: "ccno", SQLType: "INT", Position: 4},
			{Name: "seat", SQLType: "INT", Nullable: true, Position: 5},
		},
		PrimaryKey: []string{"registno"},
		ForeignKeys: []ForeignKeyDef{{
			Columns:          []string{"kdno", "kcno", "ccno"},
			ReferenceTable:   "room",
			ReferenceColumns: []string{"kdno", "kcno", "ccno"},
		}},
	}
}

// TestCreateTableSQL verifies the rendered CREATE TABLE text, including the
// exact room and student statements the importer relies on.
func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     TableDef
		wantSQL string
	}{
		{
			name: "single nullable column",
			def: TableDef{
				Name:    "t",
				Columns: []ColumnDef{{Name: "id", SQLType: "INT", Nullable: true}},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS t (\n  id INT\n)",
		},
		{
			name: "not null with default",
			def: TableDef{
				Name: "t",
				Columns: []ColumnDef{
					{Name: "created_at", SQLType: "DATETIME", Default: "CURRENT_TIMESTAMP"},
				},
			},
			wantSQL: "CREATE TABLE IF NOT EXISTS t (\n  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP\n)",
		},
		{
			name: "room",
			def:  roomDef(),
			wantSQL: "CREATE TABLE IF NOT EXISTS room (\n" +
				"  kdno VARCHAR(10) NOT NULL,\n" +
				"  kcno INT NOT NULL,\n" +
				"  ccno INT NOT NULL,\n" +
				"  kdname VARCHAR(50),\n" +
				"  exptime DATETIME,\n" +
				"  papername VARCHAR(50),\n" +
				"  PRIMARY KEY (kdno, kcno, ccno)\n" +
				")",
		},
		{
			name: "student with foreign key",
			def:  studentDef(),
			wantSQL: "CREATE TABLE IF NOT EXISTS student (\n" +
				"  registno VARCHAR(20) NOT NULL,\n" +
				"  name VARCHAR(50),\n" +
				"  kdno VARCHAR(10) NOT NULL,\n" +
				"  kcno INT NOT NULL,\n" +
				"  ccno INT NOT NULL,\n" +
				"  seat INT,\n" +
				"  PRIMARY KEY (registno),\n" +
				"  FOREIGN KEY (kdno, kcno, ccno) REFERENCES room(kdno, kcno, ccno)\n" +
				")",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.def.CreateTableSQL()
			if got != tt.wantSQL {
				t.Fatalf("CreateTableSQL() =\n%s\nwant:\n%s", got, tt.wantSQL)
			}
		})
	}
}

// TestCreateTableSQL_Deterministic renders the same definition repeatedly and
// from an independently built copy and expects identical text.
func TestCreateTableSQL_Deterministic(t *testing.T) {
	t.Parallel()

	first := studentDef().CreateTableSQL()
	for i := 0; i < 50; i++ {
		if got := studentDef().CreateTableSQL(); got != first {
			t.Fatalf("render %d differs:\n%s\nvs\n%s", i, got, first)
		}
	}
}

// TestCreateTableSQL_ConstraintsAfterColumns checks that PRIMARY KEY and
// FOREIGN KEY clauses come after every column definition.
func TestCreateTableSQL_ConstraintsAfterColumns(t *testing.T) {
	t.Parallel()

	sql := studentDef().CreateTableSQL()
	lastCol := strings.Index(sql, "seat INT")
	pk := strings.Index(sql, "PRIMARY KEY")
	fk := strings.Index(sql, "FOREIGN KEY")
	if lastCol < 0 || pk < 0 || fk < 0 {
		t.Fatalf("missing clause in %q", sql)
	}
	if !(lastCol < pk && pk < fk) {
		t.Fatalf("clause order wrong: seat=%d pk=%d fk=%d", lastCol, pk, fk)
	}
}

// TestValidate covers each structural rule of a table definition.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*TableDef)
		errContains string
	}{
		{name: "valid room", mutate: func(*TableDef) {}},
		{
			name:        "empty name",
			mutate:      func(d *TableDef) { d.Name = " " },
			errContains: "table name must not be empty",
		},
		{
			name:        "no columns",
			mutate:      func(d *TableDef) { d.Columns = nil },
			errContains: "at least one column is required",
		},
		{
			name:        "empty column name",
			mutate:      func(d *TableDef) { d.Columns[1].Name = "" },
			errContains: "column with empty name",
		},
		{
			name:        "missing type",
			mutate:      func(d *TableDef) { d.Columns[1].SQLType = "" },
			errContains: "missing SQLType",
		},
		{
			name:        "duplicate column",
			mutate:      func(d *TableDef) { d.Columns[2].Name = "kcno" },
			errContains: "duplicate column",
		},
		{
			name:        "gap in positions",
			mutate:      func(d *TableDef) { d.Columns[3].Position = 7 },
			errContains: "has position 7, want 3",
		},
		{
			name:        "unknown primary key column",
			mutate:      func(d *TableDef) { d.PrimaryKey = []string{"nope"} },
			errContains: "primary key column nope",
		},
		{
			name: "foreign key length mismatch",
			mutate: func(d *TableDef) {
				d.ForeignKeys = []ForeignKeyDef{{
					Columns:          []string{"kdno", "kcno"},
					ReferenceTable:   "site",
					ReferenceColumns: []string{"kdno"},
				}}
			},
			errContains: "2 columns but 1 reference columns",
		},
		{
			name: "foreign key without table",
			mutate: func(d *TableDef) {
				d.ForeignKeys = []ForeignKeyDef{{Columns: []string{"kdno"}, ReferenceColumns: []string{"kdno"}}}
			},
			errContains: "has no reference table",
		},
		{
			name: "foreign key on unknown column",
			mutate: func(d *TableDef) {
				d.ForeignKeys = []ForeignKeyDef{{
					Columns:          []string{"site"},
					ReferenceTable:   "site",
					ReferenceColumns: []string{"id"},
				}}
			},
			errContains: "foreign key column site",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := roomDef()
			tt.mutate(&def)
			err := def.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tt.errContains)
			}
		})
	}
}

func TestHasColumnAndNames(t *testing.T) {
	t.Parallel()

	def := roomDef()
	if !def.HasColumn("exptime") || def.HasColumn("seat") {
		t.Fatalf("HasColumn mismatch")
	}
	if got := strings.Join(def.ColumnNames(), ","); got != "kdno,kcno,ccno,kdname,exptime,papername" {
		t.Fatalf("ColumnNames() = %q", got)
	}
	if got := def.CountSQL(); got != "SELECT COUNT(*) FROM room" {
		t.Fatalf("CountSQL() = %q", got)
	}
}

// benchmarkSink is a package-level variable used to prevent the compiler from
// optimizing away the results of CreateTableSQL in benchmarks.
var benchmarkSink string

// BenchmarkCreateTableSQL_LargeSchema measures rendering a wide table.
func BenchmarkCreateTableSQL_LargeSchema(b *testing.B) {
	cols := make([]ColumnDef, 0, 64)
	for i := 0; i < 64; i++ {
		cols = append(cols, ColumnDef{
			Name:     "col_" + strconv.Itoa(i),
			SQLType:  "VARCHAR(50)",
			Nullable: true,
			Position: i,
		})
	}
	def := TableDef{Name: "large_table", Columns: cols}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		benchmarkSink = def.CreateTableSQL()
	}
}
