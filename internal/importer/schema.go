package importer

import (
	"examimport/internal/convert"
	"examimport/internal/ddl"
	"examimport/internal/loader"
)

// Table names.
const (
	RoomTableName    = "room"
	StudentTableName = "student"
)

// TypeMapper rewrites a column type literal for the target dialect. A nil
// TypeMapper keeps every literal as written.
type TypeMapper func(literal string) string

func (m TypeMapper) apply(cols []ddl.ColumnDef) []ddl.ColumnDef {
	if m == nil {
		return cols
	}
	for i := range cols {
		cols[i].SQLType = m(cols[i].SQLType)
	}
	return cols
}

// RoomTable is the exam session table. A row is unique per site, room and
// session.
func RoomTable(types TypeMapper) ddl.TableDef {
	return ddl.TableDef{
		Name: RoomTableName,
		Columns: types.apply([]ddl.ColumnDef{
			{Name: "kdno", SQLType: "VARCHAR(10)", Position: 0},
			{Name: "kcno", SQLType: "INT", Position: 1},
			{Name: "ccno", SQLType: "INT", Position: 2},
			{Name: "kdname", SQLType: "VARCHAR(50)", Nullable: true, Position: 3},
			{Name: "exptime", SQLType: "DATETIME", Nullable: true, Position: 4},
			{Name: "papername", SQLType: "VARCHAR(50)", Nullable: true, Position: 5},
		}),
		PrimaryKey: []string{"kdno", "kcno", "ccno"},
	}
}

// StudentTable is the registrant table. Each student references the room
// session they sit in.
func StudentTable(types TypeMapper) ddl.TableDef {
	return ddl.TableDef{
		Name: StudentTableName,
		Columns: types.apply([]ddl.ColumnDef{
			{Name: "registno", SQLType: "VARCHAR(20)", Position: 0},
			{Name: "name", SQLType: "VARCHAR(50)", Nullable: true, Position: 1},
			{Name: "kdno", SQLType: "VARCHAR(10)", Position: 2},
			{Name: "kcno", SQLType: "INT", Position: 3},
			{Name: "ccno", SQLType: "INT", Position: 4},
			{Name: "seat", SQLType: "INT", Nullable: true, Position: 5},
		}),
		PrimaryKey: []string{"registno"},
		ForeignKeys: []ddl.ForeignKeyDef{{
			Columns:          []string{"kdno", "kcno", "ccno"},
			ReferenceTable:   RoomTableName,
			ReferenceColumns: []string{"kdno", "kcno", "ccno"},
		}},
	}
}

// RoomMapping reads the six room fields in file order.
func RoomMapping() loader.Mapping {
	return loader.Identity("kdno", "kcno", "ccno", "kdname", "exptime", "papername")
}

// StudentMapping reads the six student fields in file order.
func StudentMapping() loader.Mapping {
	return loader.Identity("registno", "name", "kdno", "kcno", "ccno", "seat")
}

// RoomConverters binds the room columns to their converters.
func RoomConverters() convert.Bindings {
	return mustBind(map[string]string{
		"kdno":      "string",
		"kcno":      "int",
		"ccno":      "int",
		"kdname":    "string",
		"exptime":   "timestamp",
		"papername": "string",
	})
}

// StudentConverters binds the student columns to their converters. A seat of
// 0 means unassigned and is stored as 0.
func StudentConverters() convert.Bindings {
	return mustBind(map[string]string{
		"registno": "string",
		"name":     "string",
		"kdno":     "string",
		"kcno":     "int",
		"ccno":     "int",
		"seat":     "int",
	})
}

func mustBind(byColumn map[string]string) convert.Bindings {
	b, err := convert.Bind(byColumn)
	if err != nil {
		panic(err)
	}
	return b
}
