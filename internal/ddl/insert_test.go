package ddl

import (
	"strings"
	"testing"
	"time"
)

func rec(kv ...any) *Record {
	r := NewRecord(len(kv) / 2)
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

func TestLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "NULL"},
		{"plain string", "Main Hall", "'Main Hall'"},
		{"empty string", "", "''"},
		{"single quote doubled", "O'Hara School", "'O''Hara School'"},
		{"several quotes", "''x'", "'''''x'''"},
		{"double quote untouched", `say "hi"`, `'say "hi"'`},
		{"backslash untouched", `a\b`, `'a\b'`},
		{"int64", int64(-42), "-42"},
		{"int", 7, "7"},
		{"int32", int32(2147483647), "2147483647"},
		{"uint8", uint8(9), "9"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"timestamp minute", time.Date(2024, 6, 7, 9, 0, 0, 0, time.Local), "'2024-06-07 09:00:00'"},
		{"timestamp with nanos", time.Date(2024, 6, 7, 9, 0, 1, 120000000, time.UTC), "'2024-06-07 09:00:01.12'"},
		{"nil time pointer", (*time.Time)(nil), "NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Literal(tt.in); got != tt.want {
				t.Fatalf("Literal(%#v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestLiteral_QuoteSafety checks that unquoting an emitted string literal
// (strip outer quotes, collapse '' to ') gives back the original input.
func TestLiteral_QuoteSafety(t *testing.T) {
	t.Parallel()

	inputs := []string{"O'Hara", "'", "''", "a'b'c", "it's ''fine''", "no quotes"}
	for _, in := range inputs {
		lit := Literal(in)
		if !strings.HasPrefix(lit, "'") || !strings.HasSuffix(lit, "'") {
			t.Fatalf("Literal(%q) = %q: not quoted", in, lit)
		}
		body := lit[1 : len(lit)-1]
		if strings.Count(body, "'") != 2*strings.Count(in, "'") {
			t.Fatalf("Literal(%q) = %q: quotes not doubled", in, lit)
		}
		if got := strings.ReplaceAll(body, "''", "'"); got != in {
			t.Fatalf("round trip of %q gave %q", in, got)
		}
	}
}

func TestInsertSQL_Empty(t *testing.T) {
	t.Parallel()

	if got := roomDef().InsertSQL(nil); got != "" {
		t.Fatalf("InsertSQL(nil) = %q, want empty", got)
	}
}

func TestInsertSQL_MultiRow(t *testing.T) {
	t.Parallel()

	recs := []*Record{
		rec("kdno", "A01", "kcno", int64(1), "ccno", int64(1), "kdname", "O'Hara School",
			"exptime", time.Date(2024, 6, 7, 9, 0, 0, 0, time.Local), "papername", "P-1"),
		rec("kdno", "A02", "kcno", int64(2), "ccno", int64(1), "kdname", nil,
			"exptime", nil, "papername", "P-2"),
	}

	got := roomDef().InsertSQL(recs)
	want := "INSERT INTO room (kdno, kcno, ccno, kdname, exptime, papername) VALUES " +
		"('A01', 1, 1, 'O''Hara School', '2024-06-07 09:00:00', 'P-1'),\n" +
		"('A02', 2, 1, NULL, NULL, 'P-2')"
	if got != want {
		t.Fatalf("InsertSQL() =\n%s\nwant:\n%s", got, want)
	}
}

// TestInsertSQL_ColumnsFromFirstRecord verifies that the first record pins
// the column list and that later records are read by name.
func TestInsertSQL_ColumnsFromFirstRecord(t *testing.T) {
	t.Parallel()

	recs := []*Record{
		rec("b", int64(1), "a", "x"),
		rec("a", "y", "b", int64(2)),
		rec("a", "z"),
	}
	def := TableDef{Name: "t"}
	got := def.InsertSQL(recs)
	want := "INSERT INTO t (b, a) VALUES (1, 'x'),\n(2, 'y'),\n(NULL, 'z')"
	if got != want {
		t.Fatalf("InsertSQL() =\n%s\nwant:\n%s", got, want)
	}
}

func TestRecord_SetKeepsOrder(t *testing.T) {
	t.Parallel()

	var r Record
	r.Set("z", 1)
	r.Set("a", 2)
	r.Set("z", 3)
	if got := strings.Join(r.Columns(), ","); got != "z,a" {
		t.Fatalf("Columns() = %q, want z,a", got)
	}
	if v, ok := r.Get("z"); !ok || v != 3 {
		t.Fatalf("Get(z) = %v, %v", v, ok)
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatalf("Get(missing) reported present")
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}
