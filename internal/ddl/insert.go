package ddl

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the store-neutral text form of a timestamp literal. The
// fractional part is omitted when zero and trailing zeros are trimmed.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

// InsertSQL renders a single multi-row INSERT for recs:
//
//	INSERT INTO <name> (<c1>, <c2>, ...) VALUES (<v1>, <v2>, ...),
//	(<v1>, <v2>, ...)
//
// The column list is taken from the first record's key order; every record is
// then read by name against that list, and a column missing from a record is
// rendered as NULL. An empty recs yields the empty string.
//
// Values are rendered with Literal. The statement is plain text with no bind
// parameters; Literal's quoting is the only escaping applied.
func (t TableDef) InsertSQL(recs []*Record) string {
	if len(recs) == 0 {
		return ""
	}

	cols := recs[0].Columns()

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t.Name)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES ")

	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteByte('(')
		for j, c := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			v, _ := rec.Get(c)
			sb.WriteString(Literal(v))
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// Literal renders v as a SQL literal:
//
//   - nil → NULL
//   - string → single-quoted, with every ' doubled to ''
//   - time.Time → single-quoted TimestampLayout text
//   - integers, floats, bools → canonical decimal/text form, unquoted
//   - anything else → fmt's default form, unquoted
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case time.Time:
		return "'" + x.Format(TimestampLayout) + "'"
	case *time.Time:
		if x == nil {
			return "NULL"
		}
		return "'" + x.Format(TimestampLayout) + "'"
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
