package ddl

// Record is an ordered mapping from column name to value. The order in which
// columns are first Set is the order InsertSQL uses for the column list when
// the record leads a batch.
//
// Values are nil, an integer, a time.Time or a string; anything else is
// rendered by Literal's fallback rule.
//
// The zero value is an empty record ready to use.
type Record struct {
	cols []string
	vals map[string]any
}

// NewRecord returns an empty record with room for n columns.
func NewRecord(n int) *Record {
	return &Record{
		cols: make([]string, 0, n),
		vals: make(map[string]any, n),
	}
}

// Set stores v under col. A new column is appended to the key order; setting
// an existing column replaces its value in place.
func (r *Record) Set(col string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value stored under col and whether the column is present.
// A present column may hold nil.
func (r *Record) Get(col string) (any, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Columns returns the column names in insertion order. The returned slice
// must not be modified.
func (r *Record) Columns() []string { return r.cols }

// Len returns the number of columns in the record.
func (r *Record) Len() int { return len(r.cols) }
