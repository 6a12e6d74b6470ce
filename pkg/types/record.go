package types

// Record is an ordered mapping from column name to Value. Column order is
// insertion order; the first record written into a partition fixes that
// partition's header from its column order.
type Record struct {
	columns []string
	values  map[string]Value
}

// NewRecord returns an empty Record.
func NewRecord() Record {
	return Record{values: make(map[string]Value)}
}

// Set stores a value under the given column. A new column is appended to
// the column order; setting an existing column keeps its position.
func (r *Record) Set(column string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Get returns the value stored under the given column.
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the column names in insertion order. The returned slice
// is a copy and safe to retain.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r Record) Len() int {
	return len(r.columns)
}

// Clone returns a deep copy of the Record.
func (r Record) Clone() Record {
	out := Record{
		columns: make([]string, len(r.columns)),
		values:  make(map[string]Value, len(r.values)),
	}
	copy(out.columns, r.columns)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether two Records have the same columns in the same
// order with equal canonical values.
func (r Record) Equal(other Record) bool {
	if len(r.columns) != len(other.columns) {
		return false
	}
	for i, col := range r.columns {
		if other.columns[i] != col {
			return false
		}
		if !r.values[col].Equal(other.values[col]) {
			return false
		}
	}
	return true
}
