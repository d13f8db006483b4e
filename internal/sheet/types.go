package sheet

import "time"

// ExtractedDateColumn is the derived column holding the first date found in a row.
const ExtractedDateColumn = "ExtractedDate"

// Field is one named cell value of a row
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Row holds the non-empty cells of one data row in header order.
type Row struct {
	fields []Field
}

// NewRow builds a row from fields, in the given order
func NewRow(fields ...Field) Row {
	return Row{fields: append([]Field(nil), fields...)}
}

// Fields returns a copy of the row's fields
func (r Row) Fields() []Field {
	return append([]Field(nil), r.fields...)
}

// Keys returns the column names present on the row, in order
func (r Row) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Name
	}
	return keys
}

func (r Row) Len() int { return len(r.fields) }

// Get returns the value stored under name and whether the row has that key
func (r Row) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value stored under name, or "" when missing
func (r Row) Value(name string) string {
	v, _ := r.Get(name)
	return v
}

// set overwrites name in place or appends it.
func (r *Row) set(name, value string) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Dataset is the full row set of one upload
type Dataset struct {
	Columns  []string
	Rows     []Row
	FileName string
	FileSize int64
	Sheet    string
	LoadedAt time.Time
}

// NewDataset derives the column set from the first row's keys.
func NewDataset(rows []Row) *Dataset {
	ds := &Dataset{Rows: rows}
	if len(rows) > 0 {
		ds.Columns = rows[0].Keys()
	}
	return ds
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}
