package view

import (
	"fmt"

	"datefilter/internal/sheet"
)

// PlaceholderText is shown instead of table rows when nothing matches.
const PlaceholderText = "No matching data found. Try adjusting your filter."

// State of a View. There is no transition back to StateEmpty.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// View owns one user's dataset and filter text. It is not safe for
// concurrent use; the owner serialises access.
type View struct {
	state   State
	dataset *sheet.Dataset
	filter  string
	visible []sheet.Row
}

// New returns a View in the empty state
func New() *View {
	return &View{}
}

func (v *View) State() State { return v.state }

func (v *View) Dataset() *sheet.Dataset { return v.dataset }

func (v *View) Filter() string { return v.filter }

// Load replaces the whole dataset and clears the filter. An empty
// dataset is rejected and leaves the view untouched.
func (v *View) Load(ds *sheet.Dataset) error {
	if ds.Len() == 0 {
		return sheet.ErrEmptySheet
	}
	v.dataset = ds
	v.filter = ""
	v.visible = ds.Rows
	v.state = StateLoaded
	return nil
}

// SetFilter recomputes the visible rows for q. It is a no-op while empty.
func (v *View) SetFilter(q string) {
	if v.state != StateLoaded {
		return
	}
	v.filter = q
	v.visible = Filter(v.dataset, q)
}

// Visible returns the rows currently shown
func (v *View) Visible() []sheet.Row {
	return v.visible
}

// Snapshot is the render model of a View
type Snapshot struct {
	State    State      `json:"state"`
	FileName string     `json:"file_name,omitempty"`
	FileSize int64      `json:"file_size,omitempty"`
	Sheet    string     `json:"sheet,omitempty"`
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
	Filter   string     `json:"filter"`
	Visible  int        `json:"visible"`
	Total    int        `json:"total"`
}

// Snapshot renders the visible rows against the dataset's fixed column
// set; a row missing a column gets "".
func (v *View) Snapshot() Snapshot {
	snap := Snapshot{
		State:   v.state,
		Filter:  v.filter,
		Columns: []string{},
		Rows:    [][]string{},
	}
	if v.state != StateLoaded {
		return snap
	}

	ds := v.dataset
	snap.FileName = ds.FileName
	snap.FileSize = ds.FileSize
	snap.Sheet = ds.Sheet
	snap.Columns = append(snap.Columns, ds.Columns...)
	snap.Total = ds.Len()
	snap.Visible = len(v.visible)

	snap.Rows = make([][]string, len(v.visible))
	for i, row := range v.visible {
		cells := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = row.Value(col)
		}
		snap.Rows[i] = cells
	}
	return snap
}

func (s Snapshot) Loaded() bool { return s.State == StateLoaded }

// NoMatches reports whether the placeholder row replaces the table body.
func (s Snapshot) NoMatches() bool {
	return s.Loaded() && s.Visible == 0
}

func (s Snapshot) StatusLine() string {
	return fmt.Sprintf("Data loaded successfully! (%d rows)", s.Total)
}

func (s Snapshot) CountLine() string {
	return fmt.Sprintf("Showing %d of %d rows", s.Visible, s.Total)
}
