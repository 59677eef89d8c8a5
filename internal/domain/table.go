package domain

import (
	"fmt"
	"math"
	"slices"
)

// Table is a wide feature table: one row per Key, ordered numeric columns
// (NaN = missing) and ordered label (string) columns.
type Table struct {
	name     string
	columns  []string
	labels   []string
	colIdx   map[string]int
	labelIdx map[string]int
	rows     []*tableRow
	index    map[Key]int
}

type tableRow struct {
	key    Key
	values []float64
	labels []string
}

// Row is a read-only view of one table row. Values and Labels are aligned
// with Table.Columns and Table.Labels.
type Row struct {
	Key    Key
	Values []float64
	Labels []string
}

// NewTable creates an empty table with the given numeric columns.
func NewTable(name string, columns ...string) *Table {
	t := &Table{
		name:     name,
		colIdx:   make(map[string]int),
		labelIdx: make(map[string]int),
		index:    make(map[Key]int),
	}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Name returns the dataset name the table was built from.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the numeric column names in order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Labels returns the label column names in order.
func (t *Table) Labels() []string { return slices.Clone(t.labels) }

// HasColumn reports whether a numeric or label column exists.
func (t *Table) HasColumn(name string) bool {
	_, num := t.colIdx[name]
	_, lbl := t.labelIdx[name]
	return num || lbl
}

// Has reports whether the key has a row.
func (t *Table) Has(k Key) bool {
	_, ok := t.index[k]
	return ok
}

// Keys returns row keys in row order.
func (t *Table) Keys() []Key {
	keys := make([]Key, len(t.rows))
	for i, r := range t.rows {
		keys[i] = r.key
	}
	return keys
}

// AddColumn appends a numeric column filled with NaN. Existing columns are
// left untouched.
func (t *Table) AddColumn(name string) {
	if _, ok := t.colIdx[name]; ok {
		return
	}
	t.colIdx[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for _, r := range t.rows {
		r.values = append(r.values, math.NaN())
	}
}

// AddLabel appends a label column filled with empty strings.
func (t *Table) AddLabel(name string) {
	if _, ok := t.labelIdx[name]; ok {
		return
	}
	t.labelIdx[name] = len(t.labels)
	t.labels = append(t.labels, name)
	for _, r := range t.rows {
		r.labels = append(r.labels, "")
	}
}

// Insert adds an empty row for the key. It fails with ErrDuplicateKey when
// the key already has a row.
func (t *Table) Insert(k Key) error {
	if t.Has(k) {
		return fmt.Errorf("%s: insert %s: %w", t.name, k, ErrDuplicateKey)
	}
	t.row(k)
	return nil
}

func (t *Table) row(k Key) *tableRow {
	if i, ok := t.index[k]; ok {
		return t.rows[i]
	}
	r := &tableRow{
		key:    k,
		values: make([]float64, len(t.columns)),
		labels: make([]string, len(t.labels)),
	}
	for i := range r.values {
		r.values[i] = math.NaN()
	}
	t.index[k] = len(t.rows)
	t.rows = append(t.rows, r)
	return r
}

// Set stores a numeric value, creating the row and column when missing.
func (t *Table) Set(k Key, column string, v float64) {
	t.AddColumn(column)
	t.row(k).values[t.colIdx[column]] = v
}

// SetLabel stores a label value, creating the row and column when missing.
func (t *Table) SetLabel(k Key, column, v string) {
	t.AddLabel(column)
	t.row(k).labels[t.labelIdx[column]] = v
}

// Value returns the numeric value at (k, column). Missing rows, columns and
// cells all report NaN; ok is false only when the row or column is absent.
func (t *Table) Value(k Key, column string) (float64, bool) {
	i, okRow := t.index[k]
	c, okCol := t.colIdx[column]
	if !okRow || !okCol {
		return math.NaN(), false
	}
	return t.rows[i].values[c], true
}

// Label returns the label at (k, column), or "" when absent.
func (t *Table) Label(k Key, column string) string {
	i, okRow := t.index[k]
	c, okCol := t.labelIdx[column]
	if !okRow || !okCol {
		return ""
	}
	return t.rows[i].labels[c]
}

// Rows returns row views in row order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = Row{Key: r.key, Values: slices.Clone(r.values), Labels: slices.Clone(r.labels)}
	}
	return out
}

// Rename renames numeric and label columns. Unknown names are ignored.
func (t *Table) Rename(mapping map[string]string) {
	for i, c := range t.columns {
		if to, ok := mapping[c]; ok {
			delete(t.colIdx, c)
			t.columns[i] = to
			t.colIdx[to] = i
		}
	}
	for i, c := range t.labels {
		if to, ok := mapping[c]; ok {
			delete(t.labelIdx, c)
			t.labels[i] = to
			t.labelIdx[to] = i
		}
	}
}

// Select returns a copy holding only the named columns, in the given order.
// Names may refer to numeric or label columns.
func (t *Table) Select(names ...string) (*Table, error) {
	out := NewTable(t.name)
	for _, n := range names {
		switch {
		case t.hasNumeric(n):
			out.AddColumn(n)
		case t.hasLabel(n):
			out.AddLabel(n)
		default:
			return nil, fmt.Errorf("%s: select %q: %w", t.name, n, ErrMissingColumn)
		}
	}
	for _, r := range t.rows {
		nr := out.row(r.key)
		for i, c := range out.columns {
			nr.values[i] = r.values[t.colIdx[c]]
		}
		for i, c := range out.labels {
			nr.labels[i] = r.labels[t.labelIdx[c]]
		}
	}
	return out, nil
}

// Drop removes the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) {
	keep := make([]string, 0, len(t.columns)+len(t.labels))
	for _, c := range t.labels {
		if !slices.Contains(names, c) {
			keep = append(keep, c)
		}
	}
	for _, c := range t.columns {
		if !slices.Contains(names, c) {
			keep = append(keep, c)
		}
	}
	sel, _ := t.Select(keep...)
	*t = *sel
}

// Apply replaces every value of a numeric column with fn(value).
func (t *Table) Apply(column string, fn func(float64) float64) {
	c, ok := t.colIdx[column]
	if !ok {
		return
	}
	for _, r := range t.rows {
		r.values[c] = fn(r.values[c])
	}
}

// Round rounds the named numeric columns to the given decimal places.
func (t *Table) Round(places int, columns ...string) {
	for _, c := range columns {
		t.Apply(c, func(v float64) float64 { return Round(v, places) })
	}
}

// SortByKey orders rows by State, County, Zone.
func (t *Table) SortByKey() {
	slices.SortStableFunc(t.rows, func(a, b *tableRow) int {
		switch {
		case a.key.Less(b.key):
			return -1
		case b.key.Less(a.key):
			return 1
		default:
			return 0
		}
	})
	for i, r := range t.rows {
		t.index[r.key] = i
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := NewTable(t.name)
	for _, c := range t.labels {
		out.AddLabel(c)
	}
	for _, c := range t.columns {
		out.AddColumn(c)
	}
	for _, r := range t.rows {
		nr := out.row(r.key)
		copy(nr.values, r.values)
		copy(nr.labels, r.labels)
	}
	return out
}

// Filter returns a copy holding only the rows for which keep returns true.
func (t *Table) Filter(keep func(Key) bool) *Table {
	out := t.Clone()
	rows := out.rows
	out.rows = nil
	out.index = make(map[Key]int)
	for _, r := range rows {
		if keep(r.key) {
			out.index[r.key] = len(out.rows)
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// OuterJoin merges two tables on Key, keeping every key from both sides.
// The result is sorted by key. Numeric columns present on both sides are
// suffixed "_x" (left) and "_y" (right); label columns present on both
// sides are coalesced, preferring the left value when non-empty.
func (t *Table) OuterJoin(other *Table) *Table {
	out := NewTable(t.name)

	leftName := func(c string) string {
		if other.hasNumeric(c) {
			return c + "_x"
		}
		return c
	}
	rightName := func(c string) string {
		if t.hasNumeric(c) {
			return c + "_y"
		}
		return c
	}

	for _, c := range t.labels {
		out.AddLabel(c)
	}
	for _, c := range other.labels {
		out.AddLabel(c)
	}
	for _, c := range t.columns {
		out.AddColumn(leftName(c))
	}
	for _, c := range other.columns {
		out.AddColumn(rightName(c))
	}

	for _, r := range t.rows {
		nr := out.row(r.key)
		for i, c := range t.columns {
			nr.values[out.colIdx[leftName(c)]] = r.values[i]
		}
		for i, c := range t.labels {
			nr.labels[out.labelIdx[c]] = r.labels[i]
		}
	}
	for _, r := range other.rows {
		nr := out.row(r.key)
		for i, c := range other.columns {
			nr.values[out.colIdx[rightName(c)]] = r.values[i]
		}
		for i, c := range other.labels {
			j := out.labelIdx[c]
			if nr.labels[j] == "" {
				nr.labels[j] = r.labels[i]
			}
		}
	}

	out.SortByKey()
	return out
}

func (t *Table) hasNumeric(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

func (t *Table) hasLabel(name string) bool {
	_, ok := t.labelIdx[name]
	return ok
}
