package domain

import (
	"math"
	"strconv"
	"time"
)

// ColZone heads the sub-county zone column of exported tables.
const ColZone = "Zone"

// RunInfo identifies one build of the feature table.
type RunInfo struct {
	Version     string
	GeneratedAt time.Time
}

// HasZones reports whether any row is keyed below county level.
func (t *Table) HasZones() bool {
	for _, r := range t.rows {
		if r.key.Zone != "" {
			return true
		}
	}
	return false
}

// Header returns the exported column order: State, County Name, Zone when
// the table has zones, the label columns, then the numeric columns.
func (t *Table) Header() []string {
	out := []string{ColState, ColCounty}
	if t.HasZones() {
		out = append(out, ColZone)
	}
	out = append(out, t.labels...)
	return append(out, t.columns...)
}

// Records renders every row in Header order. Missing values are empty.
func (t *Table) Records() [][]string {
	zones := t.HasZones()
	out := make([][]string, 0, len(t.rows))
	for _, r := range t.rows {
		rec := make([]string, 0, 3+len(t.labels)+len(t.columns))
		rec = append(rec, r.key.State, r.key.County)
		if zones {
			rec = append(rec, r.key.Zone)
		}
		rec = append(rec, r.labels...)
		for _, v := range r.values {
			rec = append(rec, FormatValue(v))
		}
		out = append(out, rec)
	}
	return out
}

// FormatValue renders a value in its shortest exact form; NaN is empty.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RunSummary describes the last table a run wrote.
type RunSummary struct {
	Version     string    `json:"dataset_version"`
	GeneratedAt time.Time `json:"generated_at"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
}
