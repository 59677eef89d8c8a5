package domain

import "math"

// Aggregator accumulates per-key sums, non-missing counts and row counts for
// a fixed set of numeric columns, in first-seen key order.
type Aggregator struct {
	columns []string
	colIdx  map[string]int
	order   []Key
	groups  map[Key]*group
}

type group struct {
	rows   int
	sums   []float64
	counts []int
}

// NewAggregator creates an aggregator over the given columns.
func NewAggregator(columns ...string) *Aggregator {
	a := &Aggregator{
		columns: columns,
		colIdx:  make(map[string]int, len(columns)),
		groups:  make(map[Key]*group),
	}
	for i, c := range columns {
		a.colIdx[c] = i
	}
	return a
}

// Add records one source row for key. values are aligned with the
// aggregator's columns; NaN values are skipped, as pandas does.
func (a *Aggregator) Add(k Key, values ...float64) {
	g, ok := a.groups[k]
	if !ok {
		g = &group{sums: make([]float64, len(a.columns)), counts: make([]int, len(a.columns))}
		a.groups[k] = g
		a.order = append(a.order, k)
	}
	g.rows++
	for i, v := range values {
		if i >= len(a.columns) || math.IsNaN(v) {
			continue
		}
		g.sums[i] += v
		g.counts[i]++
	}
}

// Keys returns the grouped keys in first-seen order.
func (a *Aggregator) Keys() []Key { return a.order }

// Len returns the number of groups.
func (a *Aggregator) Len() int { return len(a.order) }

// Sum returns the sum of non-missing values (0 when all are missing).
func (a *Aggregator) Sum(k Key, column string) float64 {
	g, i, ok := a.lookup(k, column)
	if !ok {
		return math.NaN()
	}
	return g.sums[i]
}

// Mean returns the mean of non-missing values, NaN when there are none.
func (a *Aggregator) Mean(k Key, column string) float64 {
	g, i, ok := a.lookup(k, column)
	if !ok || g.counts[i] == 0 {
		return math.NaN()
	}
	return g.sums[i] / float64(g.counts[i])
}

// Count returns the number of non-missing values of column for key.
func (a *Aggregator) Count(k Key, column string) float64 {
	g, i, ok := a.lookup(k, column)
	if !ok {
		return 0
	}
	return float64(g.counts[i])
}

// Rows returns the number of source rows recorded for key.
func (a *Aggregator) Rows(k Key) int {
	if g, ok := a.groups[k]; ok {
		return g.rows
	}
	return 0
}

func (a *Aggregator) lookup(k Key, column string) (*group, int, bool) {
	g, ok := a.groups[k]
	if !ok {
		return nil, 0, false
	}
	i, ok := a.colIdx[column]
	if !ok {
		return nil, 0, false
	}
	return g, i, true
}
