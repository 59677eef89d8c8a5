package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// frame is a header-indexed CSV held in memory.
type frame struct {
	name   string
	header []string
	rows   [][]string
	idx    map[string]int
}

// readCSV loads a CSV whose first row is the header.
func readCSV(name, path string) (*frame, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file %s", name, path)
	}
	return newFrame(name, records[0], records[1:]), nil
}

// readCensusCSV loads a data.census.gov export: the second row holds the
// descriptive header and the trailing column is an export artefact.
func readCensusCSV(name, path string) (*frame, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("read %s: %s has no label row", name, path)
	}
	header := records[1]
	width := len(header) - 1
	if width < 1 {
		return nil, fmt.Errorf("read %s: %s has no data columns", name, path)
	}
	rows := make([][]string, 0, len(records)-2)
	for _, r := range records[2:] {
		if len(r) > width {
			r = r[:width]
		}
		rows = append(rows, r)
	}
	return newFrame(name, header[:width], rows), nil
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func newFrame(name string, header []string, rows [][]string) *frame {
	f := &frame{name: name, header: header, rows: rows, idx: make(map[string]int, len(header))}
	for i, h := range header {
		if _, dup := f.idx[h]; !dup {
			f.idx[h] = i
		}
	}
	return f
}

// col returns the index of a required column.
func (f *frame) col(name string) (int, error) {
	i, ok := f.idx[name]
	if !ok {
		return 0, fmt.Errorf("%s: column %q: %w", f.name, name, domain.ErrMissingColumn)
	}
	return i, nil
}

// cols resolves several required columns at once.
func (f *frame) cols(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		c, err := f.col(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// columnsWhere returns header names matching keep, in file order.
func (f *frame) columnsWhere(keep func(string) bool) []string {
	var out []string
	for _, h := range f.header {
		if keep(h) {
			out = append(out, h)
		}
	}
	return out
}

// cell returns a trimmed cell, or "" for short rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// containsAll reports whether s contains every part.
func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

// containsAny reports whether s contains at least one part.
func containsAny(s string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
