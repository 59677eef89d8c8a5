// Package xlsx writes the feature table as an Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Sheet names of the workbook.
const (
	SheetFeatures = "features"
	SheetRun      = "run"
)

// Writer saves the feature table to an .xlsx workbook.
// It implements pipeline.Loader.
type Writer struct {
	path string
}

// NewWriter creates an Excel sink for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "xlsx" }

// Load writes the table to the features sheet, numbers as numbers and
// missing values as blank cells, and the run metadata to the run sheet.
func (w *Writer) Load(ctx context.Context, t *domain.Table, run domain.RunInfo) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // nothing to flush after SaveAs

	if err := f.SetSheetName("Sheet1", SheetFeatures); err != nil {
		return fmt.Errorf("name features sheet: %w", err)
	}
	if err := setRow(f, SheetFeatures, 1, toCells(t.Header())); err != nil {
		return err
	}

	zones := t.HasZones()
	for i, r := range t.Rows() {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		cells := []any{r.Key.State, r.Key.County}
		if zones {
			cells = append(cells, r.Key.Zone)
		}
		cells = append(cells, toCells(r.Labels)...)
		for _, v := range r.Values {
			if math.IsNaN(v) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}
		if err := setRow(f, SheetFeatures, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetRun); err != nil {
		return fmt.Errorf("create run sheet: %w", err)
	}
	meta := [][]any{
		{"dataset_version", run.Version},
		{"generated_at", run.GeneratedAt.Format(time.RFC3339)},
		{"rows", t.Len()},
		{"columns", len(t.Columns())},
	}
	for i, m := range meta {
		if err := setRow(f, SheetRun, i+1, m); err != nil {
			return err
		}
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
