// Package csvfile writes the feature table as a CSV file.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Writer writes the feature table to a CSV file. The file is written next
// to its destination and renamed into place, so readers never observe a
// partial table. It implements pipeline.Loader.
type Writer struct {
	path string
}

// NewWriter creates a CSV sink for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "csv" }

// Load writes the header and one record per row.
func (w *Writer) Load(ctx context.Context, t *domain.Table, _ domain.RunInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := Write(tmp, t); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("move csv into place: %w", err)
	}
	return nil
}

// Write encodes the table as CSV.
func Write(out io.Writer, t *domain.Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
