package xlsx

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

func TestWriter_Load(t *testing.T) {
	tbl := domain.NewTable("features", domain.ColAreaMi2, "Median Income")
	tbl.AddLabel(domain.ColGEOID)
	autauga := domain.Key{State: "Alabama", County: "Autauga"}
	tbl.Set(autauga, domain.ColAreaMi2, 600)
	tbl.Set(autauga, "Median Income", math.NaN())
	tbl.SetLabel(autauga, domain.ColGEOID, "01001")

	path := filepath.Join(t.TempDir(), "features.xlsx")
	w := NewWriter(path)
	assert.Equal(t, "xlsx", w.Name())

	run := domain.RunInfo{Version: "v2", GeneratedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, w.Load(context.Background(), tbl, run))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetFeatures)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"State", "County Name", "GEOID", "area mi2", "Median Income"}, rows[0])
	assert.Equal(t, []string{"Alabama", "Autauga", "01001", "600"}, rows[1], "blank trailing cell is trimmed")

	meta, err := f.GetRows(SheetRun)
	require.NoError(t, err)
	assert.Equal(t, []string{"dataset_version", "v2"}, meta[0])
	assert.Equal(t, []string{"generated_at", "2026-10-01T12:00:00Z"}, meta[1])
	assert.Equal(t, []string{"rows", "1"}, meta[2])
}
