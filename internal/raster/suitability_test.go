package raster

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// constantReaders serves every layer as the 4x4 test grid and records the
// paths read. broken.asc fails.
func constantReaders(t *testing.T, reads *[]string) GridReader {
	return GridReaderFunc(func(path string) (*Grid, error) {
		*reads = append(*reads, path)
		if path == "broken.asc" {
			return nil, errors.New("corrupt raster")
		}
		return testGrid(t), nil
	})
}

func testLayers(t *testing.T) []Layer {
	t.Helper()
	layers, err := Layers([]string{"ghi.asc", "protected.asc", "habitat.asc", "slope.asc", "pop.asc", "substation.asc", "cover.asc"})
	require.NoError(t, err)
	return layers
}

func TestLayers(t *testing.T) {
	layers := testLayers(t)
	require.Len(t, layers, len(LayerColumns))
	assert.Equal(t, Layer{Column: "GHI", Path: "ghi.asc"}, layers[0])
	assert.Equal(t, Layer{Column: "Land_Cover", Path: "cover.asc"}, layers[6])

	_, err := Layers([]string{"ghi.asc"})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestReaders_DispatchByExtension(t *testing.T) {
	var got string
	r := Readers{".tif": GridReaderFunc(func(path string) (*Grid, error) {
		got = path
		return testGrid(t), nil
	})}

	_, err := r.ReadGrid("layers/GHI.TIF")
	require.NoError(t, err)
	assert.Equal(t, "layers/GHI.TIF", got)

	_, err = r.ReadGrid("layers/ghi.nc")
	assert.Error(t, err)
}

func TestProcessor_Counties(t *testing.T) {
	var reads []string
	p := NewProcessor(constantReaders(t, &reads), DefaultOptions(), discardLogger())

	boundaries := []Boundary{
		{State: "Alabama", County: "Autauga", GEOID: "01001", Geom: square(0, 2, 2, 4)},
		{State: "AL", County: "Baldwin County", Geom: square(2, 1, 4, 2)},
		{State: "WY", County: "Albany", GEOID: "56001", Geom: square(10, 10, 11, 11)},
	}
	tbl, err := p.Process(context.Background(), testLayers(t), boundaries, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "suitability", tbl.Name())
	assert.Equal(t, LayerColumns, tbl.Columns())
	assert.Len(t, reads, len(LayerColumns))

	autauga := domain.Key{State: "Alabama", County: "Autauga"}
	baldwin := domain.Key{State: "Alabama", County: "Baldwin County"}
	albany := domain.Key{State: "Wyoming", County: "Albany"}
	assert.Equal(t, []domain.Key{autauga, baldwin, albany}, tbl.Keys())

	for _, col := range LayerColumns {
		v, ok := tbl.Value(autauga, col)
		require.True(t, ok)
		assert.InDelta(t, 3.5, v, 1e-9, col)

		v, _ = tbl.Value(baldwin, col)
		assert.InDelta(t, 11.0, v, 1e-9, col)

		v, _ = tbl.Value(albany, col)
		assert.True(t, math.IsNaN(v), col)
	}
}

func TestProcessor_BlockGroups(t *testing.T) {
	var reads []string
	opts := DefaultOptions()
	opts.BlockGroups = true
	p := NewProcessor(constantReaders(t, &reads), opts, discardLogger())

	boundaries := []Boundary{
		// Codes missing from the layer come from the GEOID.
		{State: "Alabama", County: "Autauga", GEOID: "010010201001", Geom: square(0, 3, 1, 4)},
		{State: "Alabama", County: "Autauga", GEOID: "010010201002", Tract: "020100", BlockGroup: "2", Geom: square(1, 3, 2, 4)},
	}
	tbl, err := p.Process(context.Background(), testLayers(t)[:1], boundaries, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "suitability_block_groups", tbl.Name())

	first := domain.Key{State: "Alabama", County: "Autauga", Zone: "010010201001"}
	second := domain.Key{State: "Alabama", County: "Autauga", Zone: "010010201002"}
	assert.Equal(t, []domain.Key{first, second}, tbl.Keys())
	assert.Equal(t, "020100", tbl.Label(first, ColTract))
	assert.Equal(t, "1", tbl.Label(first, ColBlockGroup))
	assert.Equal(t, "020100", tbl.Label(second, ColTract))
	assert.Equal(t, "2", tbl.Label(second, ColBlockGroup))
	assert.Equal(t, "010010201002", tbl.Label(second, domain.ColGEOID))

	v, _ := tbl.Value(first, "GHI")
	assert.InDelta(t, 1.0, v, 1e-9)
	v, _ = tbl.Value(second, "GHI")
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestProcessor_DuplicateBoundary(t *testing.T) {
	var reads []string
	p := NewProcessor(constantReaders(t, &reads), DefaultOptions(), discardLogger())

	boundaries := []Boundary{
		{State: "Alabama", County: "Autauga", Geom: square(0, 0, 1, 1)},
		{State: "Alabama", County: "Autauga", Geom: square(1, 1, 2, 2)},
	}
	_, err := p.Process(context.Background(), testLayers(t), boundaries, "", nil)
	require.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.Empty(t, reads)
}

func TestProcessor_ReadError(t *testing.T) {
	var reads []string
	p := NewProcessor(constantReaders(t, &reads), DefaultOptions(), discardLogger())

	layers := []Layer{{Column: "GHI", Path: "broken.asc"}}
	_, err := p.Process(context.Background(), layers, []Boundary{{State: "Alabama", County: "Autauga", Geom: square(0, 0, 1, 1)}}, "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read layer GHI")
}
