package raster

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// LayerColumns are the techno-economic suitability layers, in the order
// their rasters are supplied.
var LayerColumns = []string{
	"GHI",
	"Protected_Land",
	"Habitat",
	"Slope",
	"Population_Density",
	"Distance_to_Substation",
	"Land_Cover",
}

// Block group label columns.
const (
	ColTract      = "TRACTCE"
	ColBlockGroup = "BLKGRPCE"
)

const (
	DefaultNoData   = -9999.0
	DefaultMaxValid = 101.0
)

// GridReader loads a raster file.
type GridReader interface {
	ReadGrid(path string) (*Grid, error)
}

// GridReaderFunc adapts a function to GridReader.
type GridReaderFunc func(path string) (*Grid, error)

// ReadGrid calls f(path).
func (f GridReaderFunc) ReadGrid(path string) (*Grid, error) { return f(path) }

// Readers dispatches on the lower-cased file extension.
type Readers map[string]GridReader

// DefaultReaders reads ESRI ASCII grids.
func DefaultReaders() Readers {
	return Readers{".asc": GridReaderFunc(ReadASCIIGrid)}
}

// ReadGrid picks the reader registered for the file extension.
func (r Readers) ReadGrid(path string) (*Grid, error) {
	ext := strings.ToLower(filepath.Ext(path))
	reader, ok := r[ext]
	if !ok {
		return nil, fmt.Errorf("raster %s: no reader for %q", path, ext)
	}
	return reader.ReadGrid(path)
}

// Layer pairs an output column with its raster file.
type Layer struct {
	Column string
	Path   string
}

// Layers pairs raster paths with LayerColumns.
func Layers(paths []string) ([]Layer, error) {
	if len(paths) != len(LayerColumns) {
		return nil, fmt.Errorf("%d rasters for %d suitability layers: %w", len(paths), len(LayerColumns), ErrShapeMismatch)
	}
	out := make([]Layer, len(paths))
	for i, p := range paths {
		out[i] = Layer{Column: LayerColumns[i], Path: p}
	}
	return out, nil
}

// Options tunes the zonal statistics.
type Options struct {
	NoData   float64
	MaxValid float64
	// BlockGroups keys rows by block group GEOID and adds tract and block
	// group labels.
	BlockGroups bool
	// RasterCRS overrides the CRS declared by the raster files.
	RasterCRS string
}

// DefaultOptions uses the -9999 nodata sentinel and drops cells above 101.
func DefaultOptions() Options {
	return Options{NoData: DefaultNoData, MaxValid: DefaultMaxValid}
}

// Processor computes per-polygon means of every suitability layer.
type Processor struct {
	reader GridReader
	opts   Options
	logger *slog.Logger
}

// NewProcessor creates a suitability processor.
func NewProcessor(reader GridReader, opts Options, logger *slog.Logger) *Processor {
	return &Processor{reader: reader, opts: opts, logger: logger}
}

// Process reads each layer, masks it, reprojects the boundaries into the
// raster CRS when they differ and stores the zonal means, one row per
// boundary. ref, when non-nil, maps boundaries to canonical county keys.
func (p *Processor) Process(ctx context.Context, layers []Layer, boundaries []Boundary, boundaryCRS string, ref *domain.Reference) (*domain.Table, error) {
	name := "suitability"
	if p.opts.BlockGroups {
		name = "suitability_block_groups"
	}
	columns := make([]string, len(layers))
	for i, l := range layers {
		columns[i] = l.Column
	}
	t := domain.NewTable(name, columns...)
	if p.opts.BlockGroups {
		t.AddLabel(domain.ColGEOID)
		t.AddLabel(ColTract)
		t.AddLabel(ColBlockGroup)
	}

	keys := make([]domain.Key, len(boundaries))
	polygons := make([]geom.Polygonal, len(boundaries))
	for i, b := range boundaries {
		keys[i] = p.key(b, ref)
		if err := t.Insert(keys[i]); err != nil {
			return nil, err
		}
		if p.opts.BlockGroups {
			b.deriveCodes()
			t.SetLabel(keys[i], domain.ColGEOID, b.GEOID)
			t.SetLabel(keys[i], ColTract, b.Tract)
			t.SetLabel(keys[i], ColBlockGroup, b.BlockGroup)
		}
		polygons[i] = b.Geom
	}

	projected := make(map[string][]geom.Polygonal)
	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		grid, err := p.reader.ReadGrid(layer.Path)
		if err != nil {
			return nil, fmt.Errorf("read layer %s: %w", layer.Column, err)
		}
		if p.opts.RasterCRS != "" {
			grid.CRS = p.opts.RasterCRS
		}

		polys, ok := projected[grid.CRS]
		if !ok {
			polys, err = Reproject(polygons, boundaryCRS, grid.CRS)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", layer.Column, err)
			}
			projected[grid.CRS] = polys
		}

		means, err := ZonalMean(ctx, Mask(grid, p.opts.NoData, p.opts.MaxValid), polys, p.opts.NoData)
		if err != nil {
			return nil, fmt.Errorf("zonal mean %s: %w", layer.Column, err)
		}
		for i, m := range means {
			t.Set(keys[i], layer.Column, m)
		}
		p.logger.Info("suitability layer processed",
			"layer", layer.Column,
			"path", layer.Path,
			"polygons", len(polys),
			"cols", grid.Cols,
			"rows", grid.Rows,
		)
	}

	t.SortByKey()
	return t, nil
}

func (p *Processor) key(b Boundary, ref *domain.Reference) domain.Key {
	var k domain.Key
	resolved := false
	if ref != nil && len(b.GEOID) >= 5 {
		if code, err := domain.ParseFIPS(b.GEOID[:5]); err == nil {
			k, resolved = ref.KeyForFIPS(code)
		}
	}
	if !resolved {
		if ref != nil {
			k, _ = ref.Resolve(b.State, b.County)
		} else {
			k = domain.Key{State: domain.StateName(b.State), County: b.County}
		}
	}
	if p.opts.BlockGroups {
		k.Zone = b.GEOID
	}
	return k
}
