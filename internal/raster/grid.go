// Package raster computes zonal statistics of regular raster grids over
// county and block-group polygons.
package raster

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// ErrShapeMismatch is returned when a grid's values do not fill its
// declared rows and columns, or layer and column lists differ in length.
var ErrShapeMismatch = errors.New("shape mismatch")

// Grid is a north-up raster: row 0 is the northern edge, values are stored
// row-major. Missing cells hold NaN until Mask replaces them.
type Grid struct {
	Cols, Rows int
	// X0, Y0 is the top-left corner.
	X0, Y0 float64
	// DX, DY are the cell width and height, both positive.
	DX, DY float64
	Values []float64
	// CRS is a proj4 or WKT definition; empty means unknown.
	CRS string
}

// NewGrid validates the shape of a grid.
func NewGrid(cols, rows int, x0, y0, dx, dy float64, values []float64) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("grid %dx%d: %w", cols, rows, ErrShapeMismatch)
	}
	if len(values) != cols*rows {
		return nil, fmt.Errorf("grid %dx%d holds %d values: %w", cols, rows, len(values), ErrShapeMismatch)
	}
	if dx <= 0 || dy <= 0 {
		return nil, fmt.Errorf("grid cell size %gx%g must be positive", dx, dy)
	}
	return &Grid{Cols: cols, Rows: rows, X0: x0, Y0: y0, DX: dx, DY: dy, Values: values}, nil
}

// At returns the value of a cell.
func (g *Grid) At(row, col int) float64 {
	return g.Values[row*g.Cols+col]
}

// Cell returns the footprint of a cell.
func (g *Grid) Cell(row, col int) *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0 + float64(col)*g.DX, Y: g.Y0 - float64(row+1)*g.DY},
		Max: geom.Point{X: g.X0 + float64(col+1)*g.DX, Y: g.Y0 - float64(row)*g.DY},
	}
}

// Bounds returns the extent of the grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.X0, Y: g.Y0 - float64(g.Rows)*g.DY},
		Max: geom.Point{X: g.X0 + float64(g.Cols)*g.DX, Y: g.Y0},
	}
}

// window returns the row and column range of cells overlapping b, clamped
// to the grid. ok is false when b lies outside the grid.
func (g *Grid) window(b *geom.Bounds) (r0, r1, c0, c1 int, ok bool) {
	c0 = int(math.Floor((b.Min.X - g.X0) / g.DX))
	c1 = int(math.Ceil((b.Max.X - g.X0) / g.DX))
	r0 = int(math.Floor((g.Y0 - b.Max.Y) / g.DY))
	r1 = int(math.Ceil((g.Y0 - b.Min.Y) / g.DY))
	c0, c1 = max(c0, 0), min(c1, g.Cols)
	r0, r1 = max(r0, 0), min(r1, g.Rows)
	return r0, r1, c0, c1, r0 < r1 && c0 < c1
}

// Mask returns a copy of the grid with NaN cells and cells above maxValid
// replaced by nodata.
func Mask(g *Grid, nodata, maxValid float64) *Grid {
	out := *g
	out.Values = make([]float64, len(g.Values))
	for i, v := range g.Values {
		if math.IsNaN(v) || v > maxValid {
			v = nodata
		}
		out.Values[i] = v
	}
	return &out
}
