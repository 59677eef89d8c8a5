package raster

import (
	"context"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

type zone struct {
	geom.Polygonal
	index int
}

// ZonalMean averages, for every polygon, the valid cells whose footprint
// overlaps the polygon with positive area. Cells equal to nodata are
// ignored. Polygons touching no valid cell get NaN.
//
// Polygons are held in an R-tree and the grid is scanned once over the
// window covering all of them, so cost grows with the covered raster area
// rather than with the polygon count.
func ZonalMean(ctx context.Context, g *Grid, polygons []geom.Polygonal, nodata float64) ([]float64, error) {
	sums := make([]float64, len(polygons))
	counts := make([]int, len(polygons))

	index := rtree.NewTree(25, 50)
	var extent *geom.Bounds
	for i, p := range polygons {
		if p == nil {
			continue
		}
		index.Insert(&zone{Polygonal: p, index: i})
		extent = extend(extent, p.Bounds())
	}

	if extent != nil {
		if r0, r1, c0, c1, ok := g.window(extent); ok {
			for row := r0; row < r1; row++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				for col := c0; col < c1; col++ {
					v := g.At(row, col)
					if v == nodata || math.IsNaN(v) {
						continue
					}
					cell := g.Cell(row, col)
					for _, hit := range index.SearchIntersect(cell) {
						z := hit.(*zone)
						isect := z.Intersection(cell)
						if isect == nil || isect.Area() <= 0 {
							continue
						}
						sums[z.index] += v
						counts[z.index]++
					}
				}
			}
		}
	}

	out := make([]float64, len(polygons))
	for i := range out {
		if counts[i] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sums[i] / float64(counts[i])
	}
	return out, nil
}

func extend(a, b *geom.Bounds) *geom.Bounds {
	if a == nil {
		return &geom.Bounds{Min: b.Min, Max: b.Max}
	}
	a.Min.X, a.Min.Y = math.Min(a.Min.X, b.Min.X), math.Min(a.Min.Y, b.Min.Y)
	a.Max.X, a.Max.Y = math.Max(a.Max.X, b.Max.X), math.Max(a.Max.Y, b.Max.Y)
	return a
}
