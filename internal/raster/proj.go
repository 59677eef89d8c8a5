package raster

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Reproject transforms polygons from one coordinate system to another. An
// empty or identical definition on either side returns the input unchanged.
func Reproject(polygons []geom.Polygonal, from, to string) ([]geom.Polygonal, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" || from == to {
		return polygons, nil
	}
	src, err := proj.Parse(from)
	if err != nil {
		return nil, fmt.Errorf("parse source crs: %w", err)
	}
	dst, err := proj.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("parse raster crs: %w", err)
	}
	tr, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("build crs transform: %w", err)
	}

	out := make([]geom.Polygonal, len(polygons))
	for i, p := range polygons {
		if p == nil {
			continue
		}
		t, err := p.Transform(tr)
		if err != nil {
			return nil, fmt.Errorf("reproject polygon %d: %w", i, err)
		}
		poly, ok := t.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("reproject polygon %d: got %T", i, t)
		}
		out[i] = poly
	}
	return out, nil
}
