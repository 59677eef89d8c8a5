// Package netcdf reads regular latitude/longitude rasters from NetCDF files.
package netcdf

import (
	"fmt"
	"math"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/couchcryptid/county-features-etl/internal/raster"
)

// WGS84 is the CRS of lat/lon NetCDF grids.
const WGS84 = "+proj=longlat +datum=WGS84 +no_defs"

// Reader loads one variable of a NetCDF file as a raster.Grid.
// It implements raster.GridReader.
type Reader struct {
	Variable string
	Lat      string
	Lon      string
}

// NewReader reads variable over the conventional "lat" and "lon" axes.
func NewReader(variable string) *Reader {
	return &Reader{Variable: variable, Lat: "lat", Lon: "lon"}
}

// ReadGrid reads the coordinate axes and the first lat x lon slice of the
// variable. Cell centres are assumed evenly spaced; rows are flipped when
// latitude ascends so the grid is north-up.
func (r *Reader) ReadGrid(path string) (*raster.Grid, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("open netcdf %s: %w", path, err)
	}
	defer ds.Close()

	lat, err := readVar(ds, r.Lat)
	if err != nil {
		return nil, err
	}
	lon, err := readVar(ds, r.Lon)
	if err != nil {
		return nil, err
	}
	if len(lat) < 2 || len(lon) < 2 {
		return nil, fmt.Errorf("netcdf %s: %dx%d axes: %w", path, len(lat), len(lon), raster.ErrShapeMismatch)
	}
	values, err := readVar(ds, r.Variable)
	if err != nil {
		return nil, err
	}
	rows, cols := len(lat), len(lon)
	if len(values) < rows*cols {
		return nil, fmt.Errorf("netcdf %s: %s holds %d values for %dx%d: %w",
			path, r.Variable, len(values), rows, cols, raster.ErrShapeMismatch)
	}
	values = values[:rows*cols]

	dx := lon[1] - lon[0]
	dy := lat[1] - lat[0]
	north := lat[0]
	if dy > 0 {
		flipRows(values, rows, cols)
		north = lat[rows-1]
	} else {
		dy = -dy
	}

	g, err := raster.NewGrid(cols, rows, lon[0]-dx/2, north+dy/2, dx, dy, values)
	if err != nil {
		return nil, fmt.Errorf("netcdf %s: %w", path, err)
	}
	g.CRS = WGS84
	return g, nil
}

func readVar(ds netcdf.Dataset, name string) ([]float64, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, fmt.Errorf("netcdf variable %s: %w", name, err)
	}
	n, err := v.Len()
	if err != nil {
		return nil, fmt.Errorf("netcdf variable %s length: %w", name, err)
	}
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("netcdf variable %s type: %w", name, err)
	}

	out := make([]float64, n)
	switch t {
	case netcdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, fmt.Errorf("read netcdf variable %s: %w", name, err)
		}
	case netcdf.FLOAT:
		buf := make([]float32, n)
		if err := v.ReadFloat32s(buf); err != nil {
			return nil, fmt.Errorf("read netcdf variable %s: %w", name, err)
		}
		for i, f := range buf {
			out[i] = float64(f)
		}
	default:
		return nil, fmt.Errorf("netcdf variable %s: unsupported type %v", name, t)
	}
	for i, f := range out {
		if math.IsInf(f, 0) {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

func flipRows(values []float64, rows, cols int) {
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := values[top*cols : (top+1)*cols]
		b := values[bottom*cols : (bottom+1)*cols]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}
