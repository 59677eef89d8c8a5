package raster

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadASCIIGrid reads an ESRI ASCII grid (.asc). Cells equal to the
// header's NODATA_value become NaN. A sidecar .prj next to the file, when
// present, provides the CRS.
func ReadASCIIGrid(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ascii grid: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)

	header := make(map[string]float64)
	var first string
	for sc.Scan() {
		word := sc.Text()
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			first = word
			break
		}
		if !sc.Scan() {
			break
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid header %s: %w", word, err)
		}
		header[strings.ToLower(word)] = v
	}

	cols, rows := int(header["ncols"]), int(header["nrows"])
	cellsize, ok := header["cellsize"]
	if !ok || cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("ascii grid %s: ncols, nrows and cellsize are required", path)
	}
	x0, y0 := header["xllcorner"], header["yllcorner"]
	if _, center := header["xllcenter"]; center {
		x0 = header["xllcenter"] - cellsize/2
	}
	if _, center := header["yllcenter"]; center {
		y0 = header["yllcenter"] - cellsize/2
	}
	nodata, hasNoData := header["nodata_value"]

	values := make([]float64, 0, cols*rows)
	parse := func(word string) error {
		v, err := strconv.ParseFloat(word, 64)
		if err != nil {
			return fmt.Errorf("ascii grid value %q: %w", word, err)
		}
		if hasNoData && v == nodata {
			v = math.NaN()
		}
		values = append(values, v)
		return nil
	}
	if first != "" {
		if err := parse(first); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ascii grid: %w", err)
	}

	g, err := NewGrid(cols, rows, x0, y0+float64(rows)*cellsize, cellsize, cellsize, values)
	if err != nil {
		return nil, fmt.Errorf("ascii grid %s: %w", path, err)
	}
	g.CRS = readPrj(path)
	return g, nil
}

// readPrj returns the contents of the .prj sidecar of path, or "".
func readPrj(path string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	b, err := os.ReadFile(base + ".prj")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
