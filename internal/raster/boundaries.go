package raster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/encoding/wkb"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// BoundaryFields names the attribute columns of a boundary layer. Empty
// optional names are not read.
type BoundaryFields struct {
	State      string
	County     string
	GEOID      string
	Tract      string
	BlockGroup string
}

// CountyFields are the attribute names of the county bounding-box layer.
func CountyFields() BoundaryFields {
	return BoundaryFields{State: "State", County: "County Name", GEOID: "GEOID"}
}

// BlockGroupFields adds the tract and block group codes of TIGER block
// group layers.
func BlockGroupFields() BoundaryFields {
	f := CountyFields()
	f.Tract = "TRACTCE"
	f.BlockGroup = "BLKGRPCE"
	return f
}

func (f BoundaryFields) names() []string {
	var out []string
	for _, n := range []string{f.State, f.County, f.GEOID, f.Tract, f.BlockGroup} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// available returns the configured attribute names the layer carries. The
// state and county columns are required; the others are skipped when absent
// since quoting an unknown identifier makes SQLite return it as a literal.
func (f BoundaryFields) available(has func(string) bool) ([]string, error) {
	for _, required := range []string{f.State, f.County} {
		if required != "" && !has(required) {
			return nil, fmt.Errorf("column %q: %w", required, domain.ErrMissingColumn)
		}
	}
	var out []string
	for _, n := range f.names() {
		if has(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// Boundary is one polygon of a boundary layer with its attributes.
type Boundary struct {
	State      string
	County     string
	GEOID      string
	Tract      string
	BlockGroup string
	Geom       geom.Polygonal
}

func (f BoundaryFields) boundary(attrs map[string]string, g geom.Polygonal) Boundary {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return strings.TrimSpace(strings.ReplaceAll(attrs[name], "\x00", ""))
	}
	b := Boundary{
		State:      get(f.State),
		County:     get(f.County),
		GEOID:      get(f.GEOID),
		Tract:      get(f.Tract),
		BlockGroup: get(f.BlockGroup),
		Geom:       g,
	}
	b.deriveCodes()
	return b
}

// deriveCodes fills the tract and block group codes from a 12-digit block
// group GEOID (SSCCCTTTTTTB) when the layer does not carry them.
func (b *Boundary) deriveCodes() {
	if len(b.GEOID) != 12 {
		return
	}
	if b.Tract == "" {
		b.Tract = b.GEOID[5:11]
	}
	if b.BlockGroup == "" {
		b.BlockGroup = b.GEOID[11:]
	}
}

// ReadBoundaries reads polygons and attributes from a GeoPackage (.gpkg) or
// shapefile (.shp). It returns the layer's CRS definition, or "" when the
// file does not declare one.
func ReadBoundaries(ctx context.Context, path string, fields BoundaryFields) ([]Boundary, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpkg":
		return readGeoPackage(ctx, path, fields)
	case ".shp":
		return readShapefile(path, fields)
	default:
		return nil, "", fmt.Errorf("boundaries %s: unsupported format", path)
	}
}

func readShapefile(path string, fields BoundaryFields) ([]Boundary, string, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, "", fmt.Errorf("open boundary shapefile: %w", err)
	}
	defer d.Close()

	present := make(map[string]bool)
	for _, f := range d.Fields() {
		present[strings.ToLower(strings.TrimRight(string(f.Name[:]), "\x00 "))] = true
	}
	names, err := fields.available(func(n string) bool { return present[strings.ToLower(n)] })
	if err != nil {
		return nil, "", fmt.Errorf("boundary shapefile %s: %w", path, err)
	}

	var out []Boundary
	for {
		g, attrs, more := d.DecodeRowFields(names...)
		if !more {
			break
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			continue
		}
		out = append(out, fields.boundary(attrs, poly))
	}
	if err := d.Error(); err != nil {
		return nil, "", fmt.Errorf("decode boundary shapefile: %w", err)
	}
	return out, readPrj(path), nil
}

func readGeoPackage(ctx context.Context, path string, fields BoundaryFields) ([]Boundary, string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, "", fmt.Errorf("open geopackage: %w", err)
	}
	defer db.Close()

	var table string
	err = db.QueryRowContext(ctx,
		"SELECT table_name FROM gpkg_contents WHERE data_type = 'features' LIMIT 1").Scan(&table)
	if err != nil {
		return nil, "", fmt.Errorf("find geopackage feature table: %w", err)
	}

	var geomColumn string
	var srsID int64
	err = db.QueryRowContext(ctx,
		"SELECT column_name, srs_id FROM gpkg_geometry_columns WHERE table_name = ?", table).Scan(&geomColumn, &srsID)
	if err != nil {
		return nil, "", fmt.Errorf("find geopackage geometry column: %w", err)
	}

	var crs sql.NullString
	err = db.QueryRowContext(ctx,
		"SELECT definition FROM gpkg_spatial_ref_sys WHERE srs_id = ?", srsID).Scan(&crs)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("read geopackage srs: %w", err)
	}
	definition := strings.TrimSpace(crs.String)
	if definition == "undefined" {
		definition = ""
	}

	present, err := tableColumns(ctx, db, table)
	if err != nil {
		return nil, "", err
	}
	if !present[geomColumn] {
		return nil, "", fmt.Errorf("geopackage layer %s: column %q: %w", table, geomColumn, domain.ErrMissingColumn)
	}
	names, err := fields.available(func(n string) bool { return present[n] })
	if err != nil {
		return nil, "", fmt.Errorf("geopackage layer %s: %w", table, err)
	}
	cols := make([]string, 0, len(names)+1)
	cols = append(cols, quoteIdent(geomColumn))
	for _, n := range names {
		cols = append(cols, quoteIdent(n))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quoteIdent(table))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, "", fmt.Errorf("query geopackage features: %w", err)
	}
	defer rows.Close()

	var out []Boundary
	for rows.Next() {
		var blob []byte
		values := make([]sql.NullString, len(names))
		dest := make([]any, 0, len(names)+1)
		dest = append(dest, &blob)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, "", fmt.Errorf("scan geopackage feature: %w", err)
		}
		g, err := wkb.Decode(stripGPHeader(blob))
		if err != nil {
			return nil, "", fmt.Errorf("decode geopackage geometry: %w", err)
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(names))
		for i, n := range names {
			attrs[n] = values[i].String
		}
		out = append(out, fields.boundary(attrs, poly))
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("read geopackage features: %w", err)
	}
	return out, definition, nil
}

// stripGPHeader removes the GeoPackage binary header ("GP", version, flags,
// srs_id and an optional envelope) in front of the WKB geometry.
func stripGPHeader(b []byte) []byte {
	if len(b) < 8 || b[0] != 'G' || b[1] != 'P' {
		return b
	}
	size := 8
	switch (b[3] >> 1) & 0x07 {
	case 1:
		size += 32
	case 2, 3:
		size += 48
	case 4:
		size += 64
	}
	if size > len(b) {
		return b[len(b):]
	}
	return b[size:]
}

// tableColumns lists the column names of a GeoPackage layer.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, fmt.Errorf("read geopackage layer columns: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan geopackage layer column: %w", err)
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read geopackage layer columns: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("geopackage layer %s: no columns", table)
	}
	return out, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
