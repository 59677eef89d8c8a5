package dataset

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ctessum/geom/encoding/shp"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Wind output columns.
const (
	ColWindCapacity    = "Wind Capacity Intensity (MW / 1000 sq mile)"
	ColWindProjects    = "Wind Project Intensity (Projects / 1000 sq mile)"
	ColWindAvgCapacity = "Wind Avg Capacity Intensity (MW / 1000 sq mile)"
)

// WindPlant is one generator record of the EIA plant power layer.
type WindPlant struct {
	State     string
	County    string
	MW        float64
	PlantCode string
}

var windFields = []string{"county", "statename", "wind_mw", "plant_code"}

// LoadWind reads wind plants from the EIA shapefile (or a CSV export with the
// same attribute columns) and returns capacity and project intensities per
// 1000 square miles.
func LoadWind(path string, ref *domain.Reference) (*domain.Table, error) {
	var plants []WindPlant
	var err error
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		plants, err = readWindShapefile(path)
	} else {
		plants, err = readWindCSV(path)
	}
	if err != nil {
		return nil, err
	}
	return WindTable(plants, ref), nil
}

func readWindShapefile(path string) ([]WindPlant, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return nil, fmt.Errorf("open wind shapefile: %w", err)
	}
	defer d.Close()

	var plants []WindPlant
	for {
		_, fields, more := d.DecodeRowFields(windFields...)
		if !more {
			break
		}
		plants = append(plants, WindPlant{
			County:    shpField(fields["county"]),
			State:     shpField(fields["statename"]),
			MW:        domain.ParseNumber(shpField(fields["wind_mw"])),
			PlantCode: shpField(fields["plant_code"]),
		})
	}
	if err := d.Error(); err != nil {
		return nil, fmt.Errorf("decode wind shapefile: %w", err)
	}
	return plants, nil
}

// shpField strips the NUL and space padding of dBASE attribute values.
func shpField(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

func readWindCSV(path string) ([]WindPlant, error) {
	f, err := readCSV(string(SourceWind), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols(windFields...)
	if err != nil {
		return nil, err
	}
	plants := make([]WindPlant, 0, len(f.rows))
	for _, row := range f.rows {
		plants = append(plants, WindPlant{
			County:    cell(row, idx[0]),
			State:     cell(row, idx[1]),
			MW:        domain.ParseNumber(cell(row, idx[2])),
			PlantCode: cell(row, idx[3]),
		})
	}
	return plants, nil
}

// WindTable groups plants by county and normalises total capacity, project
// count and average capacity by county area.
func WindTable(plants []WindPlant, ref *domain.Reference) *domain.Table {
	agg := domain.NewAggregator("mw", "plants")
	for _, p := range plants {
		k, _ := ref.Resolve(p.State, p.County)
		hasCode := math.NaN()
		if p.PlantCode != "" {
			hasCode = 1
		}
		agg.Add(k, p.MW, hasCode)
	}

	t := domain.NewTable("wind", ColWindCapacity, ColWindProjects, ColWindAvgCapacity)
	for _, k := range agg.Keys() {
		area := ref.Area(k)
		avg := agg.Mean(k, "mw")
		if math.IsNaN(avg) {
			avg = 0
		}
		t.Set(k, ColWindCapacity, domain.PerArea(agg.Sum(k, "mw"), area, perThousandSqMiles))
		t.Set(k, ColWindProjects, domain.PerArea(agg.Count(k, "plants"), area, perThousandSqMiles))
		t.Set(k, ColWindAvgCapacity, domain.PerArea(avg, area, perThousandSqMiles))
	}
	t.SortByKey()
	return t
}
