package dataset

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// ColPopulation holds the 2022 county population estimate.
const ColPopulation = "Population Estimate"

const realGDPDescription = "Real GDP (thousands of chained 2017 dollars)"

// GDPYears are the BEA CAGDP columns carried into the feature table.
var GDPYears = []string{"2017", "2018", "2019", "2020", "2021", "2022"}

// GDPColumn names the per-capita GDP column for a year.
func GDPColumn(year string) string { return "GDP_" + year }

// LoadGDP reads real GDP per county, divides every year by the 2022
// population estimate and rounds to two decimals. Counties missing from the
// bounding boxes or the population file are dropped.
func LoadGDP(gdpPath, populationPath string, ref *domain.Reference) (*domain.Table, error) {
	pop, err := loadPopulation(populationPath)
	if err != nil {
		return nil, err
	}

	f, err := readCSV(string(SourceGDP), gdpPath)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols(append([]string{"GeoFIPS", "Description"}, GDPYears...)...)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(GDPYears)+1)
	for _, y := range GDPYears {
		cols = append(cols, GDPColumn(y))
	}
	cols = append(cols, ColPopulation)
	t := domain.NewTable("gdp", cols...)

	for _, row := range f.rows {
		if cell(row, idx[1]) != realGDPDescription {
			continue
		}
		code, err := gdpFIPS(cell(row, idx[0]))
		if err != nil {
			continue
		}
		box, ok := ref.BoxForFIPS(code)
		if !ok {
			continue
		}
		p, ok := pop[code]
		if !ok {
			continue
		}
		for i, y := range GDPYears {
			// BEA values are single precision in the published tables.
			v := float64(float32(domain.ParseNumber(cell(row, idx[2+i]))))
			t.Set(box.Key, GDPColumn(y), domain.Round(domain.Ratio(v, p), 2))
		}
		t.Set(box.Key, ColPopulation, p)
	}
	t.SortByKey()
	return t, nil
}

// gdpFIPS parses the quoted, space padded GeoFIPS code. The first two
// characters are the state and the rest the county.
func gdpFIPS(s string) (domain.FIPS, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), `"`, "")
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return domain.FIPS{}, fmt.Errorf("geofips %q: too short", s)
	}
	return domain.NewFIPS(s[:2], s[2:])
}

func loadPopulation(path string) (map[domain.FIPS]float64, error) {
	f, err := readCSV(string(SourcePopulation), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("STATE", "COUNTY", "POPESTIMATE2022")
	if err != nil {
		return nil, err
	}
	out := make(map[domain.FIPS]float64, len(f.rows))
	for _, row := range f.rows {
		code, err := domain.NewFIPS(cell(row, idx[0]), cell(row, idx[1]))
		if err != nil {
			continue
		}
		out[code] = domain.ParseNumber(cell(row, idx[2]))
	}
	return out, nil
}
