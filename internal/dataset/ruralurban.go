package dataset

import (
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Rural/urban land area columns, as fractions of the county land area.
const (
	ColRuralArea = "Rural Area Percentage"
	ColUrbanArea = "Urban Area Percentage"
)

// LoadRuralUrban reads the 2020 census urban and rural land area shares
// ("45.3%") as fractions.
func LoadRuralUrban(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCSV(string(SourceRuralUrban), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("STATE", "COUNTY", "ALAND_PCT_RUR", "ALAND_PCT_URB")
	if err != nil {
		return nil, err
	}

	t := domain.NewTable("rural_urban", ColRuralArea, ColUrbanArea)
	for _, row := range f.rows {
		code, err := domain.NewFIPS(cell(row, idx[0]), cell(row, idx[1]))
		if err != nil {
			continue
		}
		k, ok := ref.KeyForFIPS(code)
		if !ok {
			continue
		}
		t.Set(k, ColRuralArea, domain.ParsePercent(cell(row, idx[2])))
		t.Set(k, ColUrbanArea, domain.ParsePercent(cell(row, idx[3])))
	}
	t.SortByKey()
	return t, nil
}
