package dataset

import (
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// ColPrivateSchools counts private schools per county.
const ColPrivateSchools = "No. of Private Schools"

// LoadPrivateSchools counts NCES private school survey records per county.
// CNTY holds the five-digit county code; its last three digits are the
// county part.
func LoadPrivateSchools(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCSV(string(SourcePrivateSchools), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("NAME", "STFIP", "CNTY")
	if err != nil {
		return nil, err
	}

	agg := domain.NewAggregator(ColPrivateSchools)
	for _, row := range f.rows {
		cnty := cell(row, idx[2])
		if len(cnty) < 3 {
			continue
		}
		code, err := domain.NewFIPS(cell(row, idx[1]), cnty[len(cnty)-3:])
		if err != nil {
			continue
		}
		k, ok := ref.KeyForFIPS(code)
		if !ok {
			continue
		}
		agg.Add(k, 1)
	}

	t := domain.NewTable("private_schools", ColPrivateSchools)
	for _, k := range agg.Keys() {
		t.Set(k, ColPrivateSchools, agg.Count(k, ColPrivateSchools))
	}
	t.SortByKey()
	return t, nil
}
