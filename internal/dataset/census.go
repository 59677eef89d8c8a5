package dataset

import (
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

const colGeography = "Geography"

// censusRows calls fn for every row whose GEO_ID resolves to a county of the
// FIPS lookup. Rows of other summary levels are skipped.
func censusRows(f *frame, ref *domain.Reference, fn func(k domain.Key, row []string)) error {
	geo, err := f.col(colGeography)
	if err != nil {
		return err
	}
	for _, row := range f.rows {
		code, err := domain.ParseGeography(cell(row, geo))
		if err != nil {
			continue
		}
		k, ok := ref.KeyForFIPS(code)
		if !ok {
			continue
		}
		fn(k, row)
	}
	return nil
}

// censusTable copies the named source columns into a new table under their
// output names. mapping is ordered as source, output pairs.
func censusTable(name string, f *frame, ref *domain.Reference, mapping [][2]string) (*domain.Table, error) {
	src := make([]string, len(mapping))
	outCols := make([]string, len(mapping))
	for i, m := range mapping {
		src[i], outCols[i] = m[0], m[1]
	}
	idx, err := f.cols(src...)
	if err != nil {
		return nil, err
	}

	t := domain.NewTable(name, outCols...)
	err = censusRows(f, ref, func(k domain.Key, row []string) {
		for i, c := range idx {
			t.Set(k, outCols[i], domain.ParseNumber(cell(row, c)))
		}
	})
	if err != nil {
		return nil, err
	}
	t.SortByKey()
	return t, nil
}
