package dataset

import (
	"fmt"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// LoadFIPS reads the FIPS lookup table (State, County Name, FIPS State,
// FIPS County). Codes are kept as zero-padded strings.
func LoadFIPS(path string) ([]domain.FIPSEntry, error) {
	f, err := readCSV(string(SourceFIPS), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols(domain.ColState, domain.ColCounty, domain.ColFIPSState, domain.ColFIPSCounty)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FIPSEntry, 0, len(f.rows))
	for _, row := range f.rows {
		code, err := domain.NewFIPS(cell(row, idx[2]), cell(row, idx[3]))
		if err != nil {
			// State-level rows carry no county code.
			continue
		}
		out = append(out, domain.FIPSEntry{
			Key:  domain.Key{State: cell(row, idx[0]), County: cell(row, idx[1])},
			FIPS: code,
		})
	}
	return out, nil
}

// LoadBoundingBoxes reads the canonical county table with its areas.
func LoadBoundingBoxes(path string) ([]domain.BoundingBox, error) {
	f, err := readCSV(string(SourceBoundingBoxes), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols(domain.ColState, domain.ColCounty, domain.ColFIPSState, domain.ColFIPSCounty, domain.ColAreaMi2)
	if err != nil {
		return nil, err
	}
	geoid, errGeoid := f.col(domain.ColGEOID)
	km2, errKm2 := f.col(domain.ColAreaKm2)

	out := make([]domain.BoundingBox, 0, len(f.rows))
	for i, row := range f.rows {
		code, err := domain.NewFIPS(cell(row, idx[2]), cell(row, idx[3]))
		if err != nil {
			return nil, fmt.Errorf("bounding boxes row %d: %w", i+2, err)
		}
		b := domain.BoundingBox{
			Key:     domain.Key{State: cell(row, idx[0]), County: cell(row, idx[1])},
			FIPS:    code,
			GEOID:   code.String(),
			AreaMi2: domain.ParseNumber(cell(row, idx[4])),
		}
		if errGeoid == nil {
			b.GEOID = cell(row, geoid)
		}
		if errKm2 == nil {
			b.AreaKm2 = domain.ParseNumber(cell(row, km2))
		} else {
			b.AreaKm2 = b.AreaMi2 * 2.589988110336
		}
		out = append(out, b)
	}
	return out, nil
}

// LoadReference reads the FIPS lookup and bounding boxes.
func LoadReference(p Paths) (*domain.Reference, error) {
	fipsPath, err := p.Path(SourceFIPS)
	if err != nil {
		return nil, err
	}
	bbPath, err := p.Path(SourceBoundingBoxes)
	if err != nil {
		return nil, err
	}
	lookup, err := LoadFIPS(fipsPath)
	if err != nil {
		return nil, err
	}
	boxes, err := LoadBoundingBoxes(bbPath)
	if err != nil {
		return nil, err
	}
	return domain.NewReference(lookup, boxes), nil
}

// resolveBox resolves a state and county name to a key that has a bounding
// box, the equivalent of an inner join on the bounding-box table.
func resolveBox(ref *domain.Reference, state, county string) (domain.Key, bool) {
	k, ok := ref.Resolve(state, county)
	if !ok {
		return k, false
	}
	if _, ok := ref.Box(k); !ok {
		return k, false
	}
	return k, true
}

