package dataset

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Race output columns. DEC folds "some other race" and two-race
// respondents into Others, ACS into Other.
const (
	ColHispanic       = "Hispanic/Latino"
	ColWhite          = "White"
	ColBlack          = "Black/African American"
	ColNativeAmerican = "American Indian/Alaska Native"
	ColAsian          = "Asian"
	ColPacific        = "Native Hawaiian/Other Pacific Islander"
	ColOthers         = "Others"
	ColOther          = "Other"
)

const (
	decTotal     = "Total"
	decHispanic  = "Total!!Hispanic or Latino"
	decOneRace   = "Population of one race:!"
	decTwoRaces  = "Total:!!Population of two or more races:!!Population of two races:"
	acsTotal     = "Total:"
	acsSomeOther = "Some other race alone"
	acsTwoOrMore = "Two or more races:"
)

var decNames = map[string]string{
	"Total!!Hispanic or Latino":                                                         ColHispanic,
	"Total:!!Population of one race:!!White alone":                                      ColWhite,
	"Total:!!Population of one race:!!Black or African American alone":                  ColBlack,
	"Total:!!Population of one race:!!American Indian and Alaska Native alone":          ColNativeAmerican,
	"Total:!!Population of one race:!!Asian alone":                                      ColAsian,
	"Total:!!Population of one race:!!Native Hawaiian and Other Pacific Islander alone": ColPacific,
	"Total:!!Population of one race:!!Some Other Race alone":                            ColOthers,
}

var acsNames = map[string]string{
	"White alone":                                      ColWhite,
	"Black or African American alone":                  ColBlack,
	"American Indian and Alaska Native alone":          ColNativeAmerican,
	"Asian alone":                                      ColAsian,
	"Native Hawaiian and Other Pacific Islander alone": ColPacific,
}

// LoadRace dispatches on the census product.
func LoadRace(src domain.RaceSource, p Paths, ref *domain.Reference) (*domain.Table, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if src == domain.RaceACS {
		path, err := p.Path(SourceRaceACS)
		if err != nil {
			return nil, err
		}
		return LoadRaceACS(path, ref)
	}
	path, err := p.Path(SourceRaceDEC)
	if err != nil {
		return nil, err
	}
	return LoadRaceDEC(path, ref)
}

// decHeader reduces a DEC P9 label such as
// " !!Total:!!Not Hispanic or Latino:!!Population of one race:!!Asian alone"
// to "Total:!!Population of one race:!!Asian alone".
func decHeader(h string) string {
	h = strings.ReplaceAll(h, "!!Total:", "Total")
	h = strings.ReplaceAll(h, "!!Not Hispanic or Latino", "")
	return strings.TrimSpace(h)
}

// LoadRaceDEC reads the 2020 decennial P9 table (Hispanic or Latino, and not
// Hispanic or Latino by race) as shares of the county total.
func LoadRaceDEC(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCensusCSV(string(SourceRaceDEC), path)
	if err != nil {
		return nil, err
	}
	cleaned := make([]string, len(f.header))
	for i, h := range f.header {
		cleaned[i] = decHeader(h)
	}
	f = newFrame(f.name, cleaned, f.rows)

	idx, err := f.cols(decTotal, decHispanic, decTwoRaces)
	if err != nil {
		return nil, err
	}
	shares := []string{decHispanic}
	shares = append(shares, f.columnsWhere(func(h string) bool { return strings.Contains(h, decOneRace) })...)

	names := make([]string, len(shares))
	for i, s := range shares {
		names[i] = s
		if n, ok := decNames[s]; ok {
			names[i] = n
		}
	}

	t := domain.NewTable("race_dec", names...)
	t.AddColumn(ColOthers)
	err = censusRows(f, ref, func(k domain.Key, row []string) {
		total := domain.ParseNumber(cell(row, idx[0]))
		for i, s := range shares {
			t.Set(k, names[i], domain.Ratio(domain.ParseNumber(cell(row, f.idx[s])), total))
		}
		others, _ := t.Value(k, ColOthers)
		twoRaces := domain.Ratio(domain.ParseNumber(cell(row, idx[2])), total)
		t.Set(k, ColOthers, others+twoRaces)
	})
	if err != nil {
		return nil, err
	}
	t.SortByKey()
	return t, nil
}

// LoadRaceACS reads the ACS B02001 race table as shares of the county
// total. "Some other race" and "two or more races" are combined into Other.
func LoadRaceACS(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCensusCSV(string(SourceRaceACS), path)
	if err != nil {
		return nil, err
	}
	estimates := f.columnsWhere(func(h string) bool { return strings.Contains(h, "Estimate") })
	// The two trailing estimates split two-race respondents further.
	if len(estimates) > 2 {
		estimates = estimates[:len(estimates)-2]
	}
	cleaned := make(map[string]int, len(estimates))
	for _, e := range estimates {
		name := strings.ReplaceAll(strings.ReplaceAll(e, "Estimate!!", ""), "Total:!!", "")
		cleaned[name] = f.idx[e]
	}
	for _, req := range []string{acsTotal, acsSomeOther, acsTwoOrMore} {
		if _, ok := cleaned[req]; !ok {
			return nil, fmt.Errorf("%s: column %q: %w", f.name, req, domain.ErrMissingColumn)
		}
	}

	var shares, names []string
	for _, e := range estimates {
		name := strings.ReplaceAll(strings.ReplaceAll(e, "Estimate!!", ""), "Total:!!", "")
		if name == acsTotal || name == acsSomeOther || name == acsTwoOrMore {
			continue
		}
		shares = append(shares, name)
		if n, ok := acsNames[name]; ok {
			name = n
		}
		names = append(names, name)
	}

	t := domain.NewTable("race_acs", append(names, ColOther)...)
	err = censusRows(f, ref, func(k domain.Key, row []string) {
		total := domain.ParseNumber(cell(row, cleaned[acsTotal]))
		for i, s := range shares {
			t.Set(k, names[i], domain.Ratio(domain.ParseNumber(cell(row, cleaned[s])), total))
		}
		other := domain.ParseNumber(cell(row, cleaned[acsSomeOther])) + domain.ParseNumber(cell(row, cleaned[acsTwoOrMore]))
		t.Set(k, ColOther, domain.Ratio(other, total))
	})
	if err != nil {
		return nil, err
	}
	t.SortByKey()
	return t, nil
}
