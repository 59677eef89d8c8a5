package dataset

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// VoteShareColumn names the vote share column of a party.
func VoteShareColumn(p domain.Party) string {
	return strings.ToLower(string(p)) + "_percentage_vote"
}

var partyLabels = map[string]domain.Party{
	"DEMOCRAT":    domain.PartyDemocrat,
	"REPUBLICAN":  domain.PartyRepublican,
	"GREEN":       domain.PartyGreen,
	"LIBERTARIAN": domain.PartyLibertarian,
}

// partyOf maps a MIT election lab party label to a selector. Every label
// outside the four named parties counts as Other.
func partyOf(label string) domain.Party {
	if p, ok := partyLabels[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return p
	}
	return domain.PartyOther
}

// LoadElection reads county presidential returns and returns one vote share
// table per party of the selection. candidatevotes and totalvotes are summed
// over every row of a (county, party) group, across years and vote modes,
// before the share is taken.
func LoadElection(path string, sel domain.Party, ref *domain.Reference) ([]*domain.Table, error) {
	parties, err := sel.Parties()
	if err != nil {
		return nil, err
	}
	f, err := readCSV(string(SourceElection), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("county_fips", "party", "candidatevotes", "totalvotes")
	if err != nil {
		return nil, err
	}

	const candidate, total = "candidatevotes", "totalvotes"
	votes := make(map[domain.Party]*domain.Aggregator)
	for _, row := range f.rows {
		code, err := domain.ParseFIPS(cell(row, idx[0]))
		if err != nil {
			continue
		}
		k, ok := ref.KeyForFIPS(code)
		if !ok {
			continue
		}
		p := partyOf(cell(row, idx[1]))
		agg, ok := votes[p]
		if !ok {
			agg = domain.NewAggregator(candidate, total)
			votes[p] = agg
		}
		agg.Add(k, domain.ParseNumber(cell(row, idx[2])), domain.ParseNumber(cell(row, idx[3])))
	}

	tables := make([]*domain.Table, 0, len(parties))
	for _, p := range parties {
		col := VoteShareColumn(p)
		t := domain.NewTable(fmt.Sprintf("election_%s", strings.ToLower(string(p))), col)
		if agg, ok := votes[p]; ok {
			for _, k := range agg.Keys() {
				t.Set(k, col, domain.Ratio(agg.Sum(k, candidate), agg.Sum(k, total)))
			}
		}
		t.SortByKey()
		tables = append(tables, t)
	}
	return tables, nil
}
