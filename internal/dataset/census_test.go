package dataset_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-features-etl/internal/dataset"
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

func TestLoadEducation(t *testing.T) {
	ref := testReference(t)

	tests := []struct {
		name    string
		band    domain.EducationBand
		columns [][]string
		wantErr error
	}{
		{
			name:    "18-24",
			band:    domain.Education18to24,
			columns: [][]string{{"18-24 Less than high school graduate", "18-24 Bachelor's degree or higher"}},
		},
		{
			name:    "25+",
			band:    domain.Education25Plus,
			columns: [][]string{{"25+ Bachelor's degree"}},
		},
		{
			name: "all",
			band: domain.EducationAll,
			columns: [][]string{
				{"18-24 Less than high school graduate", "18-24 Bachelor's degree or higher"},
				{"25+ Bachelor's degree"},
			},
		},
		{name: "invalid", band: "65+", wantErr: domain.ErrInvalidSelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := dataset.LoadEducation(path(t, dataset.SourceEducation), tt.band, ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, tables, len(tt.columns))
			for i, cols := range tt.columns {
				assert.Equal(t, cols, tables[i].Columns())
				assert.Equal(t, []domain.Key{autauga, baldwin}, tables[i].Keys())
			}
		})
	}
}

func TestLoadEducation_Values(t *testing.T) {
	ref := testReference(t)
	tables, err := dataset.LoadEducation(path(t, dataset.SourceEducation), domain.EducationAll, ref)
	require.NoError(t, err)

	assert.InDelta(t, 12.5, value(t, tables[0], autauga, "18-24 Less than high school graduate"), 1e-9)
	assert.InDelta(t, 22.0, value(t, tables[1], baldwin, "25+ Bachelor's degree"), 1e-9)
}

func TestLoadPrivateSchools(t *testing.T) {
	ref := testReference(t)
	schools, err := dataset.LoadPrivateSchools(path(t, dataset.SourcePrivateSchools), ref)
	require.NoError(t, err)

	assert.Equal(t, []domain.Key{autauga, baldwin}, schools.Keys())
	assert.InDelta(t, 2.0, value(t, schools, autauga, dataset.ColPrivateSchools), 1e-9)
	// An unpadded STFIP still matches.
	assert.InDelta(t, 1.0, value(t, schools, baldwin, dataset.ColPrivateSchools), 1e-9)
}

func TestLoadIncome(t *testing.T) {
	ref := testReference(t)
	income, err := dataset.LoadIncome(path(t, dataset.SourceIncome), ref)
	require.NoError(t, err)

	assert.Equal(t, []string{dataset.ColMedianIncome}, income.Columns())
	assert.InDelta(t, 68315.0, value(t, income, autauga, dataset.ColMedianIncome), 1e-9)
	assert.True(t, math.IsNaN(value(t, income, acadia, dataset.ColMedianIncome)))
}

func TestLoadUnemployment(t *testing.T) {
	ref := testReference(t)
	unemployment, err := dataset.LoadUnemployment(path(t, dataset.SourceUnemployment), ref)
	require.NoError(t, err)

	assert.Equal(t, []string{dataset.ColTotalUnemployment, dataset.ColUnemploymentRate}, unemployment.Columns())
	assert.InDelta(t, 45123.0, value(t, unemployment, autauga, dataset.ColTotalUnemployment), 1e-9)
	assert.InDelta(t, 2.8, value(t, unemployment, baldwin, dataset.ColUnemploymentRate), 1e-9)
}

func TestLoadRaceDEC(t *testing.T) {
	ref := testReference(t)
	race, err := dataset.LoadRace(domain.RaceDEC, testPaths(), ref)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		dataset.ColHispanic, dataset.ColWhite, dataset.ColBlack, dataset.ColOthers,
	}, race.Columns())
	assert.InDelta(t, 0.1, value(t, race, autauga, dataset.ColHispanic), 1e-9)
	assert.InDelta(t, 0.6, value(t, race, autauga, dataset.ColWhite), 1e-9)
	assert.InDelta(t, 0.2, value(t, race, autauga, dataset.ColBlack), 1e-9)
	assert.InDelta(t, 0.09, value(t, race, autauga, dataset.ColOthers), 1e-9)
	assert.InDelta(t, 0.8, value(t, race, acadia, dataset.ColWhite), 1e-9)
}

func TestLoadRaceACS(t *testing.T) {
	ref := testReference(t)
	race, err := dataset.LoadRace(domain.RaceACS, testPaths(), ref)
	require.NoError(t, err)

	assert.Equal(t, []string{dataset.ColWhite, dataset.ColBlack, dataset.ColOther}, race.Columns())
	assert.InDelta(t, 0.75, value(t, race, autauga, dataset.ColWhite), 1e-9)
	assert.InDelta(t, 0.15, value(t, race, autauga, dataset.ColBlack), 1e-9)
	assert.InDelta(t, 0.1, value(t, race, autauga, dataset.ColOther), 1e-9)
}

func TestLoadRace_InvalidSource(t *testing.T) {
	_, err := dataset.LoadRace("PUMS", testPaths(), testReference(t))
	require.ErrorIs(t, err, domain.ErrInvalidSelector)
}

func TestLoadElection(t *testing.T) {
	ref := testReference(t)

	tables, err := dataset.LoadElection(path(t, dataset.SourceElection), domain.PartyAll, ref)
	require.NoError(t, err)
	require.Len(t, tables, 5)

	byColumn := make(map[string]*domain.Table)
	for _, tbl := range tables {
		require.Len(t, tbl.Columns(), 1)
		byColumn[tbl.Columns()[0]] = tbl
	}

	dem := byColumn["democrat_percentage_vote"]
	require.NotNil(t, dem)
	// Both elections are summed: (999 + 300) / (1000 + 1000).
	assert.InDelta(t, 0.6495, value(t, dem, autauga, "democrat_percentage_vote"), 1e-9)
	// Each vote-mode row repeats the county total, and both columns are summed.
	assert.InDelta(t, 0.15, value(t, dem, baldwin, "democrat_percentage_vote"), 1e-9)
	assert.InDelta(t, 0.7, value(t, byColumn["republican_percentage_vote"], baldwin, "republican_percentage_vote"), 1e-9)

	assert.InDelta(t, 0.65, value(t, byColumn["republican_percentage_vote"], autauga, "republican_percentage_vote"), 1e-9)
	assert.InDelta(t, 0.03, value(t, byColumn["libertarian_percentage_vote"], autauga, "libertarian_percentage_vote"), 1e-9)
	assert.InDelta(t, 0.02, value(t, byColumn["other_percentage_vote"], autauga, "other_percentage_vote"), 1e-9)
	assert.Equal(t, 0, byColumn["green_percentage_vote"].Len())
}

func TestLoadElection_Selectors(t *testing.T) {
	ref := testReference(t)

	tables, err := dataset.LoadElection(path(t, dataset.SourceElection), domain.PartyRepublican, ref)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"republican_percentage_vote"}, tables[0].Columns())

	_, err = dataset.LoadElection(path(t, dataset.SourceElection), "Whig", ref)
	require.ErrorIs(t, err, domain.ErrInvalidSelector)
}

func TestLoadElectric_NREL(t *testing.T) {
	ref := testReference(t)
	tables, err := dataset.LoadElectric(domain.ElectricNREL, domain.ClassBoth, testPaths(), ref)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	nrel := tables[0]

	assert.InDelta(t, 0.11, value(t, nrel, autauga, dataset.ColCommercialRate), 1e-9)
	assert.InDelta(t, 0.07, value(t, nrel, autauga, dataset.ColIndustrialRate), 1e-9)
	assert.InDelta(t, 0.13, value(t, nrel, autauga, dataset.ColResidentialRate), 1e-9)

	// "AL" / "Baldwin County" resolve to the canonical key.
	assert.InDelta(t, 0.09, value(t, nrel, baldwin, dataset.ColCommercialRate), 1e-9)
	assert.True(t, math.IsNaN(value(t, nrel, baldwin, dataset.ColIndustrialRate)))
}

func TestLoadElectric_EIA(t *testing.T) {
	ref := testReference(t)

	tests := []struct {
		name    string
		class   domain.CustomerClass
		columns [][]string
		wantErr error
	}{
		{
			name:    "commercial",
			class:   domain.ClassCommercial,
			columns: [][]string{{"Commercial Sales Revenue", "Commercial Sales MWH", "No. Commercial Customers"}},
		},
		{
			name:  "both",
			class: domain.ClassBoth,
			columns: [][]string{
				{"Commercial Sales Revenue", "Commercial Sales MWH", "No. Commercial Customers"},
				{"Residential Sales Revenue", "Residential Sales MWH", "No. Residential Customers"},
			},
		},
		{name: "invalid", class: "industrial", wantErr: domain.ErrInvalidSelector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := dataset.LoadElectric(domain.ElectricEIA, tt.class, testPaths(), ref)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, tables, len(tt.columns))
			for i, cols := range tt.columns {
				assert.Equal(t, cols, tables[i].Columns())
			}
		})
	}
}

func TestLoadEIAElectric_SumsPerCounty(t *testing.T) {
	ref := testReference(t)
	tables, err := dataset.LoadEIAElectric(path(t, dataset.SourceEIAElectric), domain.ClassBoth, ref)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	com, res := tables[0], tables[1]
	assert.Equal(t, []domain.Key{autauga}, com.Keys())
	assert.InDelta(t, 1500.0, value(t, com, autauga, "Commercial Sales Revenue"), 1e-9)
	assert.InDelta(t, 150.0, value(t, com, autauga, "Commercial Sales MWH"), 1e-9)
	assert.InDelta(t, 15.0, value(t, com, autauga, "No. Commercial Customers"), 1e-9)

	assert.Equal(t, []domain.Key{autauga, acadia}, res.Keys())
	assert.InDelta(t, 3000.0, value(t, res, autauga, "Residential Sales Revenue"), 1e-9)
}

func TestLoadRuralUrban(t *testing.T) {
	ref := testReference(t)
	ru, err := dataset.LoadRuralUrban(path(t, dataset.SourceRuralUrban), ref)
	require.NoError(t, err)

	assert.InDelta(t, 0.905, value(t, ru, autauga, dataset.ColRuralArea), 1e-9)
	assert.InDelta(t, 0.095, value(t, ru, autauga, dataset.ColUrbanArea), 1e-9)
	assert.InDelta(t, 1.0, value(t, ru, acadia, dataset.ColRuralArea), 1e-9)
	assert.InDelta(t, 0.0, value(t, ru, acadia, dataset.ColUrbanArea), 1e-9)
}
