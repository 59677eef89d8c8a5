package dataset

import (
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Income and unemployment output columns.
const (
	ColMedianIncome      = "Median Income"
	ColTotalUnemployment = "Total Unemployment"
	ColUnemploymentRate  = "Unemployment Rate"
)

// LoadIncome reads the ACS S1901 median household income.
func LoadIncome(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCensusCSV(string(SourceIncome), path)
	if err != nil {
		return nil, err
	}
	return censusTable("income", f, ref, [][2]string{
		{"Estimate!!Households!!Median income (dollars)", ColMedianIncome},
	})
}

// LoadUnemployment reads the ACS S2301 population 16 and over and its
// unemployment rate.
func LoadUnemployment(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCensusCSV(string(SourceUnemployment), path)
	if err != nil {
		return nil, err
	}
	return censusTable("unemployment", f, ref, [][2]string{
		{"Estimate!!Total!!Population 16 years and over", ColTotalUnemployment},
		{"Estimate!!Unemployment rate!!Population 16 years and over", ColUnemploymentRate},
	})
}
