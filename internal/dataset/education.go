package dataset

import (
	"fmt"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

const attainment = "Estimate!!Percent!!AGE BY EDUCATIONAL ATTAINMENT!!"

var education18to24Names = map[string]string{
	attainment + "Population 18 to 24 years!!Less than high school graduate":              "18-24 Less than high school graduate",
	attainment + "Population 18 to 24 years!!High school graduate (includes equivalency)": "18-24 High school graduate",
	attainment + "Population 18 to 24 years!!Some college or associate's degree":          "18-24 Some college or associate's degree",
	attainment + "Population 18 to 24 years!!Bachelor's degree or higher":                 "18-24 Bachelor's degree or higher",
}

var education25PlusNames = map[string]string{
	attainment + "Population 25 years and over!!Less than 9th grade":                         "25+ Less than 9th grade",
	attainment + "Population 25 years and over!!9th to 12th grade, no diploma":               "25+ 9th to 12th grade, no diploma",
	attainment + "Population 25 years and over!!High school graduate (includes equivalency)": "25+ High school graduate",
	attainment + "Population 25 years and over!!Some college, no degree":                     "25+ Some college, no degree",
	attainment + "Population 25 years and over!!Associate's degree":                          "25+ Associate's degree",
	attainment + "Population 25 years and over!!Bachelor's degree":                           "25+ Bachelor's degree",
	attainment + "Population 25 years and over!!Graduate or professional degree":             "25+ Graduate or professional degree",
	attainment + "Population 25 years and over!!High school graduate or higher":              "25+ High school graduate or higher",
	attainment + "Population 25 years and over!!Bachelor's degree or higher":                 "25+ Bachelor's degree or higher",
}

// educationSpec describes how one age band is cut out of S1501.
type educationSpec struct {
	name    string
	match   []string
	exclude []string
	parent  string
	rename  map[string]string
}

var educationSpecs = map[domain.EducationBand]educationSpec{
	domain.Education18to24: {
		name:    "education_18_24",
		match:   []string{"Estimate", "18 to 24 years", "Percent"},
		exclude: []string{"Male", "Female"},
		parent:  attainment + "Population 18 to 24 years",
		rename:  education18to24Names,
	},
	domain.Education25Plus: {
		name:    "education_25_over",
		match:   []string{"Estimate", "25 years", "Percent"},
		exclude: []string{"Male", "Female", "MEDIAN"},
		parent:  attainment + "Population 25 years and over",
		rename:  education25PlusNames,
	},
}

// LoadEducation reads the ACS S1501 export once and returns one table per
// age band of the selection, in selection order.
func LoadEducation(path string, band domain.EducationBand, ref *domain.Reference) ([]*domain.Table, error) {
	bands, err := band.Bands()
	if err != nil {
		return nil, err
	}
	f, err := readCensusCSV(string(SourceEducation), path)
	if err != nil {
		return nil, err
	}
	tables := make([]*domain.Table, 0, len(bands))
	for _, b := range bands {
		t, err := educationTable(f, b, ref)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// educationTable keeps the percent estimates of the band, without the sex
// breakdowns and the band total, renamed to short labels.
func educationTable(f *frame, band domain.EducationBand, ref *domain.Reference) (*domain.Table, error) {
	spec, ok := educationSpecs[band]
	if !ok {
		return nil, fmt.Errorf("education band %q: %w", string(band), domain.ErrInvalidSelector)
	}
	cols := f.columnsWhere(func(h string) bool {
		return h != spec.parent && containsAll(h, spec.match...) && !containsAny(h, spec.exclude...)
	})
	mapping := make([][2]string, 0, len(cols))
	for _, c := range cols {
		out := c
		if short, ok := spec.rename[c]; ok {
			out = short
		}
		mapping = append(mapping, [2]string{c, out})
	}
	return censusTable(spec.name, f, ref, mapping)
}
