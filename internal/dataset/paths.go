package dataset

import (
	"fmt"
	"path/filepath"
)

// Source names a raw input file.
type Source string

const (
	SourceWind           Source = "Wind"
	SourceSolar          Source = "Solar"
	SourceSolarRoof      Source = "solar_roof"
	SourceGDP            Source = "GDP"
	SourceEducation      Source = "education"
	SourcePrivateSchools Source = "private_schools"
	SourceRaceDEC        Source = "DEC_race"
	SourceRaceACS        Source = "ACS_race"
	SourceElection       Source = "election"
	SourceIncome         Source = "income"
	SourceUnemployment   Source = "unemployment"
	SourcePopulation     Source = "population_data"
	SourceNRELElectric   Source = "NREL_Electric"
	SourceEIAElectric    Source = "EIA_Electric"
	SourceRuralUrban     Source = "Rural_Urban"
	SourceFIPS           Source = "FIPS"
	SourceBoundingBoxes  Source = "bounding_boxes"
)

var countyRaw = map[Source]string{
	SourceWind:           "../projects/wind/ez_gis.plant_power_eia_v8_wind.shp",
	SourceSolar:          "../projects/solar/solar_raw.csv",
	SourceSolarRoof:      "../projects/solar/solar_roof_raw.csv",
	SourceGDP:            "social factors/gdp_raw.csv",
	SourceEducation:      "social factors/education_raw.csv",
	SourcePrivateSchools: "social factors/private_school_raw.csv",
	SourceRaceDEC:        "social factors/race_dec_raw.csv",
	SourceRaceACS:        "social factors/race_acs_raw.csv",
	SourceElection:       "social factors/election_raw.csv",
	SourceIncome:         "social factors/income_raw.csv",
	SourceUnemployment:   "social factors/unemployment_raw.csv",
	SourcePopulation:     "social factors/population_raw.csv",
	SourceNRELElectric:   "electric price/NREL_raw.csv",
	SourceEIAElectric:    "electric price/EIA_raw.csv",
	SourceRuralUrban:     "electric price/rural_urban_raw.csv",
}

var extras = map[Source]string{
	SourceFIPS: "US_FIPS_Codes.csv",
}

var countyClean = map[Source]string{
	SourceBoundingBoxes: "county_bounding_boxes_full.csv",
}

// Paths resolves source names against the raw data directory layout:
// county_raw/, extras/ and county_clean/.
type Paths struct {
	Root      string
	Overrides map[Source]string
}

// Path returns the file path of a source.
func (p Paths) Path(s Source) (string, error) {
	if o, ok := p.Overrides[s]; ok && o != "" {
		return o, nil
	}
	if rel, ok := countyRaw[s]; ok {
		return filepath.Join(p.Root, "county_raw", rel), nil
	}
	if rel, ok := extras[s]; ok {
		return filepath.Join(p.Root, "extras", rel), nil
	}
	if rel, ok := countyClean[s]; ok {
		return filepath.Join(p.Root, "county_clean", rel), nil
	}
	return "", fmt.Errorf("unknown source %q", string(s))
}
