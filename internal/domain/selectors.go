package domain

import "fmt"

// RaceSource selects the census product for the race distribution.
type RaceSource string

const (
	RaceDEC RaceSource = "DEC"
	RaceACS RaceSource = "ACS"
)

// Party selects which election vote-share columns are produced.
type Party string

const (
	PartyDemocrat    Party = "Democrat"
	PartyRepublican  Party = "Republican"
	PartyGreen       Party = "Green"
	PartyLibertarian Party = "Libertarian"
	PartyOther       Party = "Other"
	PartyAll         Party = "all"
)

// EducationBand selects the ACS educational attainment age band.
type EducationBand string

const (
	Education18to24 EducationBand = "18-24"
	Education25Plus EducationBand = "25+"
	EducationAll    EducationBand = "all"
)

// SolarSize is a project capacity band.
type SolarSize string

const (
	SolarAll    SolarSize = "all"
	SolarSmall  SolarSize = "small"
	SolarMedium SolarSize = "medium"
	SolarLarge  SolarSize = "large"
)

// SolarSelection chooses which solar size tables are joined. "all" joins the
// four bands; "<band>_only" joins a single one.
type SolarSelection string

const (
	SolarSelectAll        SolarSelection = "all"
	SolarSelectSmallOnly  SolarSelection = "small_only"
	SolarSelectMediumOnly SolarSelection = "medium_only"
	SolarSelectLargeOnly  SolarSelection = "large_only"
	SolarSelectAllOnly    SolarSelection = "all_only"
)

// ElectricDataset selects the electricity rate source.
type ElectricDataset string

const (
	ElectricNREL ElectricDataset = "NREL"
	ElectricEIA  ElectricDataset = "EIA"
)

// CustomerClass selects the EIA customer class.
type CustomerClass string

const (
	ClassCommercial  CustomerClass = "commercial"
	ClassResidential CustomerClass = "residential"
	ClassBoth        CustomerClass = "both"
)

// Sizes expands a selection into the size bands to load.
func (s SolarSelection) Sizes() ([]SolarSize, error) {
	switch s {
	case SolarSelectAll:
		return []SolarSize{SolarAll, SolarSmall, SolarMedium, SolarLarge}, nil
	case SolarSelectSmallOnly:
		return []SolarSize{SolarSmall}, nil
	case SolarSelectMediumOnly:
		return []SolarSize{SolarMedium}, nil
	case SolarSelectLargeOnly:
		return []SolarSize{SolarLarge}, nil
	case SolarSelectAllOnly:
		return []SolarSize{SolarAll}, nil
	default:
		return nil, fmt.Errorf("solar type %q: %w", string(s), ErrInvalidSelector)
	}
}

// Bands expands an education selection into the age bands to load.
func (b EducationBand) Bands() ([]EducationBand, error) {
	switch b {
	case Education18to24, Education25Plus:
		return []EducationBand{b}, nil
	case EducationAll:
		return []EducationBand{Education18to24, Education25Plus}, nil
	default:
		return nil, fmt.Errorf("education type %q: %w", string(b), ErrInvalidSelector)
	}
}

// Parties expands a party selection into the individual parties.
func (p Party) Parties() ([]Party, error) {
	switch p {
	case PartyDemocrat, PartyRepublican, PartyGreen, PartyLibertarian, PartyOther:
		return []Party{p}, nil
	case PartyAll:
		return []Party{PartyDemocrat, PartyRepublican, PartyGreen, PartyLibertarian, PartyOther}, nil
	default:
		return nil, fmt.Errorf("party type %q: %w", string(p), ErrInvalidSelector)
	}
}

// Classes expands a customer class selection.
func (c CustomerClass) Classes() ([]CustomerClass, error) {
	switch c {
	case ClassCommercial, ClassResidential:
		return []CustomerClass{c}, nil
	case ClassBoth:
		return []CustomerClass{ClassCommercial, ClassResidential}, nil
	default:
		return nil, fmt.Errorf("customer class %q: %w", string(c), ErrInvalidSelector)
	}
}

// Validate reports an unknown race source.
func (r RaceSource) Validate() error {
	switch r {
	case RaceDEC, RaceACS:
		return nil
	default:
		return fmt.Errorf("race type %q: %w", string(r), ErrInvalidSelector)
	}
}

// Validate reports an unknown electric dataset.
func (e ElectricDataset) Validate() error {
	switch e {
	case ElectricNREL, ElectricEIA:
		return nil
	default:
		return fmt.Errorf("electric dataset %q: %w", string(e), ErrInvalidSelector)
	}
}

// Options carries every selector of a feature-table build.
type Options struct {
	Race              RaceSource
	Party             Party
	Education         EducationBand
	Solar             SolarSelection
	ElectricDataset   ElectricDataset
	ElectricClass     CustomerClass
	IncludeRuralUrban bool
}

// DefaultOptions returns the selectors used when none are configured.
func DefaultOptions() Options {
	return Options{
		Race:              RaceDEC,
		Party:             PartyDemocrat,
		Education:         Education18to24,
		Solar:             SolarSelectAll,
		ElectricDataset:   ElectricNREL,
		ElectricClass:     ClassBoth,
		IncludeRuralUrban: true,
	}
}

// Validate checks every selector before any file is read.
func (o Options) Validate() error {
	if err := o.Race.Validate(); err != nil {
		return err
	}
	if _, err := o.Party.Parties(); err != nil {
		return err
	}
	if _, err := o.Education.Bands(); err != nil {
		return err
	}
	if _, err := o.Solar.Sizes(); err != nil {
		return err
	}
	if err := o.ElectricDataset.Validate(); err != nil {
		return err
	}
	if o.ElectricDataset == ElectricEIA {
		if _, err := o.ElectricClass.Classes(); err != nil {
			return err
		}
	}
	return nil
}
