package dataset

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// Solar roof output columns.
const (
	ColRoofInstalls        = "Number of Existing Installs"
	ColRoofTotalKW         = "Total Installed Capacity (kW)"
	ColRoofMedianKW        = "Median Installed Capacity (kW)"
	ColRoofTotalKWPerArea  = "Total Installed Capacity (kW/ 1000 sq mile)"
	ColRoofMedianKWPerArea = "Median Installed Capacity (kW / sq mile)"
	ColRoofInstallsPerArea = "Number of Existing Installs / sq mile"
)

const (
	smallSolarUpperBoundMW  = 5.0
	mediumSolarUpperBoundMW = 25.0
	perThousandSqMiles      = 1000.0
)

// SolarCapacityColumn, SolarProjectsColumn and SolarAvgColumn name the
// per-size output columns.
func SolarCapacityColumn(size domain.SolarSize) string {
	return "Solar MW 1000 sq mile " + string(size)
}

func SolarProjectsColumn(size domain.SolarSize) string {
	return "Solar Projects 1000 sq mile " + string(size)
}

func SolarAvgColumn(size domain.SolarSize) string {
	return "Solar MW Avg 1000 sq mile " + string(size)
}

// SolarProject is one utility scale solar plant.
type SolarProject struct {
	State  string
	County string
	MW     float64
}

// InBand reports whether the project capacity falls in the size band.
// Small is below 5 MW, medium 5 to 25 MW and large 25 MW or more.
func (p SolarProject) InBand(size domain.SolarSize) bool {
	switch size {
	case domain.SolarAll:
		return true
	case domain.SolarSmall:
		return p.MW < smallSolarUpperBoundMW
	case domain.SolarMedium:
		return p.MW >= smallSolarUpperBoundMW && p.MW < mediumSolarUpperBoundMW
	case domain.SolarLarge:
		return p.MW >= mediumSolarUpperBoundMW
	default:
		return false
	}
}

// ReadSolarProjects reads the utility scale solar project list.
func ReadSolarProjects(path string) ([]SolarProject, error) {
	f, err := readCSV(string(SourceSolar), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("statename", "county", "solar_mw")
	if err != nil {
		return nil, err
	}
	out := make([]SolarProject, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, SolarProject{
			State:  cell(row, idx[0]),
			County: cell(row, idx[1]),
			MW:     domain.ParseNumber(cell(row, idx[2])),
		})
	}
	return out, nil
}

// SolarTable aggregates projects of one size band per county and
// normalises capacity, project count and average capacity per 1000 square
// miles. Only counties present in the bounding boxes are kept. A project
// with a missing capacity falls in no size band but still puts its county
// in the all band, with zero capacity when no project there has one.
func SolarTable(projects []SolarProject, size domain.SolarSize, ref *domain.Reference) (*domain.Table, error) {
	switch size {
	case domain.SolarAll, domain.SolarSmall, domain.SolarMedium, domain.SolarLarge:
	default:
		return nil, fmt.Errorf("solar size %q: %w", string(size), domain.ErrInvalidSelector)
	}

	agg := domain.NewAggregator("mw")
	for _, p := range projects {
		if !p.InBand(size) {
			continue
		}
		k, ok := resolveBox(ref, p.State, p.County)
		if !ok {
			continue
		}
		agg.Add(k, p.MW)
	}

	capCol, projCol, avgCol := SolarCapacityColumn(size), SolarProjectsColumn(size), SolarAvgColumn(size)
	t := domain.NewTable("solar_"+string(size), capCol, projCol, avgCol)
	for _, k := range agg.Keys() {
		area := ref.Area(k)
		t.Set(k, capCol, domain.PerArea(agg.Sum(k, "mw"), area, perThousandSqMiles))
		t.Set(k, projCol, domain.PerArea(agg.Count(k, "mw"), area, perThousandSqMiles))
		t.Set(k, avgCol, domain.PerArea(agg.Mean(k, "mw"), area, perThousandSqMiles))
	}
	t.SortByKey()
	return t, nil
}

// LoadSolar reads the project list once and builds one table per size band
// of the selection, in selection order.
func LoadSolar(path string, sel domain.SolarSelection, ref *domain.Reference) ([]*domain.Table, error) {
	sizes, err := sel.Sizes()
	if err != nil {
		return nil, err
	}
	projects, err := ReadSolarProjects(path)
	if err != nil {
		return nil, err
	}
	tables := make([]*domain.Table, 0, len(sizes))
	for _, size := range sizes {
		t, err := SolarTable(projects, size, ref)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// LoadSolarRoof reads rooftop solar install counts and capacities, sums
// them per county and adds area normalised variants rounded to two decimals.
func LoadSolarRoof(path string, ref *domain.Reference) (*domain.Table, error) {
	f, err := readCSV(string(SourceSolarRoof), path)
	if err != nil {
		return nil, err
	}
	idx, err := f.cols("region_name", "state_name", "existing_installs_count", "kw_total", "kw_median")
	if err != nil {
		return nil, err
	}

	agg := domain.NewAggregator(ColRoofInstalls, ColRoofTotalKW, ColRoofMedianKW)
	for _, row := range f.rows {
		county := strings.ReplaceAll(cell(row, idx[0]), ".", "")
		k, ok := resolveBox(ref, cell(row, idx[1]), county)
		if !ok {
			continue
		}
		agg.Add(k,
			domain.ParseNumber(cell(row, idx[2])),
			domain.ParseNumber(cell(row, idx[3])),
			domain.ParseNumber(cell(row, idx[4])),
		)
	}

	t := domain.NewTable("solar_roof",
		ColRoofInstalls, ColRoofTotalKW, ColRoofMedianKW,
		ColRoofTotalKWPerArea, ColRoofMedianKWPerArea, ColRoofInstallsPerArea,
	)
	for _, k := range agg.Keys() {
		area := ref.Area(k)
		installs := agg.Sum(k, ColRoofInstalls)
		total := agg.Sum(k, ColRoofTotalKW)
		median := agg.Sum(k, ColRoofMedianKW)
		t.Set(k, ColRoofInstalls, installs)
		t.Set(k, ColRoofTotalKW, total)
		t.Set(k, ColRoofMedianKW, median)
		t.Set(k, ColRoofTotalKWPerArea, domain.PerArea(total, area, perThousandSqMiles))
		t.Set(k, ColRoofMedianKWPerArea, domain.PerArea(median, area, 1))
		t.Set(k, ColRoofInstallsPerArea, domain.PerArea(installs, area, 1))
	}
	t.Round(2, ColRoofTotalKWPerArea, ColRoofMedianKWPerArea, ColRoofInstallsPerArea)
	t.SortByKey()
	return t, nil
}
