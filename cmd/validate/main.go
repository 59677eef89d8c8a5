// Command validate performs integrity checks on a produced county feature
// CSV: header structure, unique join keys, coverage of the bounding-box
// table and value ranges of share and intensity columns.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -features county_features.csv \
//	  -data-dir data \
//	  -require "area mi2,GDP_2022,Median Income"
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/county-features-etl/internal/dataset"
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the detail printed per phase.
const maxErrors = 25

func main() {
	features := flag.String("features", "", "feature CSV produced by cmd/etl")
	dataDir := flag.String("data-dir", "", "raw data directory; enables the bounding-box coverage phase")
	require := flag.String("require", domain.ColAreaMi2+","+domain.ColAreaKm2, "comma-separated columns that must be present")
	flag.Parse()

	if *features == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*features, *dataDir, splitList(*require)); code != 0 {
		os.Exit(code)
	}
}

func run(featuresPath, dataDir string, required []string) int {
	fmt.Println("=== County Feature Table Validation ===")
	fmt.Println()

	header, rows, err := loadCSV(featuresPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load features: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(header, required),
		validateKeys(header, rows),
		validateValues(header, rows),
	}
	if dataDir != "" {
		ref, err := dataset.LoadReference(dataset.Paths{Root: dataDir})
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load reference: %v\n", err)
			return 1
		}
		phases = append(phases, validateCoverage(header, rows, ref))
	}

	// ── Report results ──
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d, columns: %d\n", len(rows), len(header))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}
	return all[0], all[1:], nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func index(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func rowKey(idx map[string]int, row []string) domain.Key {
	k := domain.Key{State: row[idx[domain.ColState]], County: row[idx[domain.ColCounty]]}
	if z, ok := idx[domain.ColZone]; ok {
		k.Zone = row[z]
	}
	return k
}

// ── Phase 1: Structure ──

func validateStructure(header, required []string) *phase {
	p := &phase{name: "Phase 1: Structure (header)"}

	if len(header) < 2 || header[0] != domain.ColState || header[1] != domain.ColCounty {
		p.errorf("header must start with %q, %q; got %q", domain.ColState, domain.ColCounty, header[:min(2, len(header))])
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			p.errorf("duplicate column %q", h)
		}
		seen[h] = true
		if strings.HasSuffix(h, "_x") || strings.HasSuffix(h, "_y") {
			p.errorf("column %q looks like an unresolved join collision", h)
		}
	}
	for _, r := range required {
		if !seen[r] {
			p.errorf("missing required column %q", r)
		}
	}
	return p
}

// ── Phase 2: Keys ──

func validateKeys(header []string, rows [][]string) *phase {
	p := &phase{name: "Phase 2: Join Keys (unique, non-empty)"}
	idx := index(header)
	if _, ok := idx[domain.ColCounty]; !ok {
		p.errorf("no %q column", domain.ColCounty)
		return p
	}

	seen := make(map[domain.Key]int, len(rows))
	for i, row := range rows {
		line := i + 2
		if len(row) != len(header) {
			p.errorf("line %d: %d fields, header has %d", line, len(row), len(header))
			continue
		}
		k := rowKey(idx, row)
		if k.State == "" || k.County == "" {
			p.errorf("line %d: empty state or county", line)
			continue
		}
		if prev, dup := seen[k]; dup {
			p.errorf("line %d: key %s already on line %d", line, k, prev)
			continue
		}
		seen[k] = line
	}
	return p
}

// ── Phase 3: Values ──

// isShare reports whether a column holds a fraction in [0, 1].
func isShare(column string) bool {
	switch column {
	case dataset.ColHispanic, dataset.ColWhite, dataset.ColBlack, dataset.ColNativeAmerican,
		dataset.ColAsian, dataset.ColPacific, dataset.ColOthers, dataset.ColOther,
		dataset.ColRuralArea, dataset.ColUrbanArea:
		return true
	}
	return strings.HasSuffix(column, "_percentage_vote")
}

// isNonNegative reports whether a column is a count, area or intensity.
func isNonNegative(column string) bool {
	return strings.Contains(column, "sq mile") ||
		strings.HasPrefix(column, "No. ") ||
		strings.HasPrefix(column, "Number of") ||
		column == domain.ColAreaMi2 || column == domain.ColAreaKm2
}

func validateValues(header []string, rows [][]string) *phase {
	p := &phase{name: "Phase 3: Values (numeric, ranges)"}
	labels := map[string]bool{
		domain.ColState: true, domain.ColCounty: true, domain.ColZone: true,
		domain.ColFIPSState: true, domain.ColFIPSCounty: true, domain.ColGEOID: true,
		"TRACTCE": true, "BLKGRPCE": true,
	}

	for i, row := range rows {
		line := i + 2
		for j, h := range header {
			if labels[h] || j >= len(row) || row[j] == "" {
				continue
			}
			v := domain.ParseNumber(row[j])
			if math.IsNaN(v) {
				p.errorf("line %d: %q is not numeric: %q", line, h, row[j])
				continue
			}
			if isShare(h) && (v < 0 || v > 1) {
				p.errorf("line %d: share %q = %g outside [0, 1]", line, h, v)
			}
			if isNonNegative(h) && v < 0 {
				p.errorf("line %d: %q = %g is negative", line, h, v)
			}
		}
	}
	return p
}

// ── Phase 4: Coverage ──

func validateCoverage(header []string, rows [][]string, ref *domain.Reference) *phase {
	p := &phase{name: "Phase 4: Coverage (bounding boxes)"}
	idx := index(header)
	geoid, hasGEOID := idx[domain.ColGEOID]

	present := make(map[domain.Key][]string, len(rows))
	for _, row := range rows {
		if len(row) == len(header) {
			present[rowKey(idx, row)] = row
		}
	}
	for _, box := range ref.Boxes() {
		row, ok := present[box.Key]
		if !ok {
			p.errorf("bounding box %s missing from features", box.Key)
			continue
		}
		if hasGEOID && row[geoid] != box.GEOID {
			p.errorf("%s: GEOID %q, bounding box has %q", box.Key, row[geoid], box.GEOID)
		}
	}
	return p
}
