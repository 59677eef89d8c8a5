package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key identifies one row of the feature table.
type Key struct {
	State  string `json:"state"`
	County string `json:"county"`
	// Zone is empty for county rows and holds a GEOID for sub-county rows.
	Zone string `json:"zone,omitempty"`
}

// String renders the key as "state|county" or "state|county|zone".
func (k Key) String() string {
	if k.Zone == "" {
		return k.State + "|" + k.County
	}
	return k.State + "|" + k.County + "|" + k.Zone
}

// Less orders keys by state, county, then zone.
func (k Key) Less(o Key) bool {
	if k.State != o.State {
		return k.State < o.State
	}
	if k.County != o.County {
		return k.County < o.County
	}
	return k.Zone < o.Zone
}

// FIPS is a zero-padded state + county code pair.
type FIPS struct {
	State  string `json:"fips_state"`
	County string `json:"fips_county"`
}

// String renders the five-digit code.
func (f FIPS) String() string {
	return f.State + f.County
}

// NewFIPS pads a state and county code to two and three digits.
func NewFIPS(state, county string) (FIPS, error) {
	s, err := padCode(state, 2)
	if err != nil {
		return FIPS{}, fmt.Errorf("state fips %q: %w", state, err)
	}
	c, err := padCode(county, 3)
	if err != nil {
		return FIPS{}, fmt.Errorf("county fips %q: %w", county, err)
	}
	return FIPS{State: s, County: c}, nil
}

// ParseFIPS parses a combined county code such as "01001", "1001" or
// "1001.0". The last three digits are the county.
func ParseFIPS(s string) (FIPS, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return FIPS{}, fmt.Errorf("parse fips: empty code")
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.Trim(s[i+1:], "0") != "" {
			return FIPS{}, fmt.Errorf("parse fips %q: fractional code", s)
		}
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 99999 {
		return FIPS{}, fmt.Errorf("parse fips %q: not a county code", s)
	}
	code := fmt.Sprintf("%05d", n)
	return FIPS{State: code[:2], County: code[2:]}, nil
}

// ParseGeography parses a census GEO_ID such as "0500000US01001".
func ParseGeography(geo string) (FIPS, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(geo), "US")
	if !ok || len(after) < 5 {
		return FIPS{}, fmt.Errorf("parse geography %q: missing US county code", geo)
	}
	return NewFIPS(after[:2], after[2:])
}

func padCode(code string, width int) (string, error) {
	code = strings.TrimSpace(code)
	if i := strings.IndexByte(code, '.'); i >= 0 {
		code = code[:i]
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 {
		return "", fmt.Errorf("not numeric")
	}
	out := fmt.Sprintf("%0*d", width, n)
	if len(out) > width {
		return "", fmt.Errorf("more than %d digits", width)
	}
	return out, nil
}

// countySuffixes are stripped from names that carry the legal/statistical
// area description.
var countySuffixes = []string{" County", " Parish"}

// NormalizeCountyName reduces a county name to the spelling used by the
// FIPS lookup table.
func NormalizeCountyName(name string) string {
	name = strings.TrimSpace(foldDiacritics(name))
	for _, suffix := range countySuffixes {
		name = strings.TrimSuffix(name, suffix)
	}
	name = strings.ReplaceAll(name, ".", "")
	return strings.Join(strings.Fields(name), " ")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
