package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a numeric cell, stripping thousands separators, quotes
// and surrounding whitespace. Anything unparseable (census annotations such
// as "(X)", "-", "N", "(NA)") yields NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ParsePercent parses "45.3%" (or "45.3") as the fraction 0.453.
func ParsePercent(s string) float64 {
	return ParseNumber(strings.TrimRight(strings.TrimSpace(s), "%")) / 100.0
}

// Round rounds half away from zero to the given number of decimal places.
// NaN and infinities pass through.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// PerArea divides a quantity by an area, scaled by the given factor. It
// returns NaN when the area is missing or not positive, rather than the
// infinities a zero-filled area would produce.
func PerArea(v, area, scale float64) float64 {
	if math.IsNaN(area) || area <= 0 {
		return math.NaN()
	}
	return v / area * scale
}

// Ratio divides numerator by denominator, returning NaN for a zero or
// missing denominator.
func Ratio(num, den float64) float64 {
	if math.IsNaN(den) || den == 0 {
		return math.NaN()
	}
	return num / den
}

func nan() float64 { return math.NaN() }
