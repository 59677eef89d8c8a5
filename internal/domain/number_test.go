package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"42", 42},
		{"1,234.5", 1234.5},
		{` "7" `, 7},
		{"-3.25", -3.25},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ParseNumber(tt.in), 1e-12, tt.in)
	}

	for _, missing := range []string{"", "(X)", "-", "N", "(NA)", "*****"} {
		assert.True(t, math.IsNaN(ParseNumber(missing)), missing)
	}
}

func TestParsePercent(t *testing.T) {
	assert.InDelta(t, 0.453, ParsePercent("45.3%"), 1e-12)
	assert.InDelta(t, 0.453, ParsePercent("45.3"), 1e-12)
	assert.True(t, math.IsNaN(ParsePercent("n/a")))
}

func TestRound(t *testing.T) {
	assert.InDelta(t, 1.24, Round(1.236, 2), 1e-12)
	assert.InDelta(t, 1.23, Round(1.2345, 2), 1e-12)
	assert.InDelta(t, -1.24, Round(-1.236, 2), 1e-12)
	assert.InDelta(t, 3.0, Round(2.5, 0), 1e-12)
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}

func TestPerArea(t *testing.T) {
	assert.InDelta(t, 250.0, PerArea(150, 600, 1000), 1e-9)
	assert.True(t, math.IsNaN(PerArea(150, 0, 1000)), "zero area")
	assert.True(t, math.IsNaN(PerArea(150, -1, 1000)), "negative area")
	assert.True(t, math.IsNaN(PerArea(150, math.NaN(), 1000)), "unknown area")
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 0.25, Ratio(1, 4), 1e-12)
	assert.True(t, math.IsNaN(Ratio(1, 0)))
	assert.True(t, math.IsNaN(Ratio(1, math.NaN())))
}
