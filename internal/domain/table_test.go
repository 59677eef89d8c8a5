package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	autauga = Key{State: "Alabama", County: "Autauga"}
	baldwin = Key{State: "Alabama", County: "Baldwin"}
	acadia  = Key{State: "Louisiana", County: "Acadia"}
)

func TestTable_SetAndValue(t *testing.T) {
	tbl := NewTable("t", "a")
	tbl.Set(autauga, "a", 1)
	tbl.Set(autauga, "b", 2)
	tbl.SetLabel(autauga, "GEOID", "01001")

	assert.Equal(t, []string{"a", "b"}, tbl.Columns())
	assert.Equal(t, []string{"GEOID"}, tbl.Labels())
	assert.Equal(t, 1, tbl.Len())

	v, ok := tbl.Value(autauga, "b")
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-12)
	assert.Equal(t, "01001", tbl.Label(autauga, "GEOID"))

	v, ok = tbl.Value(baldwin, "a")
	assert.False(t, ok)
	assert.True(t, math.IsNaN(v))

	// A new row starts with every column missing.
	tbl.Set(baldwin, "b", 3)
	v, ok = tbl.Value(baldwin, "a")
	assert.True(t, ok)
	assert.True(t, math.IsNaN(v))
}

func TestTable_InsertDuplicate(t *testing.T) {
	tbl := NewTable("t")
	require.NoError(t, tbl.Insert(autauga))
	err := tbl.Insert(autauga)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestTable_SelectRenameDrop(t *testing.T) {
	tbl := NewTable("t", "a", "b", "c")
	tbl.SetLabel(autauga, "L", "x")
	tbl.Set(autauga, "a", 1)
	tbl.Set(autauga, "c", 3)

	sel, err := tbl.Select("c", "L")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, sel.Columns())
	assert.Equal(t, []string{"L"}, sel.Labels())

	_, err = tbl.Select("missing")
	require.ErrorIs(t, err, ErrMissingColumn)

	tbl.Rename(map[string]string{"a": "A", "unknown": "U"})
	assert.Equal(t, []string{"A", "b", "c"}, tbl.Columns())
	v, _ := tbl.Value(autauga, "A")
	assert.InDelta(t, 1.0, v, 1e-12)

	tbl.Drop("b", "L")
	assert.Equal(t, []string{"A", "c"}, tbl.Columns())
	assert.Empty(t, tbl.Labels())
}

func TestTable_Round(t *testing.T) {
	tbl := NewTable("t")
	tbl.Set(autauga, "a", 1.236)
	tbl.Set(autauga, "b", 1.236)
	tbl.Round(2, "a")

	a, _ := tbl.Value(autauga, "a")
	b, _ := tbl.Value(autauga, "b")
	assert.InDelta(t, 1.24, a, 1e-12)
	assert.InDelta(t, 1.236, b, 1e-12)
}

func TestTable_Filter(t *testing.T) {
	tbl := NewTable("t", "a")
	tbl.Set(autauga, "a", 1)
	tbl.Set(acadia, "a", 2)

	la := tbl.Filter(func(k Key) bool { return k.State == "Louisiana" })
	assert.Equal(t, []Key{acadia}, la.Keys())
	assert.Equal(t, 2, tbl.Len(), "filter leaves the source intact")

	v, ok := la.Value(acadia, "a")
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-12)
}

func TestTable_OuterJoin(t *testing.T) {
	left := NewTable("left", "wind", "shared")
	left.SetLabel(autauga, "GEOID", "01001")
	left.Set(autauga, "wind", 1)
	left.Set(autauga, "shared", 10)
	left.Set(baldwin, "wind", 2)

	right := NewTable("right", "gdp", "shared")
	right.SetLabel(acadia, "GEOID", "22001")
	right.SetLabel(autauga, "GEOID", "ignored")
	right.Set(acadia, "gdp", 3)
	right.Set(autauga, "gdp", 4)
	right.Set(autauga, "shared", 20)

	out := left.OuterJoin(right)

	assert.Equal(t, []Key{autauga, baldwin, acadia}, out.Keys())
	assert.Equal(t, []string{"wind", "shared_x", "gdp", "shared_y"}, out.Columns())
	assert.Equal(t, []string{"GEOID"}, out.Labels())

	type row struct {
		Key    Key
		Values []float64
		Labels []string
	}
	got := make([]row, 0, out.Len())
	for _, r := range out.Rows() {
		got = append(got, row(r))
	}
	nan := math.NaN()
	want := []row{
		{Key: autauga, Values: []float64{1, 10, 4, 20}, Labels: []string{"01001"}},
		{Key: baldwin, Values: []float64{2, nan, nan, nan}, Labels: []string{""}},
		{Key: acadia, Values: []float64{nan, nan, 3, nan}, Labels: []string{"22001"}},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("OuterJoin mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_OuterJoin_RowCountIsKeyUnion(t *testing.T) {
	a := NewTable("a")
	b := NewTable("b")
	for _, k := range []Key{autauga, baldwin} {
		a.Set(k, "x", 1)
	}
	for _, k := range []Key{baldwin, acadia} {
		b.Set(k, "y", 1)
	}

	out := a.OuterJoin(b)
	assert.Equal(t, 3, out.Len())

	seen := make(map[Key]bool)
	for _, k := range out.Keys() {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := NewTable("t")
	tbl.Set(autauga, "a", 1)
	c := tbl.Clone()
	c.Set(autauga, "a", 2)

	v, _ := tbl.Value(autauga, "a")
	assert.InDelta(t, 1.0, v, 1e-12)
}
