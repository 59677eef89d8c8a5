package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/county-features-etl/internal/domain"
)

var autauga = domain.Key{State: "Alabama", County: "Autauga"}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "features.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Load(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	assert.Equal(t, "sqlite", s.Name())

	tbl := domain.NewTable("features", domain.ColAreaMi2, "Median Income")
	tbl.AddLabel(domain.ColGEOID)
	tbl.Set(autauga, domain.ColAreaMi2, 600)
	tbl.Set(autauga, "Median Income", math.NaN())
	tbl.SetLabel(autauga, domain.ColGEOID, "01001")

	run := domain.RunInfo{Version: "v1", GeneratedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Load(ctx, tbl, run))

	id, version, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", version)

	v, ok, err := s.Value(ctx, id, autauga, domain.ColAreaMi2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 600.0, v, 1e-9)

	_, ok, err = s.Value(ctx, id, autauga, "Median Income")
	require.NoError(t, err)
	assert.False(t, ok, "missing values are not stored")

	var label string
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT label FROM county_features WHERE run_id = ? AND feature = ?`, id, domain.ColGEOID).Scan(&label))
	assert.Equal(t, "01001", label)
}

func TestStore_LoadKeepsRuns(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	tbl := domain.NewTable("features", "GHI")
	tbl.Set(autauga, "GHI", 5.1)
	require.NoError(t, s.Load(ctx, tbl, domain.RunInfo{Version: "v1", GeneratedAt: time.Now()}))

	tbl.Set(autauga, "GHI", 5.3)
	require.NoError(t, s.Load(ctx, tbl, domain.RunInfo{Version: "v2", GeneratedAt: time.Now()}))

	id, version, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", version)

	v, _, err := s.Value(ctx, id, autauga, "GHI")
	require.NoError(t, err)
	assert.InDelta(t, 5.3, v, 1e-9)

	v, _, err = s.Value(ctx, id-1, autauga, "GHI")
	require.NoError(t, err)
	assert.InDelta(t, 5.1, v, 1e-9)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(" ")
	assert.Error(t, err)
}
