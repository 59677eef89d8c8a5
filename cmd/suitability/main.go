// Command suitability computes the techno-economic suitability table: the
// mean of seven raster layers over every county or block group polygon of a
// boundary file, written as CSV.
//
// Usage:
//
//	go run ./cmd/suitability \
//	  -boundaries data/county_clean/tl_2020_block_groups.gpkg \
//	  -layers ghi.asc,protected.asc,habitat.asc,slope.asc,pop.asc,substation.asc,cover.asc \
//	  -block-groups \
//	  -out suitability_block_groups.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/county-features-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/county-features-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/county-features-etl/internal/dataset"
	"github.com/couchcryptid/county-features-etl/internal/domain"
	"github.com/couchcryptid/county-features-etl/internal/raster"
)

type options struct {
	boundaries  string
	layers      string
	blockGroups bool
	rasterCRS   string
	netcdfVar   string
	dataDir     string
	out         string
	nodata      float64
	maxValid    float64
	stateField  string
	countyField string
}

func main() {
	var o options
	flag.StringVar(&o.boundaries, "boundaries", "", "county or block group boundaries (.gpkg or .shp)")
	flag.StringVar(&o.layers, "layers", "", "comma-separated rasters in order: "+strings.Join(raster.LayerColumns, ","))
	flag.BoolVar(&o.blockGroups, "block-groups", false, "key rows by block group GEOID")
	flag.StringVar(&o.rasterCRS, "raster-crs", "", "override the CRS declared by the rasters")
	flag.StringVar(&o.netcdfVar, "netcdf-var", "data", "variable read from .nc rasters")
	flag.StringVar(&o.dataDir, "data-dir", "", "raw data directory; when set, rows use canonical county names")
	flag.StringVar(&o.out, "out", "suitability.csv", "output CSV path")
	flag.Float64Var(&o.nodata, "nodata", raster.DefaultNoData, "nodata sentinel")
	flag.Float64Var(&o.maxValid, "max-valid", raster.DefaultMaxValid, "cells above this value are treated as nodata")
	flag.StringVar(&o.stateField, "state-field", "State", "boundary attribute holding the state")
	flag.StringVar(&o.countyField, "county-field", "County Name", "boundary attribute holding the county name")
	flag.Parse()

	if o.boundaries == "" || o.layers == "" {
		flag.Usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("suitability failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	layers, err := raster.Layers(strings.Split(o.layers, ","))
	if err != nil {
		return err
	}

	fields := raster.CountyFields()
	if o.blockGroups {
		fields = raster.BlockGroupFields()
	}
	fields.State, fields.County = o.stateField, o.countyField

	boundaries, crs, err := raster.ReadBoundaries(ctx, o.boundaries, fields)
	if err != nil {
		return err
	}
	logger.Info("boundaries loaded", "path", o.boundaries, "polygons", len(boundaries), "crs", crs)

	var ref *domain.Reference
	if o.dataDir != "" {
		if ref, err = dataset.LoadReference(dataset.Paths{Root: o.dataDir}); err != nil {
			return err
		}
	}

	readers := raster.DefaultReaders()
	readers[".nc"] = netcdf.NewReader(o.netcdfVar)
	p := raster.NewProcessor(readers, raster.Options{
		NoData:      o.nodata,
		MaxValid:    o.maxValid,
		BlockGroups: o.blockGroups,
		RasterCRS:   o.rasterCRS,
	}, logger)

	table, err := p.Process(ctx, layers, boundaries, crs, ref)
	if err != nil {
		return err
	}
	if err := csvfile.NewWriter(o.out).Load(ctx, table, domain.RunInfo{}); err != nil {
		return fmt.Errorf("write %s: %w", o.out, err)
	}
	logger.Info("suitability written", "path", o.out, "rows", table.Len())
	return nil
}
