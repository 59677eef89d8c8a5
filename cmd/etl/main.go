package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/county-features-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/county-features-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/county-features-etl/internal/adapter/kafka"
	"github.com/couchcryptid/county-features-etl/internal/adapter/netcdf"
	"github.com/couchcryptid/county-features-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/county-features-etl/internal/adapter/xlsx"
	"github.com/couchcryptid/county-features-etl/internal/config"
	"github.com/couchcryptid/county-features-etl/internal/dataset"
	"github.com/couchcryptid/county-features-etl/internal/observability"
	"github.com/couchcryptid/county-features-etl/internal/pipeline"
	"github.com/couchcryptid/county-features-etl/internal/raster"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	paths := dataset.Paths{Root: cfg.DataDir, Overrides: map[dataset.Source]string{}}
	if cfg.WindPath != "" {
		paths.Overrides[dataset.SourceWind] = cfg.WindPath
	}

	builder := pipeline.NewBuilder(paths, cfg.Options(), logger, metrics)
	if cfg.SuitabilityEnabled {
		suitability, err := newSuitability(cfg, logger)
		if err != nil {
			logger.Error("invalid suitability configuration", "error", err)
			os.Exit(1)
		}
		builder.WithSuitability(suitability)
		logger.Info("suitability enabled", "layers", len(suitability.Layers), "boundaries", suitability.Boundaries)
	}

	var loaders []pipeline.Loader
	var closers []func() error
	if cfg.OutputCSV != "" {
		loaders = append(loaders, csvfile.NewWriter(cfg.OutputCSV))
	}
	if cfg.OutputXLSX != "" {
		loaders = append(loaders, xlsx.NewWriter(cfg.OutputXLSX))
	}
	if cfg.OutputSQLite != "" {
		store, err := sqlite.Open(cfg.OutputSQLite)
		if err != nil {
			logger.Error("failed to open sqlite sink", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, store)
		closers = append(closers, store.Close)
	}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		closers = append(closers, writer.Close)
	}

	p := pipeline.New(builder, loaders, cfg.DatasetVersion, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	exitCode := 0
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline error", "error", err)
		exitCode = 1
	} else if !cfg.ExitOnComplete {
		logger.Info("run complete, serving until signalled")
		<-ctx.Done()
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	for _, c := range closers {
		if err := c(); err != nil {
			logger.Error("sink close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		cancel()
		stop()
		os.Exit(exitCode)
	}
}

func newSuitability(cfg *config.Config, logger *slog.Logger) (*pipeline.Suitability, error) {
	layers, err := raster.Layers(cfg.SuitabilityLayers)
	if err != nil {
		return nil, err
	}
	readers := raster.DefaultReaders()
	readers[".nc"] = netcdf.NewReader(cfg.NetCDFVariable)

	opts := raster.DefaultOptions()
	opts.RasterCRS = cfg.SuitabilityRasterCRS
	return &pipeline.Suitability{
		Processor:  raster.NewProcessor(readers, opts, logger),
		Layers:     layers,
		Boundaries: cfg.SuitabilityBoundaries,
		Fields:     raster.CountyFields(),
	}, nil
}
