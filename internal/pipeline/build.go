package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/county-features-etl/internal/dataset"
	"github.com/couchcryptid/county-features-etl/internal/domain"
	"github.com/couchcryptid/county-features-etl/internal/observability"
	"github.com/couchcryptid/county-features-etl/internal/raster"
)

// Suitability configures the zonal statistics stage.
type Suitability struct {
	Processor  *raster.Processor
	Layers     []raster.Layer
	Boundaries string
	Fields     raster.BoundaryFields
}

// stage loads one dataset into one or more normalised tables.
type stage struct {
	name string
	load func(ctx context.Context, ref *domain.Reference) ([]*domain.Table, error)
}

// Builder loads every dataset and joins them onto the bounding-box table.
type Builder struct {
	paths       dataset.Paths
	opts        domain.Options
	suitability *Suitability
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewBuilder creates a Builder over the raw data layout.
func NewBuilder(paths dataset.Paths, opts domain.Options, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{paths: paths, opts: opts, logger: logger, metrics: metrics}
}

// WithSuitability enables the suitability stage. Pass nil to disable it.
func (b *Builder) WithSuitability(s *Suitability) *Builder {
	b.suitability = s
	return b
}

// Build validates the selectors, loads the reference tables and every
// dataset concurrently, then outer-joins them in a fixed order so the
// output does not depend on load timing. The first failing dataset cancels
// the others and aborts the build.
func (b *Builder) Build(ctx context.Context) (*domain.Table, error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}

	ref, err := dataset.LoadReference(b.paths)
	if err != nil {
		return nil, err
	}
	b.logger.Info("reference loaded", "counties", len(ref.Boxes()))

	stages := b.stages()
	results := make([][]*domain.Table, len(stages))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range stages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			tables, err := s.load(gctx, ref)
			if err != nil {
				b.metrics.DatasetErrors.WithLabelValues(s.name).Inc()
				return fmt.Errorf("load %s: %w", s.name, err)
			}
			b.metrics.DatasetLoadDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())

			rows := 0
			for _, t := range tables {
				rows += t.Len()
			}
			b.metrics.DatasetRows.WithLabelValues(s.name).Set(float64(rows))
			b.logger.Debug("dataset loaded", "dataset", s.name, "tables", len(tables), "rows", rows)
			results[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Wind and GDP are joined first and trimmed to the intensity and
	// per-capita columns, then hung off the bounding boxes.
	core, err := join(results[0], results[1]).Select(coreColumns()...)
	if err != nil {
		return nil, fmt.Errorf("select wind and gdp columns: %w", err)
	}
	features := ref.BaseTable().OuterJoin(core)
	for _, tables := range results[2:] {
		for _, t := range tables {
			features = features.OuterJoin(t)
		}
	}
	b.logger.Info("feature table built", "rows", features.Len(), "columns", len(features.Columns()))
	return features, nil
}

// coreColumns are the wind and GDP columns kept in the feature table.
func coreColumns() []string {
	cols := []string{dataset.ColWindCapacity, dataset.ColWindProjects, dataset.ColWindAvgCapacity}
	for _, y := range dataset.GDPYears {
		cols = append(cols, dataset.GDPColumn(y))
	}
	return cols
}

func join(a, b []*domain.Table) *domain.Table {
	all := append(append([]*domain.Table{}, a...), b...)
	out := all[0]
	for _, t := range all[1:] {
		out = out.OuterJoin(t)
	}
	return out
}

func one(t *domain.Table, err error) ([]*domain.Table, error) {
	if err != nil {
		return nil, err
	}
	return []*domain.Table{t}, nil
}

// stages lists the datasets in merge order.
func (b *Builder) stages() []stage {
	p := b.paths
	file := func(src dataset.Source, fn func(path string, ref *domain.Reference) (*domain.Table, error)) func(context.Context, *domain.Reference) ([]*domain.Table, error) {
		return func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			path, err := p.Path(src)
			if err != nil {
				return nil, err
			}
			return one(fn(path, ref))
		}
	}

	stages := []stage{
		{name: "wind", load: file(dataset.SourceWind, dataset.LoadWind)},
		{name: "gdp", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			gdp, err := p.Path(dataset.SourceGDP)
			if err != nil {
				return nil, err
			}
			pop, err := p.Path(dataset.SourcePopulation)
			if err != nil {
				return nil, err
			}
			return one(dataset.LoadGDP(gdp, pop, ref))
		}},
		{name: "solar", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			path, err := p.Path(dataset.SourceSolar)
			if err != nil {
				return nil, err
			}
			return dataset.LoadSolar(path, b.opts.Solar, ref)
		}},
		{name: "private_schools", load: file(dataset.SourcePrivateSchools, dataset.LoadPrivateSchools)},
		{name: "income", load: file(dataset.SourceIncome, dataset.LoadIncome)},
		{name: "unemployment", load: file(dataset.SourceUnemployment, dataset.LoadUnemployment)},
		{name: "race", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			return one(dataset.LoadRace(b.opts.Race, p, ref))
		}},
		{name: "solar_roof", load: file(dataset.SourceSolarRoof, dataset.LoadSolarRoof)},
		{name: "election", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			path, err := p.Path(dataset.SourceElection)
			if err != nil {
				return nil, err
			}
			return dataset.LoadElection(path, b.opts.Party, ref)
		}},
		{name: "education", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			path, err := p.Path(dataset.SourceEducation)
			if err != nil {
				return nil, err
			}
			return dataset.LoadEducation(path, b.opts.Education, ref)
		}},
		{name: "electric", load: func(_ context.Context, ref *domain.Reference) ([]*domain.Table, error) {
			return dataset.LoadElectric(b.opts.ElectricDataset, b.opts.ElectricClass, p, ref)
		}},
	}
	if b.opts.IncludeRuralUrban {
		stages = append(stages, stage{name: "rural_urban", load: file(dataset.SourceRuralUrban, dataset.LoadRuralUrban)})
	}
	if b.suitability != nil {
		stages = append(stages, stage{name: "suitability", load: b.loadSuitability})
	}
	return stages
}

func (b *Builder) loadSuitability(ctx context.Context, ref *domain.Reference) ([]*domain.Table, error) {
	s := b.suitability
	boundaries, crs, err := raster.ReadBoundaries(ctx, s.Boundaries, s.Fields)
	if err != nil {
		return nil, err
	}
	b.metrics.ZonalPolygons.Add(float64(len(boundaries)))
	return one(s.Processor.Process(ctx, s.Layers, boundaries, crs, ref))
}
