package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/county-features-etl/internal/domain"
	"github.com/couchcryptid/county-features-etl/internal/observability"
)

// TableBuilder produces the joined feature table.
type TableBuilder interface {
	Build(ctx context.Context) (*domain.Table, error)
}

// Loader writes a feature table to a destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, t *domain.Table, run domain.RunInfo) error
}

// Pipeline builds the feature table once and hands it to every loader.
type Pipeline struct {
	builder TableBuilder
	loaders []Loader
	version string
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool

	mu      sync.Mutex
	lastRun domain.RunSummary
}

// New creates a Pipeline with the given builder, sinks and observability.
func New(b TableBuilder, loaders []Loader, version string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		builder: b,
		loaders: loaders,
		version: version,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once a run has written its table to every sink,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("feature table has not been built yet")
	}
	return nil
}

// Run builds the table and writes it to the loaders in order. Any failure
// aborts the run; there are no retries.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	p.logger.Info("pipeline started", "sinks", len(p.loaders))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	table, err := p.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build feature table: %w", err)
	}
	p.metrics.OutputRows.Set(float64(table.Len()))

	run := domain.RunInfo{Version: p.version, GeneratedAt: domain.Now()}
	for _, l := range p.loaders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.Load(ctx, table, run); err != nil {
			p.metrics.SinkWrites.WithLabelValues(l.Name(), "error").Inc()
			return fmt.Errorf("write %s: %w", l.Name(), err)
		}
		p.metrics.SinkWrites.WithLabelValues(l.Name(), "success").Inc()
		p.logger.Info("feature table written", "sink", l.Name(), "rows", table.Len())
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.mu.Lock()
	p.lastRun = domain.RunSummary{
		Version:     run.Version,
		GeneratedAt: run.GeneratedAt,
		Rows:        table.Len(),
		Columns:     table.Header(),
	}
	p.mu.Unlock()
	p.ready.Store(true)
	p.logger.Info("pipeline finished", "rows", table.Len(), "duration", time.Since(start))
	return nil
}

// LastRun returns the summary of the last successful run.
func (p *Pipeline) LastRun() (domain.RunSummary, bool) {
	if !p.ready.Load() {
		return domain.RunSummary{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun, true
}
