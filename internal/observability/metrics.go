package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "county_features"

// Metrics holds the Prometheus counters, histograms, and gauges for a feature-table build.
type Metrics struct {
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram
	OutputRows      prometheus.Gauge

	// Per-dataset metrics.
	DatasetRows         *prometheus.GaugeVec     // labels: dataset
	DatasetLoadDuration *prometheus.HistogramVec // labels: dataset
	DatasetErrors       *prometheus.CounterVec   // labels: dataset

	// Sink metrics.
	SinkWrites *prometheus.CounterVec // labels: sink, outcome={success,error}

	// Zonal statistics.
	ZonalPolygons prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRunning,
		m.RunDuration,
		m.OutputRows,
		m.DatasetRows,
		m.DatasetLoadDuration,
		m.DatasetErrors,
		m.SinkWrites,
		m.ZonalPolygons,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a build is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete load-join-write run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		OutputRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "output_rows",
			Help:      "Rows in the last built feature table.",
		}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows per normalised dataset table.",
		}, []string{"dataset"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Time spent reading and normalising a dataset.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"dataset"}),
		DatasetErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_errors_total",
			Help:      "Dataset load failures.",
		}, []string{"dataset"}),
		SinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Feature table writes by sink and outcome.",
		}, []string{"sink", "outcome"}),
		ZonalPolygons: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zonal_polygons_total",
			Help:      "Polygons aggregated by the suitability step.",
		}),
	}
}
