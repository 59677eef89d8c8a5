package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("dataset skipped", "dataset", "wind")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "dataset skipped", entry["msg"])
	assert.Equal(t, "wind", entry["dataset"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "debug", "text").Debug("reading", "path", "gdp_raw.csv")
	assert.Contains(t, buf.String(), "path=gdp_raw.csv")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	m.DatasetRows.WithLabelValues("wind").Set(42)
	m.SinkWrites.WithLabelValues("csv", "success").Inc()

	assert.InDelta(t, 42.0, testutil.ToFloat64(m.DatasetRows.WithLabelValues("wind")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.SinkWrites.WithLabelValues("csv", "success")), 1e-9)
}
