package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/county-features-etl/internal/config"
	"github.com/couchcryptid/county-features-etl/internal/domain"
)

// batchSize caps the messages per WriteMessages call.
const batchSize = 500

// Writer publishes one message per feature row to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load serializes every row and publishes them in batches. Rows are keyed
// by state|county[|zone] so updates of a county land on one partition.
func (w *Writer) Load(ctx context.Context, t *domain.Table, run domain.RunInfo) error {
	rows := t.Rows()
	columns, labels := t.Columns(), t.Labels()

	msgs := make([]kafkago.Message, 0, min(len(rows), batchSize))
	for _, r := range rows {
		msg, err := serializeToMessage(r, columns, labels, run)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
		if len(msgs) == batchSize {
			if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
				return fmt.Errorf("publish feature rows: %w", err)
			}
			msgs = msgs[:0]
		}
	}
	if len(msgs) > 0 {
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish feature rows: %w", err)
		}
	}
	w.logger.Debug("feature rows published", "topic", w.writer.Topic, "rows", len(rows))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a row into a JSON object of its key, labels
// and values. Missing values are null.
func serializeToMessage(r domain.Row, columns, labels []string, run domain.RunInfo) (kafkago.Message, error) {
	doc := make(map[string]any, 3+len(columns)+len(labels))
	doc[domain.ColState] = r.Key.State
	doc[domain.ColCounty] = r.Key.County
	if r.Key.Zone != "" {
		doc[domain.ColZone] = r.Key.Zone
	}
	for i, c := range labels {
		doc[c] = r.Labels[i]
	}
	for i, c := range columns {
		if math.IsNaN(r.Values[i]) {
			doc[c] = nil
			continue
		}
		doc[c] = r.Values[i]
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize feature row %s: %w", r.Key, err)
	}
	return kafkago.Message{
		Key:   []byte(r.Key.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset_version", Value: []byte(run.Version)},
			{Key: "generated_at", Value: []byte(run.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
