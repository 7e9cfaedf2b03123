// Package output publishes dashboard results to the configured sink:
// stdout, partitioned JSON/CSV/Parquet files, Kafka topics or Postgres.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
	"go.uber.org/zap"
)

const (
	TopicEnrichedOrders = "enriched_orders"
	TopicPeriodMetrics  = "period_metrics"
	TopicStoreMetrics   = "store_metrics"
	TopicSummary        = "summary"
)

type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// New picks the destination from the config. Kafka wins over the
// output format when enabled.
func New(ctx context.Context, config *models.Config, log *zap.Logger) (Destination, error) {
	if config.KafkaEnabled {
		return NewKafkaOutput(config, log)
	}

	switch config.OutputFormat {
	case "", "console":
		return NewConsoleOutput(), nil
	case "json":
		return NewJSONOutput(config.OutputPath, config.OutputFolder), nil
	case "csv":
		return NewCSVOutput(config.OutputPath, config.OutputFolder), nil
	case "parquet":
		return NewParquetOutput(ctx, config, log)
	case "postgres":
		return NewPostgresOutput(ctx, config.Database, log)
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownOutput, config.OutputFormat)
	}
}

// Publish writes the enriched orders followed by the dashboard's series,
// store comparison and summary. It returns the number of messages written.
func Publish(dest Destination, dashboard models.Dashboard, enriched []models.EnrichedOrder) (int, error) {
	asOf := latestDate(enriched)
	scope := scopeOf(dashboard.Query.Filters)
	written := 0

	send := func(topic string, record any) error {
		msg, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal %s record: %w", topic, err)
		}
		if err := dest.WriteMessage(topic, msg); err != nil {
			return fmt.Errorf("write %s record: %w", topic, err)
		}
		written++
		return nil
	}

	for _, o := range enriched {
		if err := send(TopicEnrichedOrders, newEnrichedRecord(o)); err != nil {
			return written, err
		}
	}
	for _, p := range dashboard.Series {
		if err := send(TopicPeriodMetrics, newPeriodRecord(dashboard.Query.Grouping, scope, p)); err != nil {
			return written, err
		}
	}
	for _, s := range dashboard.Stores {
		if err := send(TopicStoreMetrics, newStoreRecord(scope, asOf, s)); err != nil {
			return written, err
		}
	}
	if err := send(TopicSummary, newSummaryRecord(dashboard, scope, asOf)); err != nil {
		return written, err
	}
	return written, nil
}

func scopeOf(f models.Filters) string {
	if f.Store == nil {
		return "all"
	}
	return *f.Store
}

// latestDate stamps the store and summary records with the newest order
// so repeated exports of one dataset land in the same partition.
func latestDate(orders []models.EnrichedOrder) time.Time {
	var latest time.Time
	for _, o := range orders {
		if o.Date.After(latest) {
			latest = o.Date
		}
	}
	if latest.IsZero() {
		return time.Now()
	}
	return latest
}

// partitionDir reads the record timestamp and returns the
// topic/year=/month=/day= directory under base.
func partitionDir(base, folder, topic string, msg []byte) (string, string, error) {
	var stamp struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &stamp); err != nil {
		return "", "", err
	}
	if stamp.Timestamp == nil {
		return "", "", fmt.Errorf("invalid timestamp")
	}

	year, month, day := time.Unix(*stamp.Timestamp, 0).UTC().Date()
	partitionPath := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
	return filepath.Join(base, folder, topic, partitionPath), partitionPath, nil
}
