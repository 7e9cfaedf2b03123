package output

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/chrisdamba/orderpulse/internal/repositories"
	"github.com/chrisdamba/orderpulse/internal/repositories/postgres"
	"go.uber.org/zap"
)

// PostgresOutput upserts every record into the orders and metrics tables,
// so re-exporting a dataset replaces rows instead of duplicating them.
type PostgresOutput struct {
	ctx     context.Context
	orders  repositories.OrderRepository
	metrics repositories.MetricsRepository
	closeFn func()
	log     *zap.Logger
}

func NewPostgresOutput(ctx context.Context, config models.DatabaseConfig, log *zap.Logger) (*PostgresOutput, error) {
	pool, err := postgres.NewPool(ctx, config)
	if err != nil {
		return nil, err
	}

	p := newPostgresOutput(ctx, postgres.NewOrderRepository(pool), postgres.NewMetricsRepository(pool), log)
	p.closeFn = pool.Close
	if err := p.orders.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create orders schema: %w", err)
	}
	if err := p.metrics.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create metrics schema: %w", err)
	}
	return p, nil
}

func newPostgresOutput(ctx context.Context, orders repositories.OrderRepository, metrics repositories.MetricsRepository, log *zap.Logger) *PostgresOutput {
	return &PostgresOutput{ctx: ctx, orders: orders, metrics: metrics, log: log}
}

func (p *PostgresOutput) WriteMessage(topic string, msg []byte) error {
	switch topic {
	case TopicEnrichedOrders:
		var r EnrichedRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			return err
		}
		return p.orders.Upsert(p.ctx, r.EnrichedOrder)

	case TopicPeriodMetrics:
		var r PeriodRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			return err
		}
		if !r.Grouping.IsValid() {
			return fmt.Errorf("%w: %q", models.ErrUnknownGrouping, r.Grouping)
		}
		point := models.PeriodPoint{
			Key:        analytics.PeriodKeyFor(time.Unix(r.Timestamp, 0).UTC(), r.Grouping),
			Period:     r.Period,
			Income:     r.Income,
			Orders:     r.Orders,
			Minutes:    r.Minutes,
			AvgPerHour: r.AvgPerHour,
		}
		return p.metrics.UpsertPeriod(p.ctx, r.Grouping, r.Scope, point)

	case TopicStoreMetrics:
		var r StoreRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			return err
		}
		return p.metrics.UpsertStore(p.ctx, r.Scope, models.StorePoint{
			Store:      r.Store,
			FullName:   r.FullName,
			Income:     r.Income,
			Orders:     r.Orders,
			AvgPerHour: r.AvgPerHour,
		})

	case TopicSummary:
		var r SummaryRecord
		if err := json.Unmarshal(msg, &r); err != nil {
			return err
		}
		states := models.StateCounts{Completed: r.Completed, Canceled: r.Canceled}
		return p.metrics.UpsertSummary(p.ctx, r.Scope, time.Unix(r.Timestamp, 0).UTC(), r.MetricsSummary, states)

	default:
		p.log.Warn("dropping message for unknown topic", zap.String("topic", topic))
		return nil
	}
}

func (p *PostgresOutput) Close() error {
	if p.closeFn != nil {
		p.closeFn()
		p.closeFn = nil
	}
	return nil
}
