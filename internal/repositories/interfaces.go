package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
)

type OrderRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkCreate(ctx context.Context, orders []models.EnrichedOrder) (int64, error)
	Upsert(ctx context.Context, order models.EnrichedOrder) error
	GetAll(ctx context.Context) ([]models.RawOrder, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type MetricsRepository interface {
	EnsureSchema(ctx context.Context) error
	UpsertPeriod(ctx context.Context, grouping models.TimeGrouping, scope string, point models.PeriodPoint) error
	UpsertStore(ctx context.Context, scope string, point models.StorePoint) error
	UpsertSummary(ctx context.Context, scope string, asOf time.Time, summary models.MetricsSummary, states models.StateCounts) error
}
