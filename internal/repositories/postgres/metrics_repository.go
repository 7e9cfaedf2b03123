package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MetricsRepository stores dashboard aggregates. scope names the filter
// selection they were computed under, e.g. "all" or a store name.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

func (r *MetricsRepository) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS period_metrics (
            grouping     TEXT NOT NULL,
            scope        TEXT NOT NULL,
            period       TEXT NOT NULL,
            period_start DATE NOT NULL,
            income       DOUBLE PRECISION NOT NULL,
            orders       INTEGER NOT NULL,
            minutes      INTEGER NOT NULL,
            avg_per_hour DOUBLE PRECISION NOT NULL,
            PRIMARY KEY (grouping, scope, period)
        )`,
		`CREATE TABLE IF NOT EXISTS store_metrics (
            scope        TEXT NOT NULL,
            store_name   TEXT NOT NULL,
            short_name   TEXT NOT NULL,
            income       DOUBLE PRECISION NOT NULL,
            orders       INTEGER NOT NULL,
            avg_per_hour DOUBLE PRECISION NOT NULL,
            PRIMARY KEY (scope, store_name)
        )`,
		`CREATE TABLE IF NOT EXISTS summary_metrics (
            scope                 TEXT PRIMARY KEY,
            as_of                 TIMESTAMPTZ NOT NULL,
            total_orders          INTEGER NOT NULL,
            total_income          DOUBLE PRECISION NOT NULL,
            total_minutes         INTEGER NOT NULL,
            avg_income_per_order  DOUBLE PRECISION NOT NULL,
            avg_income_per_minute DOUBLE PRECISION NOT NULL,
            avg_income_per_hour   DOUBLE PRECISION NOT NULL,
            avg_duration_minutes  DOUBLE PRECISION NOT NULL,
            completed             INTEGER NOT NULL,
            canceled              INTEGER NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MetricsRepository) UpsertPeriod(ctx context.Context, grouping models.TimeGrouping, scope string, point models.PeriodPoint) error {
	query := `
        INSERT INTO period_metrics (grouping, scope, period, period_start, income, orders, minutes, avg_per_hour)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (grouping, scope, period) DO UPDATE SET
            income = EXCLUDED.income,
            orders = EXCLUDED.orders,
            minutes = EXCLUDED.minutes,
            avg_per_hour = EXCLUDED.avg_per_hour`

	_, err := r.pool.Exec(ctx, query,
		string(grouping),
		scope,
		point.Period,
		point.Key.Start(nil),
		point.Income,
		point.Orders,
		point.Minutes,
		point.AvgPerHour,
	)
	if err != nil {
		return fmt.Errorf("upsert period %s: %w", point.Period, err)
	}
	return nil
}

func (r *MetricsRepository) UpsertStore(ctx context.Context, scope string, point models.StorePoint) error {
	query := `
        INSERT INTO store_metrics (scope, store_name, short_name, income, orders, avg_per_hour)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (scope, store_name) DO UPDATE SET
            short_name = EXCLUDED.short_name,
            income = EXCLUDED.income,
            orders = EXCLUDED.orders,
            avg_per_hour = EXCLUDED.avg_per_hour`

	_, err := r.pool.Exec(ctx, query,
		scope,
		point.FullName,
		point.Store,
		point.Income,
		point.Orders,
		point.AvgPerHour,
	)
	if err != nil {
		return fmt.Errorf("upsert store %s: %w", point.FullName, err)
	}
	return nil
}

func (r *MetricsRepository) UpsertSummary(ctx context.Context, scope string, asOf time.Time, summary models.MetricsSummary, states models.StateCounts) error {
	query := `
        INSERT INTO summary_metrics (
            scope, as_of, total_orders, total_income, total_minutes,
            avg_income_per_order, avg_income_per_minute, avg_income_per_hour, avg_duration_minutes,
            completed, canceled
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (scope) DO UPDATE SET
            as_of = EXCLUDED.as_of,
            total_orders = EXCLUDED.total_orders,
            total_income = EXCLUDED.total_income,
            total_minutes = EXCLUDED.total_minutes,
            avg_income_per_order = EXCLUDED.avg_income_per_order,
            avg_income_per_minute = EXCLUDED.avg_income_per_minute,
            avg_income_per_hour = EXCLUDED.avg_income_per_hour,
            avg_duration_minutes = EXCLUDED.avg_duration_minutes,
            completed = EXCLUDED.completed,
            canceled = EXCLUDED.canceled`

	_, err := r.pool.Exec(ctx, query,
		scope,
		asOf,
		summary.TotalOrders,
		summary.TotalIncome,
		summary.TotalMinutes,
		summary.AvgIncomePerOrder,
		summary.AvgIncomePerMinute,
		summary.AvgIncomePerHour,
		summary.AvgDurationMinutes,
		states.Completed,
		states.Canceled,
	)
	if err != nil {
		return fmt.Errorf("upsert summary %s: %w", scope, err)
	}
	return nil
}
