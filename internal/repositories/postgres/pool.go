package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/chrisdamba/orderpulse/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ repositories.OrderRepository   = (*OrderRepository)(nil)
	_ repositories.MetricsRepository = (*MetricsRepository)(nil)
)

// NewPool connects to the configured database and verifies the connection.
func NewPool(ctx context.Context, cfg models.DatabaseConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	return pool, nil
}
