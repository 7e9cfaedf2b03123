package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createOrdersTable = `
    CREATE TABLE IF NOT EXISTS orders (
        order_number                   TEXT PRIMARY KEY,
        store_slug                     TEXT NOT NULL,
        store_name                     TEXT NOT NULL,
        state                          TEXT NOT NULL,
        pay_estimate_without_picking   DOUBLE PRECISION NOT NULL DEFAULT 0,
        pay_estimate_with_picking      DOUBLE PRECISION NOT NULL DEFAULT 0,
        pay_final_amount               DOUBLE PRECISION NOT NULL DEFAULT 0,
        final_received_payment         DOUBLE PRECISION NOT NULL DEFAULT 0,
        checkout_completed_at          TEXT,
        created_at                     TEXT NOT NULL,
        updated_at                     TEXT NOT NULL,
        shopper_allocation_notified_at TEXT,
        shopper_time_estimate_at       TEXT,
        shopper_allocation_deadline    TEXT,
        created_date                   TIMESTAMPTZ,
        duration_minutes               INTEGER,
        income_per_minute              DOUBLE PRECISION,
        income_per_hour                DOUBLE PRECISION
    )`

var orderColumns = []string{
	"order_number", "store_slug", "store_name", "state",
	"pay_estimate_without_picking", "pay_estimate_with_picking", "pay_final_amount",
	"final_received_payment",
	"checkout_completed_at", "created_at", "updated_at",
	"shopper_allocation_notified_at", "shopper_time_estimate_at", "shopper_allocation_deadline",
	"created_date", "duration_minutes", "income_per_minute", "income_per_hour",
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, createOrdersTable)
	return err
}

// BulkCreate copies orders with COPY; existing order numbers make it fail.
func (r *OrderRepository) BulkCreate(ctx context.Context, orders []models.EnrichedOrder) (int64, error) {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderValues(o))
	}
	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"orders"}, orderColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy orders: %w", err)
	}
	return n, nil
}

func (r *OrderRepository) Upsert(ctx context.Context, order models.EnrichedOrder) error {
	query := `
        INSERT INTO orders (
            order_number, store_slug, store_name, state,
            pay_estimate_without_picking, pay_estimate_with_picking, pay_final_amount,
            final_received_payment,
            checkout_completed_at, created_at, updated_at,
            shopper_allocation_notified_at, shopper_time_estimate_at, shopper_allocation_deadline,
            created_date, duration_minutes, income_per_minute, income_per_hour
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
        )
        ON CONFLICT (order_number) DO UPDATE SET
            store_slug = EXCLUDED.store_slug,
            store_name = EXCLUDED.store_name,
            state = EXCLUDED.state,
            pay_estimate_without_picking = EXCLUDED.pay_estimate_without_picking,
            pay_estimate_with_picking = EXCLUDED.pay_estimate_with_picking,
            pay_final_amount = EXCLUDED.pay_final_amount,
            final_received_payment = EXCLUDED.final_received_payment,
            checkout_completed_at = EXCLUDED.checkout_completed_at,
            created_at = EXCLUDED.created_at,
            updated_at = EXCLUDED.updated_at,
            shopper_allocation_notified_at = EXCLUDED.shopper_allocation_notified_at,
            shopper_time_estimate_at = EXCLUDED.shopper_time_estimate_at,
            shopper_allocation_deadline = EXCLUDED.shopper_allocation_deadline,
            created_date = EXCLUDED.created_date,
            duration_minutes = EXCLUDED.duration_minutes,
            income_per_minute = EXCLUDED.income_per_minute,
            income_per_hour = EXCLUDED.income_per_hour`

	_, err := r.pool.Exec(ctx, query, orderValues(order)...)
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// GetAll returns the raw orders, oldest first. The stored text timestamps
// are handed back untouched so the analytics engine parses them itself.
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.RawOrder, error) {
	query := `
        SELECT
            order_number, store_slug, store_name, state,
            pay_estimate_without_picking, pay_estimate_with_picking, pay_final_amount,
            final_received_payment,
            COALESCE(checkout_completed_at, ''), created_at, updated_at,
            COALESCE(shopper_allocation_notified_at, ''),
            COALESCE(shopper_time_estimate_at, ''),
            COALESCE(shopper_allocation_deadline, '')
        FROM orders
        ORDER BY created_date NULLS LAST, order_number`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.RawOrder
	for rows.Next() {
		var o models.RawOrder
		var state string
		err := rows.Scan(
			&o.OrderNumber,
			&o.StoreSlug,
			&o.StoreName,
			&state,
			&o.Pays.CourierPayEstimateWithoutPicking,
			&o.Pays.CourierPayEstimateWithPicking,
			&o.Pays.CourierPayFinalAmount,
			&o.FinalReceivedPayment,
			&o.Times.CheckoutCompletedAt,
			&o.Times.CreatedAt,
			&o.Times.UpdatedAt,
			&o.Times.ShopperAllocationNotifiedAt,
			&o.Times.ShopperTimeEstimateAt,
			&o.Times.ShopperAllocationDeadline,
		)
		if err != nil {
			return nil, err
		}
		o.State = models.OrderState(state)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE orders")
	return err
}

func orderValues(o models.EnrichedOrder) []any {
	return []any{
		o.OrderNumber,
		o.StoreSlug,
		o.StoreName,
		string(o.State),
		o.Pays.CourierPayEstimateWithoutPicking,
		o.Pays.CourierPayEstimateWithPicking,
		o.Pays.CourierPayFinalAmount,
		o.FinalReceivedPayment,
		nullableText(o.Times.CheckoutCompletedAt),
		o.Times.CreatedAt,
		o.Times.UpdatedAt,
		nullableText(o.Times.ShopperAllocationNotifiedAt),
		nullableText(o.Times.ShopperTimeEstimateAt),
		nullableText(o.Times.ShopperAllocationDeadline),
		o.Date,
		o.DurationMinutes,
		o.IncomePerMinute,
		o.IncomePerHour,
	}
}

func nullableText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
