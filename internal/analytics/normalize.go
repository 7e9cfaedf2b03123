// Package analytics turns raw delivery orders into the derived metrics,
// period buckets and filtered views behind the order dashboard. Every
// function is pure: inputs are never modified and results are fresh slices.
package analytics

import (
	"fmt"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
)

// Normalize derives duration and income rates for a single order.
func Normalize(order models.RawOrder) (models.EnrichedOrder, error) {
	createdAt, err := parseTimestamp(order.OrderNumber, "created_at", order.Times.CreatedAt)
	if err != nil {
		return models.EnrichedOrder{}, err
	}
	updatedAt, err := parseTimestamp(order.OrderNumber, "updated_at", order.Times.UpdatedAt)
	if err != nil {
		return models.EnrichedOrder{}, err
	}

	// truncates toward zero, so negative durations stay negative
	durationMinutes := int(updatedAt.Sub(createdAt) / time.Minute)

	var incomePerMinute float64
	if durationMinutes > 0 {
		incomePerMinute = order.FinalReceivedPayment / float64(durationMinutes)
	}

	return models.EnrichedOrder{
		RawOrder:        order,
		DurationMinutes: durationMinutes,
		Date:            createdAt,
		IncomePerMinute: incomePerMinute,
		IncomePerHour:   incomePerMinute * 60,
	}, nil
}

// NormalizeAll normalizes orders in input order and moves each Date into
// loc. A nil loc keeps the offset parsed from created_at. The first
// malformed order aborts the whole collection.
func NormalizeAll(orders []models.RawOrder, loc *time.Location) ([]models.EnrichedOrder, error) {
	enriched := make([]models.EnrichedOrder, 0, len(orders))
	for i, order := range orders {
		eo, err := Normalize(order)
		if err != nil {
			return nil, fmt.Errorf("order #%d: %w", i, err)
		}
		if loc != nil {
			eo.Date = eo.Date.In(loc)
		}
		enriched = append(enriched, eo)
	}
	return enriched, nil
}

func parseTimestamp(orderNumber, field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: order %s %s %q: %v", models.ErrMalformedTimestamp, orderNumber, field, value, err)
	}
	return t, nil
}
