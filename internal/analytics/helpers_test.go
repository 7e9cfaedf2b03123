package analytics

import (
	"testing"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/stretchr/testify/require"
)

func rawOrder(number, store string, state models.OrderState, created, updated string, payment float64) models.RawOrder {
	return models.RawOrder{
		OrderNumber:          number,
		StoreSlug:            store,
		StoreName:            store,
		State:                state,
		FinalReceivedPayment: payment,
		Pays: models.CourierPays{
			CourierPayEstimateWithoutPicking: payment * 0.8,
			CourierPayEstimateWithPicking:    payment,
			CourierPayFinalAmount:            payment,
		},
		Times: models.OrderTimes{
			CheckoutCompletedAt: created,
			CreatedAt:           created,
			UpdatedAt:           updated,
		},
	}
}

// enriched builds an order created at created lasting minutes.
func enriched(t *testing.T, number, store string, state models.OrderState, created string, minutes int, payment float64) models.EnrichedOrder {
	t.Helper()
	start, err := time.Parse(time.RFC3339, created)
	require.NoError(t, err)
	updated := start.Add(time.Duration(minutes) * time.Minute).Format(time.RFC3339)
	eo, err := Normalize(rawOrder(number, store, state, created, updated, payment))
	require.NoError(t, err)
	return eo
}

func sampleOrders(t *testing.T) []models.EnrichedOrder {
	return []models.EnrichedOrder{
		enriched(t, "A-1", "Market Kaufland Colentina", models.OrderStateComplete, "2024-01-01T10:00:00Z", 30, 30),
		enriched(t, "A-2", "Market Lidl Pipera", models.OrderStateCanceled, "2024-01-01T12:00:00Z", 5, 0),
		enriched(t, "A-3", "Market Kaufland Colentina", models.OrderStateComplete, "2024-01-03T09:15:00Z", 45, 27),
		enriched(t, "A-4", "Market Lidl Pipera", models.OrderStateComplete, "2024-01-07T23:30:00Z", 20, 16),
		enriched(t, "A-5", "Market Carrefour Baneasa", models.OrderStateComplete, "2024-01-08T00:10:00Z", 60, 42),
		enriched(t, "A-6", "Market Lidl Pipera", models.OrderStateCanceled, "2024-02-02T08:00:00Z", 0, 0),
	}
}

func orderNumbers(orders []models.EnrichedOrder) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderNumber)
	}
	return out
}
