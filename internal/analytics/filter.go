package analytics

import "github.com/chrisdamba/orderpulse/internal/models"

// FilterByState keeps only complete orders unless includeCanceled is set,
// in which case every order passes.
func FilterByState(orders []models.EnrichedOrder, includeCanceled bool) []models.EnrichedOrder {
	if includeCanceled {
		return clone(orders)
	}
	return filter(orders, func(o models.EnrichedOrder) bool {
		return o.State == models.OrderStateComplete
	})
}

// FilterByStore keeps orders whose store name equals storeName exactly.
// A nil storeName passes every order.
func FilterByStore(orders []models.EnrichedOrder, storeName *string) []models.EnrichedOrder {
	if storeName == nil {
		return clone(orders)
	}
	name := *storeName
	return filter(orders, func(o models.EnrichedOrder) bool {
		return o.StoreName == name
	})
}

// ApplyFilters runs both predicates. Their order does not matter.
func ApplyFilters(orders []models.EnrichedOrder, f models.Filters) []models.EnrichedOrder {
	return FilterByStore(FilterByState(orders, f.IncludeCanceled), f.Store)
}

func filter(orders []models.EnrichedOrder, keep func(models.EnrichedOrder) bool) []models.EnrichedOrder {
	out := make([]models.EnrichedOrder, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func clone(orders []models.EnrichedOrder) []models.EnrichedOrder {
	out := make([]models.EnrichedOrder, len(orders))
	copy(out, orders)
	return out
}
