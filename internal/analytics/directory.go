package analytics

import (
	"sort"

	"github.com/chrisdamba/orderpulse/internal/models"
)

// StoreNames returns the distinct store names of orders in byte-wise
// lexicographic order.
func StoreNames(orders []models.RawOrder) []string {
	seen := make(map[string]struct{}, len(orders))
	names := make([]string, 0)
	for _, o := range orders {
		if _, ok := seen[o.StoreName]; ok {
			continue
		}
		seen[o.StoreName] = struct{}{}
		names = append(names, o.StoreName)
	}
	sort.Strings(names)
	return names
}
