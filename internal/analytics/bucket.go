package analytics

import (
	"fmt"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
)

// PeriodKeyFor returns the period containing t, evaluated in t's location.
// Weeks start on Monday (ISO 8601). An invalid grouping is a programming
// error and panics; validate user input with models.ParseTimeGrouping.
func PeriodKeyFor(t time.Time, grouping models.TimeGrouping) models.PeriodKey {
	year, month, day := t.Date()
	switch grouping {
	case models.GroupingDay:
		return models.PeriodKey{Grouping: grouping, Year: year, Month: month, Day: day}
	case models.GroupingWeek:
		sinceMonday := (int(t.Weekday()) + 6) % 7
		start := time.Date(year, month, day-sinceMonday, 0, 0, 0, 0, t.Location())
		y, m, d := start.Date()
		return models.PeriodKey{Grouping: grouping, Year: y, Month: m, Day: d}
	case models.GroupingMonth:
		return models.PeriodKey{Grouping: grouping, Year: year, Month: month, Day: 1}
	default:
		panic(fmt.Sprintf("analytics: unknown time grouping %q", grouping))
	}
}

// GroupByTime partitions orders by the period of their Date. Orders keep
// their input order inside a bucket.
func GroupByTime(orders []models.EnrichedOrder, grouping models.TimeGrouping) models.Buckets {
	buckets := make(models.Buckets)
	for _, o := range orders {
		key := PeriodKeyFor(o.Date, grouping)
		buckets[key] = append(buckets[key], o)
	}
	return buckets
}

// GroupByStore partitions orders by exact store name.
func GroupByStore(orders []models.EnrichedOrder) map[string][]models.EnrichedOrder {
	groups := make(map[string][]models.EnrichedOrder)
	for _, o := range orders {
		groups[o.StoreName] = append(groups[o.StoreName], o)
	}
	return groups
}
