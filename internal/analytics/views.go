package analytics

import (
	"sort"
	"strings"

	"github.com/chrisdamba/orderpulse/internal/models"
)

// IncomeSeries aggregates each period of orders and returns the points in
// chronological order.
func IncomeSeries(orders []models.EnrichedOrder, grouping models.TimeGrouping) []models.PeriodPoint {
	buckets := GroupByTime(orders, grouping)
	points := make([]models.PeriodPoint, 0, len(buckets))
	for _, key := range buckets.SortedKeys() {
		m := Aggregate(buckets[key])
		points = append(points, models.PeriodPoint{
			Key:        key,
			Period:     key.String(),
			Income:     m.TotalIncome,
			Orders:     m.TotalOrders,
			AvgPerHour: m.AvgIncomePerHour,
			Minutes:    m.TotalMinutes,
		})
	}
	return points
}

// StoreComparison aggregates orders per store, highest income first.
func StoreComparison(orders []models.EnrichedOrder) []models.StorePoint {
	groups := GroupByStore(orders)
	points := make([]models.StorePoint, 0, len(groups))
	for name, storeOrders := range groups {
		m := Aggregate(storeOrders)
		points = append(points, models.StorePoint{
			Store:      ShortStoreName(name),
			FullName:   name,
			Income:     m.TotalIncome,
			Orders:     m.TotalOrders,
			AvgPerHour: m.AvgIncomePerHour,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Income != points[j].Income {
			return points[i].Income > points[j].Income
		}
		return points[i].FullName < points[j].FullName
	})
	return points
}

// ShortStoreName drops the first "Market " and keeps the first word, so
// "Market Kaufland Colentina" becomes "Kaufland".
func ShortStoreName(name string) string {
	short := strings.Replace(name, "Market ", "", 1)
	return strings.Split(short, " ")[0]
}

// QueryTable searches, sorts and pages orders for the order table.
func QueryTable(orders []models.EnrichedOrder, q models.TableQuery) models.TablePage {
	rows := orders
	if needle := strings.ToLower(strings.TrimSpace(q.Search)); needle != "" {
		rows = filter(orders, func(o models.EnrichedOrder) bool {
			return strings.Contains(strings.ToLower(o.OrderNumber), needle) ||
				strings.Contains(strings.ToLower(o.StoreName), needle) ||
				strings.Contains(strings.ToLower(string(o.State)), needle)
		})
	} else {
		rows = clone(orders)
	}

	less := lessFor(q.SortBy)
	sort.SliceStable(rows, func(i, j int) bool {
		if q.Ascending {
			return less(rows[i], rows[j])
		}
		return less(rows[j], rows[i])
	})

	total := len(rows)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if q.Limit > 0 && q.Limit < total-offset {
		end = offset + q.Limit
	}

	return models.TablePage{
		Total:  total,
		Offset: offset,
		Orders: rows[offset:end],
	}
}

func lessFor(column models.SortColumn) func(a, b models.EnrichedOrder) bool {
	switch column {
	case models.SortByOrderNumber:
		return func(a, b models.EnrichedOrder) bool { return a.OrderNumber < b.OrderNumber }
	case models.SortByStoreName:
		return func(a, b models.EnrichedOrder) bool { return a.StoreName < b.StoreName }
	case models.SortByDurationMinutes:
		return func(a, b models.EnrichedOrder) bool { return a.DurationMinutes < b.DurationMinutes }
	case models.SortByFinalReceivedPayment:
		return func(a, b models.EnrichedOrder) bool { return a.FinalReceivedPayment < b.FinalReceivedPayment }
	case models.SortByIncomePerHour:
		return func(a, b models.EnrichedOrder) bool { return a.IncomePerHour < b.IncomePerHour }
	default:
		return func(a, b models.EnrichedOrder) bool { return a.Date.Before(b.Date) }
	}
}

// BuildDashboard filters orders once and derives every dashboard view from
// the filtered set. stores is the directory computed from the raw dataset.
func BuildDashboard(orders []models.EnrichedOrder, stores []string, q models.DashboardQuery) models.Dashboard {
	filtered := ApplyFilters(orders, q.Filters)
	return models.Dashboard{
		Query:       q,
		Summary:     Aggregate(filtered),
		States:      CountStates(filtered),
		Series:      IncomeSeries(filtered, q.Grouping),
		Stores:      StoreComparison(filtered),
		StoreNames:  stores,
		DataQuality: InspectQuality(filtered),
	}
}
