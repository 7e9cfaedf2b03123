package analytics

import (
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/shopspring/decimal"
)

// Aggregate reduces orders into a MetricsSummary. Income per minute is the
// ratio of total income to total minutes, not a mean of per-order rates.
// Negative durations are summed as is.
func Aggregate(orders []models.EnrichedOrder) models.MetricsSummary {
	income := decimal.Zero
	totalMinutes := 0
	for _, o := range orders {
		income = income.Add(decimal.NewFromFloat(o.FinalReceivedPayment))
		totalMinutes += o.DurationMinutes
	}

	summary := models.MetricsSummary{
		TotalOrders:  len(orders),
		TotalIncome:  income.InexactFloat64(),
		TotalMinutes: totalMinutes,
	}
	if summary.TotalOrders > 0 {
		summary.AvgIncomePerOrder = summary.TotalIncome / float64(summary.TotalOrders)
		summary.AvgDurationMinutes = float64(totalMinutes) / float64(summary.TotalOrders)
	}
	if totalMinutes > 0 {
		summary.AvgIncomePerMinute = summary.TotalIncome / float64(totalMinutes)
	}
	summary.AvgIncomePerHour = summary.AvgIncomePerMinute * 60
	return summary
}

// CountStates counts complete and canceled orders.
func CountStates(orders []models.EnrichedOrder) models.StateCounts {
	var counts models.StateCounts
	for _, o := range orders {
		switch o.State {
		case models.OrderStateComplete:
			counts.Completed++
		case models.OrderStateCanceled:
			counts.Canceled++
		}
	}
	return counts
}

// InspectQuality lists orders whose update precedes their creation.
func InspectQuality(orders []models.EnrichedOrder) models.DataQuality {
	var dq models.DataQuality
	for _, o := range orders {
		if o.DurationMinutes < 0 {
			dq.NegativeDurations++
			dq.NegativeDurationOrders = append(dq.NegativeDurationOrders, o.OrderNumber)
		}
	}
	return dq
}
