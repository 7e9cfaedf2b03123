package analytics

import (
	"math"
	"testing"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreNames(t *testing.T) {
	orders := []models.RawOrder{
		{StoreName: "B"}, {StoreName: "A"}, {StoreName: "A"}, {StoreName: "C"},
	}
	assert.Equal(t, []string{"A", "B", "C"}, StoreNames(orders))
	assert.Equal(t, []string{}, StoreNames(nil))
	assert.Equal(t, []string{"B", "a", "b"}, StoreNames([]models.RawOrder{{StoreName: "b"}, {StoreName: "B"}, {StoreName: "a"}}))
}

func TestIncomeSeries(t *testing.T) {
	series := IncomeSeries(FilterByState(sampleOrders(t), false), models.GroupingWeek)

	require.Len(t, series, 2)
	assert.Equal(t, "2024-01-01", series[0].Period)
	assert.Equal(t, 3, series[0].Orders)
	assert.InDelta(t, 73, series[0].Income, 1e-9)
	assert.Equal(t, 95, series[0].Minutes)
	assert.InDelta(t, 73.0/95.0*60, series[0].AvgPerHour, 1e-9)

	assert.Equal(t, "2024-01-08", series[1].Period)
	assert.InDelta(t, 42, series[1].AvgPerHour, 1e-9)

	assert.Empty(t, IncomeSeries(nil, models.GroupingDay))
}

func TestIncomeSeriesIsChronological(t *testing.T) {
	orders := sampleOrders(t)
	reversed := make([]models.EnrichedOrder, 0, len(orders))
	for i := len(orders) - 1; i >= 0; i-- {
		reversed = append(reversed, orders[i])
	}

	series := IncomeSeries(reversed, models.GroupingDay)
	for i := 1; i < len(series); i++ {
		assert.True(t, series[i-1].Key.Before(series[i].Key), "%s before %s", series[i-1].Period, series[i].Period)
	}
}

func TestStoreComparison(t *testing.T) {
	points := StoreComparison(FilterByState(sampleOrders(t), true))

	require.Len(t, points, 3)
	assert.Equal(t, "Kaufland", points[0].Store)
	assert.Equal(t, "Market Kaufland Colentina", points[0].FullName)
	assert.InDelta(t, 57, points[0].Income, 1e-9)
	assert.Equal(t, 2, points[0].Orders)
	assert.Equal(t, "Carrefour", points[1].Store)
	assert.Equal(t, "Lidl", points[2].Store)
	assert.Equal(t, 3, points[2].Orders)
}

func TestShortStoreName(t *testing.T) {
	assert.Equal(t, "Kaufland", ShortStoreName("Market Kaufland Colentina"))
	assert.Equal(t, "Profi", ShortStoreName("Profi"))
	assert.Equal(t, "", ShortStoreName(""))
}

func TestQueryTable(t *testing.T) {
	orders := sampleOrders(t)

	tests := []struct {
		name      string
		query     models.TableQuery
		wantTotal int
		want      []string
	}{
		{
			name:      "default_is_newest_first",
			query:     models.TableQuery{},
			wantTotal: 6,
			want:      []string{"A-6", "A-5", "A-4", "A-3", "A-2", "A-1"},
		},
		{
			name:      "payment_ascending",
			query:     models.TableQuery{SortBy: models.SortByFinalReceivedPayment, Ascending: true},
			wantTotal: 6,
			want:      []string{"A-2", "A-6", "A-4", "A-3", "A-1", "A-5"},
		},
		{
			name:      "duration_descending",
			query:     models.TableQuery{SortBy: models.SortByDurationMinutes},
			wantTotal: 6,
			want:      []string{"A-5", "A-3", "A-1", "A-4", "A-2", "A-6"},
		},
		{
			name:      "search_store_case_insensitive",
			query:     models.TableQuery{Search: "LIDL", SortBy: models.SortByOrderNumber, Ascending: true},
			wantTotal: 3,
			want:      []string{"A-2", "A-4", "A-6"},
		},
		{
			name:      "search_state",
			query:     models.TableQuery{Search: "cancel"},
			wantTotal: 2,
			want:      []string{"A-6", "A-2"},
		},
		{
			name:      "paging",
			query:     models.TableQuery{Offset: 2, Limit: 3},
			wantTotal: 6,
			want:      []string{"A-4", "A-3", "A-2"},
		},
		{
			name:      "huge_limit_with_offset",
			query:     models.TableQuery{Offset: 4, Limit: math.MaxInt},
			wantTotal: 6,
			want:      []string{"A-2", "A-1"},
		},
		{
			name:      "offset_past_end",
			query:     models.TableQuery{Offset: 10, Limit: 3},
			wantTotal: 6,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := QueryTable(orders, tt.query)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.want, orderNumbers(page.Orders))
		})
	}

	assert.Equal(t, "A-1", orders[0].OrderNumber, "input must not be reordered")
}

func TestBuildDashboard(t *testing.T) {
	orders := sampleOrders(t)
	stores := []string{"Market Carrefour Baneasa", "Market Kaufland Colentina", "Market Lidl Pipera"}
	lidl := "Market Lidl Pipera"

	dash := BuildDashboard(orders, stores, models.DashboardQuery{
		Filters:  models.Filters{IncludeCanceled: true, Store: &lidl},
		Grouping: models.GroupingMonth,
	})

	assert.Equal(t, 3, dash.Summary.TotalOrders)
	assert.InDelta(t, 16, dash.Summary.TotalIncome, 1e-9)
	assert.Equal(t, models.StateCounts{Completed: 1, Canceled: 2}, dash.States)
	require.Len(t, dash.Series, 2)
	assert.Equal(t, "2024-01", dash.Series[0].Period)
	assert.Equal(t, "2024-02", dash.Series[1].Period)
	require.Len(t, dash.Stores, 1)
	assert.Equal(t, stores, dash.StoreNames)
	assert.Zero(t, dash.DataQuality.NegativeDurations)

	empty := BuildDashboard(nil, nil, models.DashboardQuery{Grouping: models.GroupingDay})
	assert.Equal(t, models.MetricsSummary{}, empty.Summary)
	assert.Empty(t, empty.Series)
	assert.Empty(t, empty.Stores)
}
