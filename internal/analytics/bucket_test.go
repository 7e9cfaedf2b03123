package analytics

import (
	"testing"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKeyFor(t *testing.T) {
	tests := []struct {
		name     string
		at       string
		grouping models.TimeGrouping
		want     string
	}{
		{name: "day", at: "2024-01-03T23:59:59Z", grouping: models.GroupingDay, want: "2024-01-03"},
		{name: "month", at: "2024-02-29T12:00:00Z", grouping: models.GroupingMonth, want: "2024-02"},
		// weeks start on Monday
		{name: "week_monday_is_own_anchor", at: "2024-01-08T00:10:00Z", grouping: models.GroupingWeek, want: "2024-01-08"},
		{name: "week_wednesday", at: "2024-01-10T15:00:00Z", grouping: models.GroupingWeek, want: "2024-01-08"},
		{name: "week_sunday_belongs_to_previous_monday", at: "2024-01-07T23:30:00Z", grouping: models.GroupingWeek, want: "2024-01-01"},
		{name: "week_crosses_year", at: "2024-01-02T09:00:00Z", grouping: models.GroupingWeek, want: "2024-01-01"},
		{name: "week_crosses_month", at: "2024-03-02T09:00:00Z", grouping: models.GroupingWeek, want: "2024-02-26"},
		{name: "week_into_previous_year", at: "2023-01-01T09:00:00Z", grouping: models.GroupingWeek, want: "2022-12-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, err := time.Parse(time.RFC3339, tt.at)
			require.NoError(t, err)
			key := PeriodKeyFor(at, tt.grouping)
			assert.Equal(t, tt.want, key.String())
			assert.Equal(t, tt.grouping, key.Grouping)
		})
	}
}

func TestPeriodKeyForUsesDateLocation(t *testing.T) {
	bucharest, err := time.LoadLocation("Europe/Bucharest")
	require.NoError(t, err)
	at := time.Date(2024, 1, 31, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-01", PeriodKeyFor(at, models.GroupingMonth).String())
	assert.Equal(t, "2024-02", PeriodKeyFor(at.In(bucharest), models.GroupingMonth).String())
}

func TestPeriodKeyForUnknownGroupingPanics(t *testing.T) {
	assert.Panics(t, func() {
		PeriodKeyFor(time.Now(), models.TimeGrouping("quarter"))
	})
}

func TestGroupByTimeIsPartition(t *testing.T) {
	orders := sampleOrders(t)

	for _, grouping := range []models.TimeGrouping{models.GroupingDay, models.GroupingWeek, models.GroupingMonth} {
		t.Run(string(grouping), func(t *testing.T) {
			buckets := GroupByTime(orders, grouping)

			seen := make(map[string]int)
			total := 0
			for key, bucket := range buckets {
				require.NotEmpty(t, bucket)
				for _, o := range bucket {
					assert.Equal(t, key, PeriodKeyFor(o.Date, grouping))
					seen[o.OrderNumber]++
					total++
				}
			}
			assert.Equal(t, len(orders), total)
			for _, o := range orders {
				assert.Equal(t, 1, seen[o.OrderNumber], "order %s must land in exactly one bucket", o.OrderNumber)
			}
		})
	}
}

func TestGroupByTimeBuckets(t *testing.T) {
	orders := sampleOrders(t)

	weeks := GroupByTime(orders, models.GroupingWeek)
	keys := weeks.SortedKeys()
	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-29"}, got)
	assert.Equal(t, []string{"A-1", "A-2", "A-3", "A-4"}, orderNumbers(weeks[keys[0]]))

	months := GroupByTime(orders, models.GroupingMonth)
	assert.Len(t, months, 2)
	assert.Equal(t, []string{"A-6"}, orderNumbers(months[models.PeriodKey{Grouping: models.GroupingMonth, Year: 2024, Month: time.February, Day: 1}]))

	days := GroupByTime(orders, models.GroupingDay)
	assert.Len(t, days, 5)
	assert.Equal(t, []string{"A-1", "A-2"}, orderNumbers(days[models.PeriodKey{Grouping: models.GroupingDay, Year: 2024, Month: time.January, Day: 1}]))
}

func TestGroupByTimeEmpty(t *testing.T) {
	assert.Empty(t, GroupByTime(nil, models.GroupingDay))
	assert.Empty(t, GroupByTime([]models.EnrichedOrder{}, models.GroupingMonth))
}

func TestGroupByStore(t *testing.T) {
	groups := GroupByStore(sampleOrders(t))
	assert.Len(t, groups, 3)
	assert.Equal(t, []string{"A-2", "A-4", "A-6"}, orderNumbers(groups["Market Lidl Pipera"]))
}
