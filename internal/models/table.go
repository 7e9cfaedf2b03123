package models

import (
	"fmt"
	"strings"
)

type SortColumn string

const (
	SortByOrderNumber          SortColumn = "order_number"
	SortByStoreName            SortColumn = "store_name"
	SortByDate                 SortColumn = "date"
	SortByDurationMinutes      SortColumn = "duration_minutes"
	SortByFinalReceivedPayment SortColumn = "final_received_payment"
	SortByIncomePerHour        SortColumn = "income_per_hour"
)

var sortColumns = map[SortColumn]struct{}{
	SortByOrderNumber:          {},
	SortByStoreName:            {},
	SortByDate:                 {},
	SortByDurationMinutes:      {},
	SortByFinalReceivedPayment: {},
	SortByIncomePerHour:        {},
}

// ParseSortColumn validates a table sort column. Empty selects date.
func ParseSortColumn(value string) (SortColumn, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return SortByDate, nil
	}
	c := SortColumn(v)
	if _, ok := sortColumns[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortColumn, value)
	}
	return c, nil
}

// TableQuery drives the order table. The zero value lists every order
// newest first.
type TableQuery struct {
	SortBy    SortColumn
	Ascending bool
	Search    string
	Offset    int
	Limit     int
}

type TablePage struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Orders []EnrichedOrder `json:"orders"`
}

// Filters are the dashboard filter controls. A nil Store selects every
// store.
type Filters struct {
	IncludeCanceled bool    `json:"includeCanceled"`
	Store           *string `json:"store,omitempty"`
}

type DashboardQuery struct {
	Filters
	Grouping TimeGrouping `json:"grouping"`
}

// Dashboard is everything the presentation layer renders for one filter
// selection.
type Dashboard struct {
	Query       DashboardQuery `json:"query"`
	Summary     MetricsSummary `json:"summary"`
	States      StateCounts    `json:"states"`
	Series      []PeriodPoint  `json:"series"`
	Stores      []StorePoint   `json:"stores"`
	StoreNames  []string       `json:"storeNames"`
	DataQuality DataQuality    `json:"dataQuality"`
}
