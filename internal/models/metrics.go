package models

// MetricsSummary holds aggregate statistics over a collection of enriched
// orders. Averages are zero when their denominator is not positive.
type MetricsSummary struct {
	TotalOrders        int     `json:"totalOrders"`
	TotalIncome        float64 `json:"totalIncome"`
	TotalMinutes       int     `json:"totalMinutes"`
	AvgIncomePerOrder  float64 `json:"avgIncomePerOrder"`
	AvgIncomePerMinute float64 `json:"avgIncomePerMinute"`
	AvgIncomePerHour   float64 `json:"avgIncomePerHour"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
}

type StateCounts struct {
	Completed int `json:"completed"`
	Canceled  int `json:"canceled"`
}

// PeriodPoint is one point of the income time series.
type PeriodPoint struct {
	Key        PeriodKey `json:"-"`
	Period     string    `json:"period"`
	Income     float64   `json:"income"`
	Orders     int       `json:"orders"`
	AvgPerHour float64   `json:"avgPerHour"`
	Minutes    int       `json:"minutes"`
}

// StorePoint is one bar of the per-store comparison.
type StorePoint struct {
	Store      string  `json:"store"`
	FullName   string  `json:"fullName"`
	Income     float64 `json:"income"`
	Orders     int     `json:"orders"`
	AvgPerHour float64 `json:"avgPerHour"`
}

// DataQuality reports anomalies that are passed through rather than fixed.
type DataQuality struct {
	NegativeDurations      int      `json:"negativeDurations"`
	NegativeDurationOrders []string `json:"negativeDurationOrders,omitempty"`
}
