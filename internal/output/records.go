package output

import (
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
)

type EnrichedRecord struct {
	models.EnrichedOrder
	Timestamp int64 `json:"timestamp"`
}

type PeriodRecord struct {
	Timestamp  int64               `json:"timestamp"`
	Grouping   models.TimeGrouping `json:"grouping"`
	Scope      string              `json:"scope"`
	Period     string              `json:"period"`
	Income     float64             `json:"income"`
	Orders     int                 `json:"orders"`
	Minutes    int                 `json:"minutes"`
	AvgPerHour float64             `json:"avgPerHour"`
}

type StoreRecord struct {
	Timestamp  int64   `json:"timestamp"`
	Scope      string  `json:"scope"`
	Store      string  `json:"store"`
	FullName   string  `json:"fullName"`
	Income     float64 `json:"income"`
	Orders     int     `json:"orders"`
	AvgPerHour float64 `json:"avgPerHour"`
}

type SummaryRecord struct {
	models.MetricsSummary
	Timestamp         int64               `json:"timestamp"`
	Scope             string              `json:"scope"`
	Grouping          models.TimeGrouping `json:"grouping"`
	Completed         int                 `json:"completed"`
	Canceled          int                 `json:"canceled"`
	NegativeDurations int                 `json:"negativeDurations"`
}

func newEnrichedRecord(o models.EnrichedOrder) EnrichedRecord {
	return EnrichedRecord{EnrichedOrder: o, Timestamp: o.Date.Unix()}
}

// period records are stamped with the UTC start of their period
func newPeriodRecord(grouping models.TimeGrouping, scope string, p models.PeriodPoint) PeriodRecord {
	return PeriodRecord{
		Timestamp:  p.Key.Start(nil).Unix(),
		Grouping:   grouping,
		Scope:      scope,
		Period:     p.Period,
		Income:     p.Income,
		Orders:     p.Orders,
		Minutes:    p.Minutes,
		AvgPerHour: p.AvgPerHour,
	}
}

func newStoreRecord(scope string, asOf time.Time, s models.StorePoint) StoreRecord {
	return StoreRecord{
		Timestamp:  asOf.Unix(),
		Scope:      scope,
		Store:      s.Store,
		FullName:   s.FullName,
		Income:     s.Income,
		Orders:     s.Orders,
		AvgPerHour: s.AvgPerHour,
	}
}

func newSummaryRecord(d models.Dashboard, scope string, asOf time.Time) SummaryRecord {
	return SummaryRecord{
		MetricsSummary:    d.Summary,
		Timestamp:         asOf.Unix(),
		Scope:             scope,
		Grouping:          d.Query.Grouping,
		Completed:         d.States.Completed,
		Canceled:          d.States.Canceled,
		NegativeDurations: d.DataQuality.NegativeDurations,
	}
}

// Parquet rows. parquet-go needs a static schema per topic, so the nested
// pays/times blocks of an order are flattened.

type enrichedRow struct {
	Timestamp                        int64   `parquet:"name=timestamp, type=INT64"`
	OrderNumber                      string  `parquet:"name=order_number, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StoreSlug                        string  `parquet:"name=store_slug, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	StoreName                        string  `parquet:"name=store_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	State                            string  `parquet:"name=state, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CourierPayEstimateWithoutPicking float64 `parquet:"name=courier_pay_estimate_without_picking, type=DOUBLE"`
	CourierPayEstimateWithPicking    float64 `parquet:"name=courier_pay_estimate_with_picking, type=DOUBLE"`
	CourierPayFinalAmount            float64 `parquet:"name=courier_pay_final_amount, type=DOUBLE"`
	FinalReceivedPayment             float64 `parquet:"name=final_received_payment, type=DOUBLE"`
	CreatedAt                        string  `parquet:"name=created_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	UpdatedAt                        string  `parquet:"name=updated_at, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationMinutes                  int64   `parquet:"name=duration_minutes, type=INT64"`
	IncomePerMinute                  float64 `parquet:"name=income_per_minute, type=DOUBLE"`
	IncomePerHour                    float64 `parquet:"name=income_per_hour, type=DOUBLE"`
}

type periodRow struct {
	Timestamp  int64   `parquet:"name=timestamp, type=INT64"`
	Grouping   string  `parquet:"name=grouping, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Scope      string  `parquet:"name=scope, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Period     string  `parquet:"name=period, type=BYTE_ARRAY, convertedtype=UTF8"`
	Income     float64 `parquet:"name=income, type=DOUBLE"`
	Orders     int64   `parquet:"name=orders, type=INT64"`
	Minutes    int64   `parquet:"name=minutes, type=INT64"`
	AvgPerHour float64 `parquet:"name=avg_per_hour, type=DOUBLE"`
}

type storeRow struct {
	Timestamp  int64   `parquet:"name=timestamp, type=INT64"`
	Scope      string  `parquet:"name=scope, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Store      string  `parquet:"name=store, type=BYTE_ARRAY, convertedtype=UTF8"`
	FullName   string  `parquet:"name=full_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Income     float64 `parquet:"name=income, type=DOUBLE"`
	Orders     int64   `parquet:"name=orders, type=INT64"`
	AvgPerHour float64 `parquet:"name=avg_per_hour, type=DOUBLE"`
}

type summaryRow struct {
	Timestamp          int64   `parquet:"name=timestamp, type=INT64"`
	Scope              string  `parquet:"name=scope, type=BYTE_ARRAY, convertedtype=UTF8"`
	Grouping           string  `parquet:"name=grouping, type=BYTE_ARRAY, convertedtype=UTF8"`
	TotalOrders        int64   `parquet:"name=total_orders, type=INT64"`
	TotalIncome        float64 `parquet:"name=total_income, type=DOUBLE"`
	TotalMinutes       int64   `parquet:"name=total_minutes, type=INT64"`
	AvgIncomePerOrder  float64 `parquet:"name=avg_income_per_order, type=DOUBLE"`
	AvgIncomePerMinute float64 `parquet:"name=avg_income_per_minute, type=DOUBLE"`
	AvgIncomePerHour   float64 `parquet:"name=avg_income_per_hour, type=DOUBLE"`
	AvgDurationMinutes float64 `parquet:"name=avg_duration_minutes, type=DOUBLE"`
	Completed          int64   `parquet:"name=completed, type=INT64"`
	Canceled           int64   `parquet:"name=canceled, type=INT64"`
	NegativeDurations  int64   `parquet:"name=negative_durations, type=INT64"`
}

func (r EnrichedRecord) row() enrichedRow {
	return enrichedRow{
		Timestamp:                        r.Timestamp,
		OrderNumber:                      r.OrderNumber,
		StoreSlug:                        r.StoreSlug,
		StoreName:                        r.StoreName,
		State:                            string(r.State),
		CourierPayEstimateWithoutPicking: r.Pays.CourierPayEstimateWithoutPicking,
		CourierPayEstimateWithPicking:    r.Pays.CourierPayEstimateWithPicking,
		CourierPayFinalAmount:            r.Pays.CourierPayFinalAmount,
		FinalReceivedPayment:             r.FinalReceivedPayment,
		CreatedAt:                        r.Times.CreatedAt,
		UpdatedAt:                        r.Times.UpdatedAt,
		DurationMinutes:                  int64(r.DurationMinutes),
		IncomePerMinute:                  r.IncomePerMinute,
		IncomePerHour:                    r.IncomePerHour,
	}
}

func (r PeriodRecord) row() periodRow {
	return periodRow{
		Timestamp:  r.Timestamp,
		Grouping:   string(r.Grouping),
		Scope:      r.Scope,
		Period:     r.Period,
		Income:     r.Income,
		Orders:     int64(r.Orders),
		Minutes:    int64(r.Minutes),
		AvgPerHour: r.AvgPerHour,
	}
}

func (r StoreRecord) row() storeRow {
	return storeRow{
		Timestamp:  r.Timestamp,
		Scope:      r.Scope,
		Store:      r.Store,
		FullName:   r.FullName,
		Income:     r.Income,
		Orders:     int64(r.Orders),
		AvgPerHour: r.AvgPerHour,
	}
}

func (r SummaryRecord) row() summaryRow {
	return summaryRow{
		Timestamp:          r.Timestamp,
		Scope:              r.Scope,
		Grouping:           string(r.Grouping),
		TotalOrders:        int64(r.TotalOrders),
		TotalIncome:        r.TotalIncome,
		TotalMinutes:       int64(r.TotalMinutes),
		AvgIncomePerOrder:  r.AvgIncomePerOrder,
		AvgIncomePerMinute: r.AvgIncomePerMinute,
		AvgIncomePerHour:   r.AvgIncomePerHour,
		AvgDurationMinutes: r.AvgDurationMinutes,
		Completed:          int64(r.Completed),
		Canceled:           int64(r.Canceled),
		NegativeDurations:  int64(r.NegativeDurations),
	}
}
