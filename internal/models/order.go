package models

import "time"

type OrderState string

const (
	OrderStateComplete OrderState = "complete"
	OrderStateCanceled OrderState = "canceled"
)

type CourierPays struct {
	CourierPayEstimateWithoutPicking float64 `json:"courierPayEstimateWithoutPicking"`
	CourierPayEstimateWithPicking    float64 `json:"courierPayEstimateWithPicking"`
	CourierPayFinalAmount            float64 `json:"courierPayFinalAmount"`
}

// OrderTimes keeps the source timestamps verbatim. Only CreatedAt and
// UpdatedAt are interpreted by the analytics engine.
type OrderTimes struct {
	CheckoutCompletedAt         string `json:"checkout_completed_at"`
	CreatedAt                   string `json:"created_at"`
	UpdatedAt                   string `json:"updated_at"`
	ShopperAllocationNotifiedAt string `json:"shopper_allocation_notified_at"`
	ShopperTimeEstimateAt       string `json:"shopper_time_estimate_at"`
	ShopperAllocationDeadline   string `json:"shopper_allocation_deadline"`
}

// RawOrder is a delivery order as supplied by the dataset.
type RawOrder struct {
	OrderNumber          string      `json:"order_number"`
	StoreSlug            string      `json:"store_slug"`
	StoreName            string      `json:"store_name"`
	State                OrderState  `json:"state"`
	Pays                 CourierPays `json:"pays"`
	FinalReceivedPayment float64     `json:"finalReceivedPayment"`
	Times                OrderTimes  `json:"times"`
}

// EnrichedOrder is a RawOrder with its derived duration and income rates.
// Date is the parsed created_at instant.
type EnrichedOrder struct {
	RawOrder
	DurationMinutes int       `json:"durationMinutes"`
	Date            time.Time `json:"date"`
	IncomePerMinute float64   `json:"incomePerMinute"`
	IncomePerHour   float64   `json:"incomePerHour"`
}

func (o EnrichedOrder) IsComplete() bool {
	return o.State == OrderStateComplete
}
