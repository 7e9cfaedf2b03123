package factories

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

// OrderFactory builds synthetic raw orders shaped like the courier app
// export. A factory created with the same seed yields the same stores,
// timestamps and payments.
type OrderFactory struct {
	fake   faker.Faker
	stores []string
	slugs  map[string]string
}

func NewOrderFactory(seed int64) *OrderFactory {
	return &OrderFactory{
		fake:  faker.NewWithSeed(rand.NewSource(seed)),
		slugs: make(map[string]string),
	}
}

func (of *OrderFactory) CreateOrder(config *models.Config) models.RawOrder {
	gen := config.Generator
	store := of.pickStore(gen.Stores)

	start, end := gen.StartDate, gen.EndDate
	if !end.After(start) {
		end = start.Add(24 * time.Hour)
	}
	created := of.fake.Time().TimeBetween(start, end).UTC().Truncate(time.Second)

	order := models.RawOrder{
		OrderNumber: cuid.New(),
		StoreSlug:   of.slug(store),
		StoreName:   store,
		State:       models.OrderStateComplete,
	}

	canceled := of.fake.Float64(4, 0, 1) < gen.CancelRate
	var minutes int
	if canceled {
		order.State = models.OrderStateCanceled
		minutes = of.fake.IntBetween(1, 10)
	} else {
		lo, hi := gen.MinMinutes, gen.MaxMinutes
		if hi < lo {
			lo, hi = hi, lo
		}
		minutes = of.fake.IntBetween(lo, hi)

		withoutPicking := of.fake.Float64(2, 12, 30)
		withPicking := withoutPicking + of.fake.Float64(2, 2, 9)
		order.Pays = models.CourierPays{
			CourierPayEstimateWithoutPicking: withoutPicking,
			CourierPayEstimateWithPicking:    withPicking,
			CourierPayFinalAmount:            withPicking,
		}
		// tips land on top of the final courier pay
		order.FinalReceivedPayment = withPicking + of.fake.Float64(2, 0, 8)
	}

	updated := created.Add(time.Duration(minutes) * time.Minute)
	order.Times = models.OrderTimes{
		CheckoutCompletedAt:         created.Add(-time.Duration(of.fake.IntBetween(1, 5)) * time.Minute).Format(time.RFC3339),
		CreatedAt:                   created.Format(time.RFC3339),
		UpdatedAt:                   updated.Format(time.RFC3339),
		ShopperAllocationNotifiedAt: created.Add(30 * time.Second).Format(time.RFC3339),
		ShopperTimeEstimateAt:       created.Add(time.Duration(minutes/2) * time.Minute).Format(time.RFC3339),
		ShopperAllocationDeadline:   created.Add(2 * time.Minute).Format(time.RFC3339),
	}
	return order
}

func (of *OrderFactory) pickStore(configured []string) string {
	if len(configured) > 0 {
		return configured[of.fake.IntBetween(0, len(configured)-1)]
	}
	if of.stores == nil {
		for i := 0; i < 3; i++ {
			of.stores = append(of.stores, "Market "+of.fake.Company().Name())
		}
	}
	return of.stores[of.fake.IntBetween(0, len(of.stores)-1)]
}

func (of *OrderFactory) slug(name string) string {
	if s, ok := of.slugs[name]; ok {
		return s
	}
	base := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, "Market "), " ", "-"))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = fmt.Sprintf("store-%d", len(of.slugs)+1)
	}
	of.slugs[name] = base
	return base
}
