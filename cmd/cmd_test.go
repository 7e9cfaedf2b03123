package cmd

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/dataset"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(path string) *models.Config {
	return &models.Config{
		OrdersSource: path,
		Timezone:     "UTC",
		Generator: models.GeneratorConfig{
			Count:      25,
			Stores:     []string{"Market Kaufland Colentina", "Market Lidl Pipera"},
			StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			CancelRate: 0.1,
			Seed:       11,
			MinMinutes: 15,
			MaxMinutes: 45,
		},
	}
}

func TestGeneratedDatasetRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "orders.json")
	cfg := testConfig(path)

	orders := generateOrders(cfg, io.Discard)
	require.Len(t, orders, 25)
	require.NoError(t, writeOrdersFile(path, orders))

	data, err := loadOrders(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, orders, data.raw)
	assert.Len(t, data.enriched, 25)
	assert.Subset(t, cfg.Generator.Stores, data.stores)

	src := &dataset.FileSource{Path: path}
	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, orders, again)
}

func TestGenerateIsReproducible(t *testing.T) {
	cfg := testConfig("")
	a := generateOrders(cfg, io.Discard)
	b := generateOrders(cfg, io.Discard)
	for i := range a {
		assert.Equal(t, a[i].StoreName, b[i].StoreName)
		assert.Equal(t, a[i].Times, b[i].Times)
		assert.Equal(t, a[i].FinalReceivedPayment, b[i].FinalReceivedPayment)
	}
}

func TestRenderReport(t *testing.T) {
	raw := []models.RawOrder{
		{
			OrderNumber: "A-1", StoreName: "Market Kaufland Colentina", State: models.OrderStateComplete,
			FinalReceivedPayment: 30,
			Times:                models.OrderTimes{CreatedAt: "2024-01-01T10:00:00Z", UpdatedAt: "2024-01-01T10:30:00Z"},
		},
		{
			OrderNumber: "A-2", StoreName: "Market Lidl Pipera", State: models.OrderStateCanceled,
			Times: models.OrderTimes{CreatedAt: "2024-01-02T10:00:00Z", UpdatedAt: "2024-01-02T10:05:00Z"},
		},
	}
	enriched, err := analytics.NormalizeAll(raw, time.UTC)
	require.NoError(t, err)

	q := models.DashboardQuery{Grouping: models.GroupingDay}
	out := reportOutput{
		Dashboard: analytics.BuildDashboard(enriched, analytics.StoreNames(raw), q),
		Table:     analytics.QueryTable(analytics.ApplyFilters(enriched, q.Filters), models.TableQuery{}),
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, out))
	text := buf.String()
	assert.Contains(t, text, "all stores")
	assert.Contains(t, text, "30.00")
	assert.Contains(t, text, "1 complete, 0 canceled")
	assert.Contains(t, text, "2024-01-01")
	assert.Contains(t, text, "Kaufland")
	assert.NotContains(t, text, "A-2")
}

func TestTableQueryFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("sort", "date", "")
	cmd.Flags().Bool("desc", true, "")
	cmd.Flags().String("search", "", "")
	cmd.Flags().Int("limit", 10, "")
	cmd.SetOut(io.Discard)

	require.NoError(t, cmd.Flags().Parse([]string{"--sort", "income_per_hour", "--desc=false", "--search", "lidl"}))
	tq, err := tableQueryFromFlags(cmd)
	require.NoError(t, err)
	assert.Equal(t, models.SortByIncomePerHour, tq.SortBy)
	assert.True(t, tq.Ascending)
	assert.Equal(t, "lidl", tq.Search)
	assert.Equal(t, 10, tq.Limit)

	require.NoError(t, cmd.Flags().Parse([]string{"--sort", "tips"}))
	_, err = tableQueryFromFlags(cmd)
	assert.ErrorIs(t, err, models.ErrUnknownSortColumn)
}
