package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrisdamba/orderpulse/internal/factories"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic orders dataset",
	PreRunE: bindPreRun(map[string]string{
		"count":       "generator.count",
		"seed":        "generator.seed",
		"cancel-rate": "generator.cancel_rate",
		"start-date":  "generator.start_date",
		"end-date":    "generator.end_date",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.OrdersSource
		}
		if strings.Contains(out, "://") || out == "postgres" {
			return fmt.Errorf("generate writes local files only, got %q", out)
		}
		if cfg.Generator.Count <= 0 {
			return fmt.Errorf("generator count must be positive")
		}

		orders := generateOrders(cfg, os.Stderr)
		if err := writeOrdersFile(out, orders); err != nil {
			return err
		}

		log.Info("dataset generated",
			zap.String("path", out),
			zap.Int("orders", len(orders)),
			zap.Int64("seed", cfg.Generator.Seed))
		return nil
	},
}

func init() {
	generateCmd.Flags().String("out", "", "output file (defaults to the orders source)")
	generateCmd.Flags().Int("count", 0, "number of orders to generate")
	generateCmd.Flags().Int64("seed", 0, "random seed")
	generateCmd.Flags().Float64("cancel-rate", 0, "share of canceled orders")
	generateCmd.Flags().String("start-date", "", "earliest created_at (RFC 3339)")
	generateCmd.Flags().String("end-date", "", "latest created_at (RFC 3339)")
}

func generateOrders(cfg *models.Config, progress io.Writer) []models.RawOrder {
	factory := factories.NewOrderFactory(cfg.Generator.Seed)
	bar := progressbar.NewOptions(cfg.Generator.Count,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("generating orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	orders := make([]models.RawOrder, 0, cfg.Generator.Count)
	for i := 0; i < cfg.Generator.Count; i++ {
		orders = append(orders, factory.CreateOrder(cfg))
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return orders
}

func writeOrdersFile(path string, orders []models.RawOrder) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(orders); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
