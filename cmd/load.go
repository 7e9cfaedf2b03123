package cmd

import (
	"fmt"
	"os"

	"github.com/chrisdamba/orderpulse/internal/repositories/postgres"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const loadBatchSize = 500

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Copy the orders dataset into the Postgres orders table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		if cfg.OrdersSource == "postgres" {
			return fmt.Errorf("load needs a file or s3 orders source, not postgres")
		}
		truncate, _ := cmd.Flags().GetBool("truncate")

		ctx := cmd.Context()
		data, err := loadOrders(ctx, cfg, log)
		if err != nil {
			return err
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo := postgres.NewOrderRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("create orders schema: %w", err)
		}
		if truncate {
			if err := repo.DeleteAll(ctx); err != nil {
				return fmt.Errorf("truncate orders: %w", err)
			}
		}

		bar := progressbar.NewOptions(len(data.enriched),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("loading orders"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		var copied int64
		for start := 0; start < len(data.enriched); start += loadBatchSize {
			end := start + loadBatchSize
			if end > len(data.enriched) {
				end = len(data.enriched)
			}
			n, err := repo.BulkCreate(ctx, data.enriched[start:end])
			if err != nil {
				return err
			}
			copied += n
			_ = bar.Add(end - start)
		}
		_ = bar.Finish()

		total, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		log.Info("orders loaded into postgres", zap.Int64("copied", copied), zap.Int("table_rows", total))
		return nil
	},
}

func init() {
	loadCmd.Flags().Bool("truncate", false, "empty the orders table before copying")
}
