package cmd

import (
	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/chrisdamba/orderpulse/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write enriched orders and dashboard metrics to the configured destination",
	PreRunE: bindPreRun(map[string]string{
		"grouping":           "grouping",
		"store":              "store",
		"include-canceled":   "include_canceled",
		"output-format":      "output_format",
		"output-path":        "output_path",
		"output-folder":      "output_folder",
		"output-destination": "output_destination",
		"kafka-enabled":      "kafka_enabled",
		"kafka-broker-list":  "kafka_broker_list",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		grouping, err := models.ParseTimeGrouping(cfg.Grouping)
		if err != nil {
			return err
		}
		data, err := loadOrders(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		q := models.DashboardQuery{
			Filters:  models.Filters{IncludeCanceled: cfg.IncludeCanceled, Store: cfg.StoreFilter()},
			Grouping: grouping,
		}
		dashboard := analytics.BuildDashboard(data.enriched, data.stores, q)

		dest, err := output.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		written, err := output.Publish(dest, dashboard, analytics.ApplyFilters(data.enriched, q.Filters))
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}

		log.Info("export complete",
			zap.Int("messages", written),
			zap.String("format", cfg.OutputFormat),
			zap.Bool("kafka", cfg.KafkaEnabled))
		return nil
	},
}

func init() {
	exportCmd.Flags().String("grouping", "", "time grouping: day, week or month")
	exportCmd.Flags().String("store", "", "only export orders from this store")
	exportCmd.Flags().Bool("include-canceled", false, "include canceled orders")
	exportCmd.Flags().String("output-format", "", "console, json, csv, parquet or postgres")
	exportCmd.Flags().String("output-path", "", "base directory for file outputs")
	exportCmd.Flags().String("output-folder", "", "folder under the output path")
	exportCmd.Flags().String("output-destination", "", "local or s3 (parquet only)")
	exportCmd.Flags().Bool("kafka-enabled", false, "publish to Kafka instead of files")
	exportCmd.Flags().String("kafka-broker-list", "", "comma separated Kafka brokers")
}
