package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/dataset"
	"github.com/chrisdamba/orderpulse/internal/logger"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "orderpulse",
	Short: "Analytics for courier delivery orders",
	Long: `orderpulse turns an export of courier delivery orders into income metrics:
per-order durations and income rates, period series, per-store comparisons and
a searchable order table, served over HTTP or exported to files, Kafka or Postgres.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./orderpulse.yaml)")
	rootCmd.PersistentFlags().String("orders", "", "orders source: file path, s3://bucket/key or postgres")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone used for period bucketing")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json or console)")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"orders":     "orders_source",
		"timezone":   "timezone",
		"log-level":  "log_level",
		"log-format": "log_format",
	})

	rootCmd.AddCommand(reportCmd, storesCmd, exportCmd, generateCmd, serveCmd, loadCmd)
}

// bindFlags maps dashed flag names onto config keys. init binds the
// persistent flags once; command-local flags are bound from each command's
// PreRunE so commands sharing a key do not overwrite each other's binding.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}
}

func bindPreRun(keys map[string]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags(), keys)
		return nil
	}
}

// setup loads the configuration and builds the logger every command uses.
func setup() (*models.Config, *zap.Logger, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing logger: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("using config file", zap.String("path", used))
	}
	return cfg, log, nil
}

type loadedOrders struct {
	raw      []models.RawOrder
	enriched []models.EnrichedOrder
	stores   []string
}

// loadOrders reads the configured dataset and normalizes it in the
// configured timezone. Negative durations are kept and reported.
func loadOrders(ctx context.Context, cfg *models.Config, log *zap.Logger) (*loadedOrders, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	src, closeSrc, err := dataset.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	raw, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	enriched, err := analytics.NormalizeAll(raw, loc)
	if err != nil {
		return nil, err
	}

	if q := analytics.InspectQuality(enriched); q.NegativeDurations > 0 {
		log.Warn("orders with negative duration",
			zap.Int("count", q.NegativeDurations),
			zap.Strings("orders", q.NegativeDurationOrders))
	}
	log.Info("orders loaded", zap.Int("orders", len(enriched)), zap.String("timezone", loc.String()))

	return &loadedOrders{raw: raw, enriched: enriched, stores: analytics.StoreNames(raw)}, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
