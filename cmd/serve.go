package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/chrisdamba/orderpulse/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API over HTTP",
	PreRunE: bindPreRun(map[string]string{
		"addr":      "server.addr",
		"cache-ttl": "server.cache_ttl",
	}),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		data, err := loadOrders(ctx, cfg, log)
		if err != nil {
			return err
		}

		srv, err := server.New(data.enriched, data.stores, cfg.Server, log)
		if err != nil {
			return err
		}
		defer srv.Close()

		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address")
	serveCmd.Flags().Duration("cache-ttl", 0, "dashboard cache TTL (0 disables caching)")
}
