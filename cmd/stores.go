package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List the stores present in the dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		data, err := loadOrders(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		for _, name := range data.stores {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
