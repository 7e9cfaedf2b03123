package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chrisdamba/orderpulse/internal/analytics"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type reportOutput struct {
	models.Dashboard
	Table models.TablePage `json:"table"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the dashboard for the selected filters",
	PreRunE: bindPreRun(map[string]string{
		"grouping":         "grouping",
		"store":            "store",
		"include-canceled": "include_canceled",
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
		tq, err := tableQueryFromFlags(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "text" && format != "json" {
			return fmt.Errorf("unsupported report format %q", format)
		}

		data, err := loadOrders(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		q := models.DashboardQuery{
			Filters:  models.Filters{IncludeCanceled: cfg.IncludeCanceled, Store: cfg.StoreFilter()},
			Grouping: grouping,
		}
		if q.Store != nil && !contains(data.stores, *q.Store) {
			log.Warn("store not present in dataset", zap.String("store", *q.Store))
		}

		out := reportOutput{
			Dashboard: analytics.BuildDashboard(data.enriched, data.stores, q),
			Table:     analytics.QueryTable(analytics.ApplyFilters(data.enriched, q.Filters), tq),
		}

		if format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		return renderReport(cmd.OutOrStdout(), out)
	},
}

func init() {
	reportCmd.Flags().String("grouping", "", "time grouping: day, week or month")
	reportCmd.Flags().String("store", "", "only include orders from this store")
	reportCmd.Flags().Bool("include-canceled", false, "include canceled orders")
	reportCmd.Flags().String("sort", string(models.SortByDate), "order table sort column")
	reportCmd.Flags().Bool("desc", true, "sort the order table descending")
	reportCmd.Flags().String("search", "", "search order number, store or state")
	reportCmd.Flags().Int("limit", 10, "order table rows to print (0 for all)")
	reportCmd.Flags().String("format", "text", "output format: text or json")
}

func tableQueryFromFlags(cmd *cobra.Command) (models.TableQuery, error) {
	sortFlag, _ := cmd.Flags().GetString("sort")
	col, err := models.ParseSortColumn(sortFlag)
	if err != nil {
		return models.TableQuery{}, err
	}
	desc, _ := cmd.Flags().GetBool("desc")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return models.TableQuery{}, fmt.Errorf("limit must not be negative")
	}
	return models.TableQuery{SortBy: col, Ascending: !desc, Search: search, Limit: limit}, nil
}

func renderReport(w io.Writer, r reportOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	s := r.Summary

	scope := "all stores"
	if r.Query.Store != nil {
		scope = *r.Query.Store
	}
	fmt.Fprintf(tw, "Scope:\t%s (grouping %s, canceled included: %t)\n", scope, r.Query.Grouping, r.Query.IncludeCanceled)
	fmt.Fprintf(tw, "Total income:\t%.2f\n", s.TotalIncome)
	fmt.Fprintf(tw, "Total orders:\t%d (%d complete, %d canceled)\n", s.TotalOrders, r.States.Completed, r.States.Canceled)
	fmt.Fprintf(tw, "Avg per order:\t%.2f\n", s.AvgIncomePerOrder)
	fmt.Fprintf(tw, "Avg per hour:\t%.2f\n", s.AvgIncomePerHour)
	fmt.Fprintf(tw, "Avg duration:\t%.1f min (%d min total)\n", s.AvgDurationMinutes, s.TotalMinutes)
	if r.DataQuality.NegativeDurations > 0 {
		fmt.Fprintf(tw, "Negative durations:\t%d\n", r.DataQuality.NegativeDurations)
	}

	fmt.Fprintln(tw, "\nPERIOD\tINCOME\tORDERS\tMINUTES\tPER HOUR")
	for _, p := range r.Series {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\t%.2f\n", p.Period, p.Income, p.Orders, p.Minutes, p.AvgPerHour)
	}

	fmt.Fprintln(tw, "\nSTORE\tINCOME\tORDERS\tPER HOUR")
	for _, st := range r.Stores {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%.2f\n", st.Store, st.Income, st.Orders, st.AvgPerHour)
	}

	fmt.Fprintf(tw, "\nORDER\tSTORE\tSTATE\tDATE\tMIN\tPAYMENT\tPER HOUR\t(%d of %d)\n", len(r.Table.Orders), r.Table.Total)
	for _, o := range r.Table.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\t\n",
			o.OrderNumber, o.StoreName, o.State, o.Date.Format("2006-01-02 15:04"),
			o.DurationMinutes, o.FinalReceivedPayment, o.IncomePerHour)
	}
	return tw.Flush()
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
