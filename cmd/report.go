package cmd

import (
	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/report"
	"github.com/spf13/cobra"
)

var (
	reportPeriod string
	reportJSON   bool
	reportSince  string
	reportUntil  string
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Summarize earnings by day, week or month",
	GroupID: "insights",
	Example: `  gig report
  gig report --period week
  gig report --period month --since 2026-01-01 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := report.ParsePeriod(reportPeriod)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		coord, st, err := openCoordinator(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		records, err := coord.GetAllRecords()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		records = filterByDate(records, reportSince, reportUntil)

		settings := config.GetSettings()
		groups := report.GroupByPeriod(records, period, settings)
		total := report.Summarize(records, settings)

		if reportJSON {
			return output.JSON(map[string]any{
				"period": period,
				"groups": groups,
				"total":  total,
			})
		}

		if len(groups) == 0 {
			output.Info("No trips in the selected range.")
			return nil
		}
		for _, g := range groups {
			output.Info("%-10s  %3d trips  %7.1f km  %6.1f h  earned %s  net %s",
				g.Label, g.Summary.Trips, g.Summary.KmDriven, g.Summary.HoursWorked,
				output.Money(g.Summary.TotalEarnings), output.NetProfit(g.Summary.NetProfit))
		}
		output.Info("%s", output.SectionHeader("total"))
		output.Info("  %d trips, %.1f km, %.1f h", total.Trips, total.KmDriven, total.HoursWorked)
		output.Info("  Earnings: %s   Costs: %s (+%s vehicle)   Net: %s",
			output.Money(total.TotalEarnings), output.Money(total.AdditionalCosts),
			output.Money(total.VehicleCosts), output.NetProfit(total.NetProfit))
		if total.HoursWorked > 0 {
			output.Info("  %s/h   %s/km", output.Money(total.ProfitPerHour), output.Money(total.ProfitPerKm))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportPeriod, "period", "day", "Grouping period: day, week or month")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
	reportCmd.Flags().StringVar(&reportSince, "since", "", "Only trips on or after this date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportUntil, "until", "", "Only trips on or before this date (YYYY-MM-DD)")
}
