package cmd

import (
	"time"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/output"
	"github.com/spf13/cobra"
)

var (
	addDate     string
	addKm       float64
	addEarnings float64
	addCosts    float64
	addHours    float64
)

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Record a trip",
	GroupID: "records",
	Example: `  gig add --km 142.5 --earnings 187.20 --hours 8.5
  gig add --date 2026-08-14 --km 80 --earnings 95 --costs 12.50 --hours 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, st, err := openCoordinator(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		rec := &models.TripRecord{
			Date:            addDate,
			KmDriven:        addKm,
			TotalEarnings:   addEarnings,
			AdditionalCosts: addCosts,
			HoursWorked:     addHours,
		}
		if err := coord.SaveRecord(rec); err != nil {
			output.Error("%v", err)
			return err
		}

		settings := config.GetSettings()
		output.Success("Recorded trip %s: net %s", rec.Date, output.Money(rec.NetProfit(settings)))
		output.Info("ID: %s", rec.ID)

		maybeAutoSync(coord)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVar(&addDate, "date", time.Now().Format(models.DateLayout), "Trip date (YYYY-MM-DD)")
	addCmd.Flags().Float64Var(&addKm, "km", 0, "Kilometers driven")
	addCmd.Flags().Float64Var(&addEarnings, "earnings", 0, "Total earnings")
	addCmd.Flags().Float64Var(&addCosts, "costs", 0, "Additional costs (fuel, tolls, parking)")
	addCmd.Flags().Float64Var(&addHours, "hours", 0, "Hours worked")
	addCmd.MarkFlagRequired("km")
	addCmd.MarkFlagRequired("earnings")
	addCmd.MarkFlagRequired("hours")
}
