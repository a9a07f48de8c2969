package cmd

import (
	"fmt"
	"strings"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/syncer"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:     "edit [record-id]",
	Short:   "Edit a recorded trip",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	Example: `  gig edit 3f2a91bc --earnings 120.50
  gig edit 3f2a91bc --km 95 --hours 6`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, st, err := openCoordinator(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		rec, err := findRecord(coord, args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}

		if cmd.Flags().Changed("date") {
			rec.Date, _ = cmd.Flags().GetString("date")
		}
		if cmd.Flags().Changed("km") {
			rec.KmDriven, _ = cmd.Flags().GetFloat64("km")
		}
		if cmd.Flags().Changed("earnings") {
			rec.TotalEarnings, _ = cmd.Flags().GetFloat64("earnings")
		}
		if cmd.Flags().Changed("costs") {
			rec.AdditionalCosts, _ = cmd.Flags().GetFloat64("costs")
		}
		if cmd.Flags().Changed("hours") {
			rec.HoursWorked, _ = cmd.Flags().GetFloat64("hours")
		}

		if err := coord.SaveRecord(rec); err != nil {
			output.Error("%v", err)
			return err
		}

		settings := config.GetSettings()
		output.Success("Updated trip %s: net %s", rec.Date, output.Money(rec.NetProfit(settings)))

		maybeAutoSync(coord)
		return nil
	},
}

// findRecord resolves a full record ID or an unambiguous prefix.
func findRecord(coord *syncer.Coordinator, idOrPrefix string) (*models.TripRecord, error) {
	records, err := coord.GetAllRecords()
	if err != nil {
		return nil, err
	}
	var match *models.TripRecord
	for i := range records {
		if records[i].ID == idOrPrefix {
			return &records[i], nil
		}
		if strings.HasPrefix(records[i].ID, idOrPrefix) {
			if match != nil {
				return nil, fmt.Errorf("record ID %q is ambiguous", idOrPrefix)
			}
			match = &records[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no record matching %q", idOrPrefix)
	}
	return match, nil
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("date", "", "Trip date (YYYY-MM-DD)")
	editCmd.Flags().Float64("km", 0, "Kilometers driven")
	editCmd.Flags().Float64("earnings", 0, "Total earnings")
	editCmd.Flags().Float64("costs", 0, "Additional costs (fuel, tolls, parking)")
	editCmd.Flags().Float64("hours", 0, "Hours worked")
}
