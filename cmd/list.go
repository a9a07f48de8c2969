package cmd

import (
	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/models"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/report"
	"github.com/spf13/cobra"
)

var (
	listJSON  bool
	listSince string
	listUntil string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List recorded trips",
	GroupID: "records",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
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
		records = filterByDate(records, listSince, listUntil)
		report.SortByDate(records)

		if listJSON {
			return output.JSON(records)
		}
		if len(records) == 0 {
			output.Info("No trips recorded yet. Use 'gig add' to record one.")
			return nil
		}
		settings := config.GetSettings()
		for i := range records {
			output.Info("%s", output.FormatTripShort(&records[i], settings))
		}
		return nil
	},
}

// filterByDate keeps records inside the inclusive [since, until] range.
// Date strings compare lexically in YYYY-MM-DD form.
func filterByDate(records []models.TripRecord, since, until string) []models.TripRecord {
	if since == "" && until == "" {
		return records
	}
	out := records[:0]
	for _, rec := range records {
		if since != "" && rec.Date < since {
			continue
		}
		if until != "" && rec.Date > until {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only trips on or after this date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only trips on or before this date (YYYY-MM-DD)")
}
