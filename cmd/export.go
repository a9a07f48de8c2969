package cmd

import (
	"os"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/export"
	"github.com/gigtrack/gig/internal/output"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export trips as CSV",
	GroupID: "insights",
	Example: `  gig export
  gig export --out trips.csv`,
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
		settings := config.GetSettings()

		w := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			defer f.Close()
			w = f
		}
		if err := export.WriteCSV(w, records, settings); err != nil {
			output.Error("%v", err)
			return err
		}
		if exportOut != "" {
			output.Success("Exported %d trips to %s", len(records), exportOut)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to file instead of stdout")
}
