package cmd

import (
	"github.com/gigtrack/gig/internal/output"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [record-id...]",
	Short:   "Delete one or more trip records",
	GroupID: "records",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, st, err := openCoordinator(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		for _, arg := range args {
			rec, err := findRecord(coord, arg)
			if err != nil {
				output.Error("%v", err)
				continue
			}
			if err := coord.DeleteRecord(rec.ID); err != nil {
				output.Error("failed to delete %s: %v", rec.ID, err)
				continue
			}
			output.Success("Deleted trip %s (%s)", rec.Date, output.ShortID(rec.ID))
		}

		maybeAutoSync(coord)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
