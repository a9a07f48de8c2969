package cmd

import (
	"errors"

	"github.com/gigtrack/gig/internal/analyze"
	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/session"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Get AI insights over your trip history (premium)",
	GroupID: "insights",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.Current()
		if err != nil {
			output.Error("log in first: gig auth login")
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

		client := analyze.New(config.GetAnalyzeURL(), config.GetAPIKey())
		insight, err := client.Records(cmd.Context(), records, config.GetSettings(), sess.Premium)
		if err != nil {
			if errors.Is(err, analyze.ErrPremiumRequired) {
				output.Warning("Analysis requires a premium account.")
				return err
			}
			output.Error("%v", err)
			return err
		}
		output.Info("%s", insight)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
