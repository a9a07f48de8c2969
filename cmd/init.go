package cmd

import (
	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the local database and config directory",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgDir, err := config.Dir()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		dataDir, err := config.DataDir()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		st, err := store.Open(dataDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		st.Close()

		if _, err := config.GetDeviceID(); err != nil {
			output.Error("%v", err)
			return err
		}

		output.Success("Initialized.")
		output.Info("Config: %s", cfgDir)
		output.Info("Data:   %s", dataDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
