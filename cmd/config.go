package cmd

import (
	"fmt"
	"strconv"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Get or set configuration values",
	GroupID: "system",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a config value (or all with no key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			output.Info("server_url = %s", config.GetServerURL())
			output.Info("analyze_url = %s", config.GetAnalyzeURL())
			output.Info("cost_per_km = %.2f", config.GetSettings().CostPerKm)
			output.Info("sync_auto = %t", config.GetSyncAuto())
			return nil
		}
		switch args[0] {
		case "server_url":
			output.Info("%s", config.GetServerURL())
		case "analyze_url":
			output.Info("%s", config.GetAnalyzeURL())
		case "cost_per_km":
			output.Info("%.2f", config.GetSettings().CostPerKm)
		case "sync_auto":
			output.Info("%t", config.GetSyncAuto())
		default:
			return fmt.Errorf("unknown config key %q", args[0])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a config value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		key, value := args[0], args[1]
		switch key {
		case "server_url":
			cfg.ServerURL = value
		case "analyze_url":
			cfg.AnalyzeURL = value
		case "cost_per_km":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("cost_per_km must be a non-negative number")
			}
			cfg.CostPerKm = f
		case "sync_auto":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("sync_auto must be true or false")
			}
			cfg.SyncAuto = &b
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := config.Save(cfg); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd, configSetCmd)
}
