package cmd

import (
	"errors"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/remote"
	"github.com/gigtrack/gig/internal/session"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage server credentials",
	GroupID: "sync",
}

var (
	loginKey     string
	loginEmail   string
	loginPremium bool
)

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an API key and verify it against the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := remote.New(config.GetServerURL(), loginKey)
		if _, err := svc.ListRecords(cmd.Context()); err != nil {
			if errors.Is(err, remote.ErrUnauthorized) {
				output.Error("the server rejected this API key")
				return err
			}
			if remote.Unreachable(err) {
				output.Warning("Server unreachable; storing key unverified.")
			} else {
				output.Error("%v", err)
				return err
			}
		}

		creds, err := config.LoadAuth()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if creds == nil {
			creds = &config.AuthCredentials{}
		}
		creds.APIKey = loginKey
		creds.Email = loginEmail
		creds.Premium = loginPremium
		if err := config.SaveAuth(creds); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Logged in.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearAuth(); err != nil {
			output.Error("%v", err)
			return err
		}
		output.Success("Logged out. Queued changes are kept and will sync after the next login.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current login",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := session.Current()
		if err != nil {
			if errors.Is(err, session.ErrNotLoggedIn) {
				output.Info("Not logged in.")
				return nil
			}
			output.Error("%v", err)
			return err
		}
		if sess.Email != "" {
			output.Info("Logged in as %s", sess.Email)
		} else {
			output.Info("Logged in (API key set).")
		}
		if sess.Premium {
			output.Info("Premium: yes")
		} else {
			output.Info("Premium: no")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)

	authLoginCmd.Flags().StringVar(&loginKey, "key", "", "API key for the record server")
	authLoginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (display only)")
	authLoginCmd.Flags().BoolVar(&loginPremium, "premium", false, "Mark the account as premium")
	authLoginCmd.MarkFlagRequired("key")
}
