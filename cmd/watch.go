package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/remote"
	"github.com/gigtrack/gig/internal/syncer"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Run in the foreground and sync whenever the server is reachable",
	GroupID: "sync",
	Long: `Probes the server on an interval and triggers a sync cycle each time
connectivity comes back, so changes queued while offline drain as soon as the
network allows. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		coord, st, err := openCoordinator(ctx)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		svc := remote.New(config.GetServerURL(), config.GetAPIKey())
		watcher := syncer.NewWatcher(svc, config.WatchInterval())

		runCycle := func() {
			cycleCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()
			result, err := coord.SyncNow(cycleCtx)
			if err != nil {
				output.Error("sync failed: %v", err)
				return
			}
			if !result.Coalesced && !result.StayedOffline {
				output.Info("Synced: %d pushed, %d pulled.", result.Drained, result.Pulled)
			}
		}

		unsub := watcher.Subscribe(func(online bool) {
			if online {
				output.Success("Server reachable, syncing.")
				runCycle()
			} else {
				output.Warning("Server unreachable; changes will queue locally.")
			}
		})
		defer unsub()

		output.Info("Watching (probe every %s). Ctrl-C to stop.", config.WatchInterval())
		watcher.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
