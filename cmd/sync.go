package cmd

import (
	"github.com/gigtrack/gig/internal/output"
	"github.com/gigtrack/gig/internal/store"
	"github.com/gigtrack/gig/internal/syncer"
	"github.com/spf13/cobra"
)

var syncStatus bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Push queued changes and pull the latest records",
	GroupID: "sync",
	Example: `  gig sync
  gig sync --status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		coord, st, err := openCoordinator(cmd.Context())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer st.Close()

		if syncStatus {
			return showSyncStatus(coord, st)
		}

		unsub := coord.Subscribe(func(ev syncer.Event) {
			if ev.Kind == syncer.EventOpDropped {
				output.Warning("%s", ev.Message)
			}
		})
		defer unsub()

		result, err := coord.SyncNow(cmd.Context())
		if err != nil {
			output.Error("sync failed: %v", err)
			return err
		}

		switch {
		case result.Coalesced:
			output.Info("Sync already in progress.")
		case result.StayedOffline:
			pending, _ := st.PendingCount()
			output.Warning("Offline: %d change(s) still queued.", pending)
		default:
			output.Success("Synced: %d pushed, %d pulled, %d merged, %d removed.",
				result.Drained, result.Pulled, result.Merged, result.Removed)
			if result.Dropped > 0 {
				output.Warning("%d operation(s) were rejected and dropped.", result.Dropped)
			}
		}
		return nil
	},
}

func showSyncStatus(coord *syncer.Coordinator, st *store.Store) error {
	ops, err := coord.PendingOperations()
	if err != nil {
		output.Error("%v", err)
		return err
	}
	if len(ops) == 0 {
		output.Success("All changes synced.")
	} else {
		output.Info("%d pending operation(s):", len(ops))
		for i := range ops {
			output.Info("  %s", output.FormatPendingOp(&ops[i]))
		}
	}
	last, err := st.LastSyncAt()
	if err != nil {
		output.Error("%v", err)
		return err
	}
	if last != nil {
		output.Info("Last successful sync: %s", output.FormatTimeAgo(*last))
	} else {
		output.Info("Never synced.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&syncStatus, "status", false, "Show queued operations instead of syncing")
}
