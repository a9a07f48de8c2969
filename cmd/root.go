package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gigtrack/gig/internal/config"
	"github.com/gigtrack/gig/internal/remote"
	"github.com/gigtrack/gig/internal/store"
	"github.com/gigtrack/gig/internal/syncer"
	"github.com/spf13/cobra"
)

var version string

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "gig",
	Short: "Offline-first earnings tracker for gig drivers",
	Long: `gig - Track trips, kilometers and earnings for gig-economy driving.

Every change lands on disk immediately and syncs to the server in the
background whenever the network allows. Works fully offline.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Record Commands:"},
		&cobra.Group{ID: "insights", Title: "Insight Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")

	if v := os.Getenv("GIG_DEBUG"); v == "1" || v == "true" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// openCoordinator opens the local store and readies a sync coordinator over
// it. The caller owns the returned store and must Close it.
func openCoordinator(ctx context.Context) (*syncer.Coordinator, *store.Store, error) {
	dir, err := config.DataDir()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(dir)
	if err != nil {
		return nil, nil, err
	}
	svc := remote.New(config.GetServerURL(), config.GetAPIKey())
	coord := syncer.New(st, svc)
	if err := coord.Initialize(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return coord, st, nil
}

// maybeAutoSync runs one best-effort sync cycle after a mutation. Offline is
// fine: the operation stays queued for the next trigger.
func maybeAutoSync(coord *syncer.Coordinator) {
	if !config.GetSyncAuto() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := coord.SyncNow(ctx); err != nil {
		slog.Debug("auto sync", "err", err)
	}
}
