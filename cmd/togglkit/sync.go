package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"togglkit/internal/app"
)

func newSyncCommand(g *globals) *cobra.Command {
	var (
		once        bool
		daily       bool
		entriesOnly bool
		interval    time.Duration
		from        string
		to          string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror Toggl data into the configured store",
		Long: `Mirror Toggl data into the configured store.

By default the sync repeats every --interval over the last 24 hours.
--once runs a single sync over [--from, --to]; --daily runs at local
midnight (SYNC_TZ) over the day that just ended.
--entries-only (SYNC_ENTRIES_ONLY) mirrors time entries and skips the
reference data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.ValidBoundary(from) {
				return fmt.Errorf("invalid --from, expected RFC3339 or YYYY-MM-DD")
			}
			if !app.ValidBoundary(to) {
				return fmt.Errorf("invalid --to, expected RFC3339 or YYYY-MM-DD")
			}
			ctx := cmd.Context()
			log := g.log

			if entriesOnly {
				g.cfg.Sync.EntriesOnly = true
			}
			application, err := app.New(ctx, log, g.cfg)
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			defer application.Close()

			now := time.Now().UTC()
			toTime := app.ParseEnd(to, now)
			fromTime := app.ParseStart(from, toTime.Add(-24*time.Hour))

			if once {
				if err := application.RunOnce(ctx, fromTime, toTime); err != nil {
					return fmt.Errorf("sync failed: %w", err)
				}
				log.Info("sync completed")
				return nil
			}

			if daily {
				loc, err := time.LoadLocation(g.cfg.Sync.Timezone)
				if err != nil {
					return fmt.Errorf("invalid SYNC_TZ %q: %w", g.cfg.Sync.Timezone, err)
				}
				log.Info("starting daily sync at midnight", zap.String("tz", g.cfg.Sync.Timezone))
				for {
					next := app.NextMidnight(time.Now().In(loc))
					dur := time.Until(next)
					log.Info("sleeping until next midnight", zap.Time("next", next), zap.Duration("sleep", dur))
					select {
					case <-ctx.Done():
						log.Info("shutting down")
						return nil
					case <-time.After(dur):
						startUTC, endUTC := app.DailyWindow(next)
						if err := application.RunOnce(ctx, startUTC, endUTC); err != nil {
							log.Error("daily sync failed", zap.Error(err))
						} else {
							log.Info("daily sync completed", zap.Time("from", startUTC), zap.Time("to", endUTC))
						}
					}
				}
			}

			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			log.Info("starting periodic sync", zap.Duration("interval", interval))
			// Kick off immediately
			if err := application.RunOnce(ctx, fromTime, toTime); err != nil {
				log.Error("initial sync failed", zap.Error(err))
			}
			for {
				select {
				case <-ctx.Done():
					log.Info("shutting down")
					return nil
				case <-ticker.C:
					end := time.Now().UTC()
					start := end.Add(-24 * time.Hour)
					if err := application.RunOnce(ctx, start, end); err != nil {
						log.Error("periodic sync failed", zap.Error(err))
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Run a single sync and exit")
	cmd.Flags().BoolVar(&daily, "daily", false, "Run at local midnight each day (uses SYNC_TZ)")
	cmd.Flags().BoolVar(&entriesOnly, "entries-only", false, "Mirror time entries only, skipping workspaces, clients, projects, tasks and users")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Minute, "Sync interval when not running once")
	cmd.Flags().StringVar(&from, "from", "", "RFC3339 or YYYY-MM-DD start (default: now - 24h)")
	cmd.Flags().StringVar(&to, "to", "", "RFC3339 or YYYY-MM-DD end (default: now)")
	cmd.MarkFlagsMutuallyExclusive("once", "daily")
	return cmd
}
