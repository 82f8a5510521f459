package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"togglkit/internal/config"
	"togglkit/internal/logger"
)

// globals are resolved once in PersistentPreRunE and shared by subcommands.
type globals struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "togglkit",
		Short: "Toggl API client and SQL mirror",
		Long: `togglkit talks to the Toggl REST API and mirrors workspaces, clients,
projects, tasks, users and time entries into MySQL or SQLite.

CONFIGURATION:
  Environment variables override the optional YAML file given with --config.

    TOGGL_API_TOKEN                 API token (or TOGGL_USER and TOGGL_PASSWORD)
    TOGGL_THROTTLE                  Delay before every API request (default: 1s)
    TOGGL_TIMEOUT                   Per-request timeout (default: 15s)
    TOGGL_TRACE                     Log raw requests and responses (default: false)
    SINK_DRIVER                     mysql or sqlite (default: mysql)
    MYSQL_DSN / SQLITE_PATH         Store location
    SYNC_TZ                         Timezone for --daily (default: UTC)
    LOG_LEVEL / LOG_FORMAT          Logging (default: info / console)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if g.verbose {
				level = "debug"
			}
			log, err := logger.New(level, cfg.Log.Format)
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.log = log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newSyncCommand(g),
		newServeCommand(g),
		newReportCommand(g),
		newCurrentCommand(g),
	)
	return root
}
