package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds file- and environment-driven configuration. Environment
// variables override values read from the optional YAML file.
type Config struct {
	Toggl TogglConfig `yaml:"toggl"`
	Sink  SinkConfig  `yaml:"sink"`
	Sync  SyncConfig  `yaml:"sync"`
	Log   LogConfig   `yaml:"log"`
}

// TogglConfig holds API credentials and client options. Either APIToken or
// User and Password must be set.
type TogglConfig struct {
	APIToken    string        `yaml:"api_token" env:"TOGGL_API_TOKEN"`
	User        string        `yaml:"user" env:"TOGGL_USER"`
	Password    string        `yaml:"password" env:"TOGGL_PASSWORD"`
	WorkspaceID int64         `yaml:"workspace_id" env:"TOGGL_WORKSPACE_ID"`
	BaseURL     string        `yaml:"base_url" env:"TOGGL_BASE_URL" env-default:"https://api.track.toggl.com/api/v8"`
	ReportsURL  string        `yaml:"reports_url" env:"TOGGL_REPORTS_URL" env-default:"https://api.track.toggl.com/reports/api/v2"`
	UserAgent   string        `yaml:"user_agent" env:"TOGGL_USER_AGENT" env-default:"togglkit"`
	Throttle    time.Duration `yaml:"throttle" env:"TOGGL_THROTTLE" env-default:"1s"`
	Timeout     time.Duration `yaml:"timeout" env:"TOGGL_TIMEOUT" env-default:"15s"`
	Trace       bool          `yaml:"trace" env:"TOGGL_TRACE"`
}

// SinkConfig selects the store. Driver is mysql or sqlite.
type SinkConfig struct {
	Driver     string `yaml:"driver" env:"SINK_DRIVER" env-default:"mysql"`
	MySQLDSN   string `yaml:"mysql_dsn" env:"MYSQL_DSN"` // e.g., user:pass@tcp(host:3306)/dbname?parseTime=true
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

type SyncConfig struct {
	Timezone string `yaml:"timezone" env:"SYNC_TZ" env-default:"UTC"` // e.g., UTC (default), Europe/Berlin
	// EntriesOnly skips workspaces, clients, projects, tasks and users.
	EntriesOnly bool `yaml:"entries_only" env:"SYNC_ENTRIES_ONLY"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// Load reads configuration from path, when given, and then the environment.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the cross-field rules cleanenv cannot express. The sink
// location is checked when the store is opened, so commands that only talk to
// the API run without one.
func (c Config) Validate() error {
	if c.Toggl.APIToken == "" && (c.Toggl.User == "" || c.Toggl.Password == "") {
		return errors.New("TOGGL_API_TOKEN or TOGGL_USER and TOGGL_PASSWORD is required")
	}
	switch strings.ToLower(c.Sink.Driver) {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("SINK_DRIVER must be mysql or sqlite, got %q", c.Sink.Driver)
	}
	if c.Toggl.Throttle < 0 {
		return errors.New("TOGGL_THROTTLE must not be negative")
	}
	if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		return fmt.Errorf("invalid SYNC_TZ %q: %w", c.Sync.Timezone, err)
	}
	return nil
}

// SinkDSN returns the connection string of the selected driver.
func (c Config) SinkDSN() string {
	if strings.ToLower(c.Sink.Driver) == "sqlite" {
		return c.Sink.SQLitePath
	}
	return c.Sink.MySQLDSN
}
