package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"togglkit/internal/adapter/store"
	"togglkit/internal/config"
	"togglkit/internal/migrate"
	"togglkit/internal/usecase"
	tg "togglkit/pkg/toggl"
)

// App wires adapters and use cases.
type App struct {
	log  *zap.Logger
	sink *store.Client
	uc   *usecase.SyncUseCase
}

// NewTogglClient builds the API client described by cfg.
func NewTogglClient(cfg config.TogglConfig, log *zap.Logger) *tg.Client {
	creds := tg.TokenCredentials(cfg.APIToken)
	if cfg.APIToken == "" {
		creds = tg.Credentials{User: cfg.User, Password: cfg.Password}
	}
	return tg.NewClient(creds, tg.Options{
		BaseURL:    cfg.BaseURL,
		ReportsURL: cfg.ReportsURL,
		UserAgent:  cfg.UserAgent,
		Throttle:   cfg.Throttle,
		Timeout:    cfg.Timeout,
		Trace:      cfg.Trace,
	}, log)
}

func New(ctx context.Context, log *zap.Logger, cfg config.Config) (*App, error) {
	togglClient := NewTogglClient(cfg.Toggl, log)

	dialect, err := store.ParseDialect(cfg.Sink.Driver)
	if err != nil {
		return nil, err
	}
	sink, err := store.Open(ctx, dialect, cfg.SinkDSN(), log)
	if err != nil {
		return nil, err
	}
	// Run migrations before the sink is used.
	if err := migrate.Run(ctx, sink.DB(), string(dialect), log); err != nil {
		sink.Close()
		return nil, err
	}

	uc := &usecase.SyncUseCase{
		Log:           log,
		Toggl:         togglClient,
		Sink:          sink,
		SkipReference: cfg.Sync.EntriesOnly,
	}

	return &App{log: log, sink: sink, uc: uc}, nil
}

func (a *App) RunOnce(ctx context.Context, from, to time.Time) error {
	return a.uc.Run(ctx, from, to)
}

func (a *App) Close() error {
	return a.sink.Close()
}
