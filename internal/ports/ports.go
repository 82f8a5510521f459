package ports

import (
	"context"
	"time"

	"togglkit/pkg/domain"
)

// TogglClient defines the reads the sync use case needs from Toggl.
type TogglClient interface {
	ListWorkspaces(ctx context.Context) ([]domain.Workspace, error)
	ListClients(ctx context.Context) ([]domain.Client, error)
	ListProjects(ctx context.Context) (map[int64]domain.Project, error)
	ListTasks(ctx context.Context) (map[int64]domain.Task, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
}

// Sink receives Toggl records and persists them to a target system.
// Every Sync* call is an upsert keyed by the Toggl id.
type Sink interface {
	SyncWorkspaces(ctx context.Context, workspaces []domain.Workspace) error
	SyncClients(ctx context.Context, clients []domain.Client) error
	SyncProjects(ctx context.Context, projects []domain.Project) error
	SyncTasks(ctx context.Context, tasks []domain.Task) error
	SyncUsers(ctx context.Context, users []domain.User) error
	SyncEntries(ctx context.Context, entries []domain.TimeEntry) error
	RecordRun(ctx context.Context, run SyncRun) error
}

// SyncRun records one execution of the sync use case.
type SyncRun struct {
	ID         string
	From       time.Time
	To         time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    int
	Projects   int
	Err        string
}
