package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"togglkit/internal/ports"
)

// ErrSyncRunning is returned when a run is requested while another is in progress.
var ErrSyncRunning = errors.New("sync already running")

// SyncUseCase coordinates fetching from Toggl and syncing to a Sink.
type SyncUseCase struct {
	Log   *zap.Logger
	Toggl ports.TogglClient
	Sink  ports.Sink

	// SkipReference limits a run to time entries.
	SkipReference bool

	mu  sync.Mutex
	now func() time.Time
}

// Run mirrors reference data and the time entries started in [from, to].
// Overlapping calls fail fast with ErrSyncRunning.
func (uc *SyncUseCase) Run(ctx context.Context, from, to time.Time) error {
	if uc.Toggl == nil || uc.Sink == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	if !uc.mu.TryLock() {
		return ErrSyncRunning
	}
	defer uc.mu.Unlock()

	log := uc.logger()
	run := ports.SyncRun{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		StartedAt: uc.clock(),
	}
	log = log.With(zap.String("run_id", run.ID))

	err := uc.run(ctx, log, &run)

	run.FinishedAt = uc.clock()
	if err != nil {
		run.Err = err.Error()
	}
	// Record with a fresh context so a cancelled run still leaves a trace.
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if recErr := uc.Sink.RecordRun(recCtx, run); recErr != nil {
		log.Warn("failed to record sync run", zap.Error(recErr))
	}
	return err
}

func (uc *SyncUseCase) run(ctx context.Context, log *zap.Logger, run *ports.SyncRun) error {
	if !uc.SkipReference {
		n, err := uc.syncReference(ctx, log)
		if err != nil {
			return err
		}
		run.Projects = n
	}

	log.Info("fetching time entries", zap.Time("from", run.From), zap.Time("to", run.To))
	entries, err := uc.Toggl.ListTimeEntries(ctx, run.From, run.To)
	if err != nil {
		return fmt.Errorf("list time entries: %w", err)
	}
	log.Info("fetched time entries", zap.Int("count", len(entries)))
	run.Entries = len(entries)

	if len(entries) == 0 {
		log.Info("no entries to sync")
		return nil
	}

	if err := uc.Sink.SyncEntries(ctx, entries); err != nil {
		return fmt.Errorf("sync entries: %w", err)
	}
	log.Info("sync completed", zap.Int("count", len(entries)))
	return nil
}

// syncReference mirrors workspaces, clients, projects, tasks and users. It
// returns the number of projects written.
func (uc *SyncUseCase) syncReference(ctx context.Context, log *zap.Logger) (int, error) {
	workspaces, err := uc.Toggl.ListWorkspaces(ctx)
	if err != nil {
		return 0, fmt.Errorf("list workspaces: %w", err)
	}
	if err := uc.Sink.SyncWorkspaces(ctx, workspaces); err != nil {
		return 0, fmt.Errorf("sync workspaces: %w", err)
	}

	clients, err := uc.Toggl.ListClients(ctx)
	if err != nil {
		return 0, fmt.Errorf("list clients: %w", err)
	}
	if err := uc.Sink.SyncClients(ctx, clients); err != nil {
		return 0, fmt.Errorf("sync clients: %w", err)
	}

	projects, err := uc.Toggl.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}
	if err := uc.Sink.SyncProjects(ctx, sortedValues(projects)); err != nil {
		return 0, fmt.Errorf("sync projects: %w", err)
	}

	tasks, err := uc.Toggl.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}
	if err := uc.Sink.SyncTasks(ctx, sortedValues(tasks)); err != nil {
		return 0, fmt.Errorf("sync tasks: %w", err)
	}

	users, err := uc.Toggl.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	if err := uc.Sink.SyncUsers(ctx, users); err != nil {
		return 0, fmt.Errorf("sync users: %w", err)
	}

	log.Info("reference data synced",
		zap.Int("workspaces", len(workspaces)),
		zap.Int("clients", len(clients)),
		zap.Int("projects", len(projects)),
		zap.Int("tasks", len(tasks)),
		zap.Int("users", len(users)),
	)
	return len(projects), nil
}

func (uc *SyncUseCase) logger() *zap.Logger {
	if uc.Log == nil {
		return zap.NewNop()
	}
	return uc.Log
}

func (uc *SyncUseCase) clock() time.Time {
	if uc.now != nil {
		return uc.now()
	}
	return time.Now().UTC()
}

// sortedValues flattens an id-keyed map in ascending id order.
func sortedValues[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
