package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"togglkit/internal/ports"
	"togglkit/pkg/domain"
)

// Dialect selects the database/sql driver and its upsert syntax.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// ParseDialect validates a configured driver name.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case MySQL, SQLite:
		return d, nil
	default:
		return "", fmt.Errorf("store: unsupported driver %q", s)
	}
}

// upsert builds an insert-or-update statement. cols[0] is the primary key.
func (d Dialect) upsert(table string, cols []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		if d == MySQL {
			sets = append(sets, fmt.Sprintf("%s=VALUES(%s)", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s=excluded.%s", c, c))
		}
	}
	if d == MySQL {
		b.WriteString(" ON DUPLICATE KEY UPDATE ")
	} else {
		fmt.Fprintf(&b, " ON CONFLICT(%s) DO UPDATE SET ", cols[0])
	}
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

// Client implements ports.Sink by writing to SQL tables.
type Client struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

// Open connects using the dialect's driver.
// MySQL DSN example: user:pass@tcp(host:3306)/dbname?parseTime=true
// SQLite DSN example: /var/lib/togglkit/toggl.db
func Open(ctx context.Context, dialect Dialect, dsn string, log *zap.Logger) (*Client, error) {
	if dsn == "" {
		return nil, fmt.Errorf("store: %s DSN is required", dialect)
	}
	if log == nil {
		log = zap.NewNop()
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case MySQL:
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	case SQLite:
		// Single writer.
		db.SetMaxOpenConns(1)
	}

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db, dialect: dialect, log: log.Named("store")}, nil
}

// DB exposes the pool for migrations.
func (c *Client) DB() *sql.DB { return c.db }

func (c *Client) Dialect() Dialect { return c.dialect }

// Close closes the underlying DB. Not part of ports.Sink to keep ports minimal.
func (c *Client) Close() error { return c.db.Close() }

// upsertAll writes items in one transaction through a prepared upsert.
func upsertAll[T any](ctx context.Context, c *Client, table string, cols []string, items []T, args func(T) ([]any, error)) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, c.dialect.upsert(table, cols))
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		a, err := args(item)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			tx.Rollback()
			return fmt.Errorf("store: upsert %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info("upserted rows", zap.String("table", table), zap.Int("count", len(items)))
	return nil
}

var workspaceCols = []string{"id", "name", "premium", "admin", "default_currency", "at"}

// SyncWorkspaces upserts workspaces.
func (c *Client) SyncWorkspaces(ctx context.Context, workspaces []domain.Workspace) error {
	return upsertAll(ctx, c, "toggl_workspaces", workspaceCols, workspaces, func(w domain.Workspace) ([]any, error) {
		return []any{w.ID, w.Name, w.Premium, w.Admin, w.DefaultCurrency, nullTime(w.At)}, nil
	})
}

var clientCols = []string{"id", "workspace_id", "name", "notes", "at"}

// SyncClients upserts clients.
func (c *Client) SyncClients(ctx context.Context, clients []domain.Client) error {
	return upsertAll(ctx, c, "toggl_clients", clientCols, clients, func(cl domain.Client) ([]any, error) {
		return []any{cl.ID, cl.WorkspaceID, cl.Name, cl.Notes, nullTime(cl.At)}, nil
	})
}

var projectCols = []string{"id", "workspace_id", "name", "active", "is_private", "billable", "color", "client_id", "at"}

// SyncProjects upserts projects.
func (c *Client) SyncProjects(ctx context.Context, projects []domain.Project) error {
	return upsertAll(ctx, c, "toggl_projects", projectCols, projects, func(p domain.Project) ([]any, error) {
		return []any{
			p.ID,
			p.WorkspaceID,
			p.Name,
			nullable(p.Active),
			nullable(p.Private),
			nullable(p.Billable),
			p.Color,
			nullable(p.ClientID),
			nullTime(p.At),
		}, nil
	})
}

var taskCols = []string{"id", "workspace_id", "project_id", "name", "active", "user_id", "estimated_seconds", "tracked_seconds", "at"}

// SyncTasks upserts tasks.
func (c *Client) SyncTasks(ctx context.Context, tasks []domain.Task) error {
	return upsertAll(ctx, c, "toggl_tasks", taskCols, tasks, func(t domain.Task) ([]any, error) {
		return []any{
			t.ID,
			t.WorkspaceID,
			t.ProjectID,
			t.Name,
			nullable(t.Active),
			nullable(t.UserID),
			nullable(t.EstimatedSeconds),
			nullable(t.TrackedSeconds),
			nullTime(t.At),
		}, nil
	})
}

var userCols = []string{"id", "email", "fullname", "timezone", "default_workspace_id", "at"}

// SyncUsers upserts users.
func (c *Client) SyncUsers(ctx context.Context, users []domain.User) error {
	return upsertAll(ctx, c, "toggl_users", userCols, users, func(u domain.User) ([]any, error) {
		var wid any
		if u.DefaultWorkspaceID != 0 {
			wid = u.DefaultWorkspaceID
		}
		return []any{u.ID, u.Email, u.FullName, u.Timezone, wid, nullTime(u.At)}, nil
	})
}

var entryCols = []string{
	"id", "description", "project_id", "workspace_id", "task_id", "user_id",
	"tags", "start", "stop", "duration_sec", "billable", "created_with", "at",
}

// SyncEntries upserts time entries.
func (c *Client) SyncEntries(ctx context.Context, entries []domain.TimeEntry) error {
	return upsertAll(ctx, c, "toggl_time_entries", entryCols, entries, func(e domain.TimeEntry) ([]any, error) {
		if e.Start.IsZero() {
			return nil, fmt.Errorf("store: time entry %d has no start", e.ID)
		}
		// Tags are stored as JSON text for readability.
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		var stop any
		if e.Stop != nil {
			stop = e.Stop.UTC()
		}
		return []any{
			e.ID,
			e.Description,
			nullable(e.EffectiveProjectID()),
			nullable(e.EffectiveWorkspaceID()),
			nullable(e.TaskID),
			nullable(e.UserID),
			string(tagsJSON),
			e.Start.UTC(),
			stop,
			nullable(e.Duration),
			nullable(e.Billable),
			e.CreatedWith,
			nullTime(e.At),
		}, nil
	})
}

var runCols = []string{"id", "window_from", "window_to", "started_at", "finished_at", "entries", "projects", "error"}

// RecordRun stores the outcome of one sync run.
func (c *Client) RecordRun(ctx context.Context, run ports.SyncRun) error {
	if run.ID == "" {
		return errors.New("store: sync run without id")
	}
	return upsertAll(ctx, c, "toggl_sync_runs", runCols, []ports.SyncRun{run}, func(r ports.SyncRun) ([]any, error) {
		var msg any
		if r.Err != "" {
			msg = r.Err
		}
		return []any{r.ID, r.From.UTC(), r.To.UTC(), r.StartedAt.UTC(), r.FinishedAt.UTC(), r.Entries, r.Projects, msg}, nil
	})
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
