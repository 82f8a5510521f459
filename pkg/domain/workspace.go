package domain

import "time"

// Workspace is the top-level tenant grouping projects, clients and users.
type Workspace struct {
	ID              int64
	Name            string
	Premium         bool
	Admin           bool
	DefaultCurrency string
	At              time.Time
}

// Client is a customer record scoped to a workspace.
type Client struct {
	ID          int64
	WorkspaceID int64
	Name        string
	Notes       string
	At          time.Time
}

// Task is a project sub-item. Tasks exist only on paid workspaces.
type Task struct {
	ID               int64
	Name             string
	ProjectID        int64
	WorkspaceID      int64
	UserID           *int64
	Active           *bool
	EstimatedSeconds *int64
	TrackedSeconds   *int64
	At               time.Time
}

// User is a Toggl account. Two users are the same user when their ids match.
type User struct {
	ID                 int64
	Email              string
	FullName           string
	DefaultWorkspaceID int64
	Timezone           string
	At                 time.Time
}
