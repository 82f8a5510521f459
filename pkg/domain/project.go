package domain

import "time"

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID            int64
	WorkspaceID   int64
	ClientID      *int64
	Name          string
	Active        *bool
	Private       *bool
	Template      *bool
	Billable      *bool
	AutoEstimates *bool
	Color         string
	At            time.Time // Last update timestamp from Toggl
}

// ProjectUser associates a user with a project inside a workspace.
type ProjectUser struct {
	ID          int64
	ProjectID   int64
	UserID      int64
	WorkspaceID int64
	Manager     *bool
	Rate        *float64
	At          time.Time
}
