package domain

import "time"

// TimeEntry represents a Toggl time entry in the domain.
//
// Project and Workspace hold the embedded objects when the API returns them;
// ProjectID and WorkspaceID carry the raw pid/wid values independently.
type TimeEntry struct {
	ID          int64
	Description string
	Project     *Project
	Workspace   *Workspace
	ProjectID   *int64
	WorkspaceID *int64
	TaskID      *int64
	UserID      *int64
	Tags        []string
	Start       time.Time
	Stop        *time.Time
	Duration    *int64 // seconds; negative means running in Toggl API semantics
	Billable    *bool
	CreatedWith string
	DurOnly     *bool
	At          time.Time // Last update timestamp from Toggl
}

// Running reports whether the entry is a currently running timer.
func (e TimeEntry) Running() bool {
	return e.Duration != nil && *e.Duration < 0
}

// EffectiveProjectID returns the raw pid, falling back to the embedded project's id.
func (e TimeEntry) EffectiveProjectID() *int64 {
	if e.ProjectID != nil {
		return e.ProjectID
	}
	if e.Project != nil && e.Project.ID != 0 {
		id := e.Project.ID
		return &id
	}
	return nil
}

// EffectiveWorkspaceID returns the raw wid, falling back to the embedded workspace's id.
func (e TimeEntry) EffectiveWorkspaceID() *int64 {
	if e.WorkspaceID != nil {
		return e.WorkspaceID
	}
	if e.Workspace != nil && e.Workspace.ID != 0 {
		id := e.Workspace.ID
		return &id
	}
	return nil
}
