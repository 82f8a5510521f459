package toggl

import (
	"strconv"
	"strings"
)

// endpoint is a URL template relative to an API root. A template holds at most
// one {id} substitution point.
type endpoint string

const idPlaceholder = "{id}"

const (
	epTimeEntries      endpoint = "time_entries"
	epTimeEntryByID    endpoint = "time_entries/{id}"
	epTimeEntryCurrent endpoint = "time_entries/current"
	epTimeEntryStart   endpoint = "time_entries/start"
	epTimeEntryStop    endpoint = "time_entries/{id}/stop"

	epWorkspaces        endpoint = "workspaces"
	epWorkspaceByID     endpoint = "workspaces/{id}"
	epWorkspaceUsers    endpoint = "workspaces/{id}/users"
	epWorkspaceProjects endpoint = "workspaces/{id}/projects"
	epWorkspaceClients  endpoint = "workspaces/{id}/clients"
	epWorkspaceTasks    endpoint = "workspaces/{id}/tasks"

	epClients    endpoint = "clients"
	epClientByID endpoint = "clients/{id}"

	epProjects    endpoint = "projects"
	epProjectByID endpoint = "projects/{id}"

	epTasks    endpoint = "tasks"
	epTaskByID endpoint = "tasks/{id}"

	epProjectUsers endpoint = "project_users"
	epCurrentUser  endpoint = "me"

	// Relative to the reports root.
	epReportDetails endpoint = "details"
)

// expand substitutes id into the template. Templates without a placeholder are returned as is.
func (e endpoint) expand(id int64) string {
	return strings.Replace(string(e), idPlaceholder, strconv.FormatInt(id, 10), 1)
}
