package toggl

import (
	"context"

	"togglkit/pkg/domain"
)

// ListWorkspaces returns the workspaces in the order the API lists them.
func (c *Client) ListWorkspaces(ctx context.Context) ([]domain.Workspace, error) {
	return getList(ctx, c, c.apiURL(epWorkspaces, 0, nil), workspaceFromRaw)
}

// GetWorkspace returns nil when the API answers with a null data field.
func (c *Client) GetWorkspace(ctx context.Context, id int64) (*domain.Workspace, error) {
	return getOne(ctx, c, c.apiURL(epWorkspaceByID, id, nil), workspaceFromRaw)
}

func (c *Client) ListWorkspaceUsers(ctx context.Context, workspaceID int64) ([]domain.User, error) {
	return getList(ctx, c, c.apiURL(epWorkspaceUsers, workspaceID, nil), userFromRaw)
}

func (c *Client) ListWorkspaceProjects(ctx context.Context, workspaceID int64) ([]domain.Project, error) {
	return getList(ctx, c, c.apiURL(epWorkspaceProjects, workspaceID, nil), projectFromRaw)
}

func (c *Client) ListWorkspaceClients(ctx context.Context, workspaceID int64) ([]domain.Client, error) {
	return getList(ctx, c, c.apiURL(epWorkspaceClients, workspaceID, nil), clientFromRaw)
}

// ListWorkspaceTasks returns the active tasks of one workspace.
func (c *Client) ListWorkspaceTasks(ctx context.Context, workspaceID int64) ([]domain.Task, error) {
	return getList(ctx, c, c.apiURL(epWorkspaceTasks, workspaceID, nil), taskFromRaw)
}

// eachWorkspace lists the workspaces, then calls fetch once per workspace and
// hands every item to add. When skip is non-nil and returns true for a fetch
// error, that workspace is passed over.
func eachWorkspace[T any](
	ctx context.Context,
	c *Client,
	fetch func(context.Context, int64) ([]T, error),
	skip func(domain.Workspace, error) bool,
	add func(domain.Workspace, T),
) error {
	workspaces, err := c.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	for _, ws := range workspaces {
		items, err := fetch(ctx, ws.ID)
		if err != nil {
			if skip != nil && skip(ws, err) {
				continue
			}
			return err
		}
		for _, item := range items {
			add(ws, item)
		}
	}
	return nil
}
