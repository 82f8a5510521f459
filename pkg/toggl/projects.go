package toggl

import (
	"context"
	"errors"
	"net/http"

	"togglkit/pkg/domain"
)

// ListProjects collects the projects of every workspace, keyed by id. There is
// no account-wide endpoint, so this issues one workspace listing followed by
// one request per workspace.
func (c *Client) ListProjects(ctx context.Context) (map[int64]domain.Project, error) {
	out := make(map[int64]domain.Project)
	err := eachWorkspace(ctx, c, c.ListWorkspaceProjects, nil, func(ws domain.Workspace, p domain.Project) {
		if p.WorkspaceID == 0 {
			p.WorkspaceID = ws.ID
		}
		out[p.ID] = p
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epProjects, 0, nil), projectToBody(p), projectFromRaw)
}

func (c *Client) UpdateProject(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if p.ID == 0 {
		return nil, errors.New("toggl: update project: missing id")
	}
	return writeOne(ctx, c, http.MethodPut, c.apiURL(epProjectByID, p.ID, nil), projectToBody(p), projectFromRaw)
}

func (c *Client) DestroyProject(ctx context.Context, id int64) error {
	return c.destroy(ctx, epProjectByID, id)
}

// CreateProjectUser adds a user to a project.
func (c *Client) CreateProjectUser(ctx context.Context, pu domain.ProjectUser) (*domain.ProjectUser, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epProjectUsers, 0, nil), projectUserToBody(pu), projectUserFromRaw)
}
