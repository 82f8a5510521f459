package toggl

import (
	"context"

	"togglkit/pkg/domain"
)

// GetCurrentUser returns the user owning the credentials, or nil when the API
// answers with a null data field.
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	return getOne(ctx, c, c.apiURL(epCurrentUser, 0, nil), userFromRaw)
}

// ListUsers returns the users of all workspaces. A user present in several
// workspaces appears once, in the position it was first seen.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	seen := make(map[int64]struct{})
	err := eachWorkspace(ctx, c, c.ListWorkspaceUsers, nil, func(_ domain.Workspace, u domain.User) {
		if _, ok := seen[u.ID]; ok {
			return
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}
