package toggl

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"togglkit/pkg/domain"
)

// ListTasks collects the active tasks of every workspace, keyed by id.
//
// Tasks are a paid feature: workspaces that answer 403 or 404 contribute no
// tasks instead of failing the whole listing. Any other error is returned.
func (c *Client) ListTasks(ctx context.Context) (map[int64]domain.Task, error) {
	out := make(map[int64]domain.Task)
	skip := func(ws domain.Workspace, err error) bool {
		if !IsMissing(err) {
			return false
		}
		c.log.Debug("skipping workspace tasks",
			zap.Int64("workspace_id", ws.ID),
			zap.Bool("premium", ws.Premium),
			zap.Error(err),
		)
		return true
	}
	err := eachWorkspace(ctx, c, c.ListWorkspaceTasks, skip, func(_ domain.Workspace, t domain.Task) {
		out[t.ID] = t
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, t domain.Task) (*domain.Task, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epTasks, 0, nil), taskToBody(t), taskFromRaw)
}

func (c *Client) UpdateTask(ctx context.Context, t domain.Task) (*domain.Task, error) {
	if t.ID == 0 {
		return nil, errors.New("toggl: update task: missing id")
	}
	return writeOne(ctx, c, http.MethodPut, c.apiURL(epTaskByID, t.ID, nil), taskToBody(t), taskFromRaw)
}

func (c *Client) DestroyTask(ctx context.Context, id int64) error {
	return c.destroy(ctx, epTaskByID, id)
}
