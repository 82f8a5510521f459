package toggl

import (
	"context"
	"errors"
	"net/http"

	"togglkit/pkg/domain"
)

// ListClients fetches every client visible to the credentials.
func (c *Client) ListClients(ctx context.Context) ([]domain.Client, error) {
	return getList(ctx, c, c.apiURL(epClients, 0, nil), clientFromRaw)
}

func (c *Client) CreateClient(ctx context.Context, cl domain.Client) (*domain.Client, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epClients, 0, nil), clientToBody(cl), clientFromRaw)
}

func (c *Client) UpdateClient(ctx context.Context, cl domain.Client) (*domain.Client, error) {
	if cl.ID == 0 {
		return nil, errors.New("toggl: update client: missing id")
	}
	return writeOne(ctx, c, http.MethodPut, c.apiURL(epClientByID, cl.ID, nil), clientToBody(cl), clientFromRaw)
}

func (c *Client) DestroyClient(ctx context.Context, id int64) error {
	return c.destroy(ctx, epClientByID, id)
}
