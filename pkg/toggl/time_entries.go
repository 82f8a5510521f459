package toggl

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"togglkit/pkg/domain"
)

// ListTimeEntries fetches time entries started in [start, end]. The range is
// sent only when both bounds are set; otherwise the API applies the account's
// default visibility window. A null payload yields an empty slice.
// Toggl v8: GET /time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, start, end time.Time) ([]domain.TimeEntry, error) {
	var q url.Values
	if !start.IsZero() && !end.IsZero() {
		q = url.Values{}
		q.Set("start_date", formatTimestamp(start))
		q.Set("end_date", formatTimestamp(end))
	}
	return getList(ctx, c, c.apiURL(epTimeEntries, 0, q), timeEntryFromRaw)
}

// GetTimeEntry returns the entry with the given id, or nil when the API
// answers with a null data field.
func (c *Client) GetTimeEntry(ctx context.Context, id int64) (*domain.TimeEntry, error) {
	return getOne(ctx, c, c.apiURL(epTimeEntryByID, id, nil), timeEntryFromRaw)
}

// GetCurrentTimeEntry returns the running entry, or nil when no timer runs.
func (c *Client) GetCurrentTimeEntry(ctx context.Context) (*domain.TimeEntry, error) {
	return getOne(ctx, c, c.apiURL(epTimeEntryCurrent, 0, nil), timeEntryFromRaw)
}

func (c *Client) CreateTimeEntry(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epTimeEntries, 0, nil), timeEntryToBody(e), timeEntryFromRaw)
}

// StartTimeEntry creates the entry and starts its timer.
func (c *Client) StartTimeEntry(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error) {
	return writeOne(ctx, c, http.MethodPost, c.apiURL(epTimeEntryStart, 0, nil), timeEntryToBody(e), timeEntryFromRaw)
}

// StopTimeEntry stops a running entry.
func (c *Client) StopTimeEntry(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error) {
	if e.ID == 0 {
		return nil, errors.New("toggl: stop time entry: missing id")
	}
	return writeOne(ctx, c, http.MethodPut, c.apiURL(epTimeEntryStop, e.ID, nil), timeEntryToBody(e), timeEntryFromRaw)
}

func (c *Client) UpdateTimeEntry(ctx context.Context, e domain.TimeEntry) (*domain.TimeEntry, error) {
	if e.ID == 0 {
		return nil, errors.New("toggl: update time entry: missing id")
	}
	return writeOne(ctx, c, http.MethodPut, c.apiURL(epTimeEntryByID, e.ID, nil), timeEntryToBody(e), timeEntryFromRaw)
}

func (c *Client) DestroyTimeEntry(ctx context.Context, id int64) error {
	return c.destroy(ctx, epTimeEntryByID, id)
}
