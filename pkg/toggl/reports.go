package toggl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"togglkit/pkg/domain"
)

// GetDetailedReport fetches one page of the detailed report. The reports API
// does not use the data envelope; the whole body is the result.
// Toggl reports v2: GET /details?workspace_id=...&since=...&until=...
func (c *Client) GetDetailedReport(ctx context.Context, p domain.PagedReportsParameter) (*domain.PagedResult, error) {
	if p.WorkspaceID == 0 {
		return nil, errors.New("toggl: detailed report: missing workspace id")
	}
	rawURL := c.reportURL(epReportDetails, c.reportQuery(p))
	body, err := c.send(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	var raw rawPagedResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
	}
	res, err := pagedResultFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
	}
	return &res, nil
}

func (c *Client) reportQuery(p domain.PagedReportsParameter) url.Values {
	q := url.Values{}
	q.Set("workspace_id", strconv.FormatInt(p.WorkspaceID, 10))
	ua := p.UserAgent
	if ua == "" {
		ua = c.userAgent
	}
	q.Set("user_agent", ua)
	if p.Since != "" {
		q.Set("since", p.Since)
	}
	if p.Until != "" {
		q.Set("until", p.Until)
	}
	if len(p.ProjectIDs) > 0 {
		q.Set("project_ids", joinIDs(p.ProjectIDs))
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		q.Set("description", d)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	return q
}

// joinIDs renders a set of ids as an ascending, comma-joined list.
func joinIDs(ids []int64) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
