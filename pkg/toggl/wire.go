package toggl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"togglkit/pkg/domain"
)

// timestampLayout is the API's date-string format: second precision with an
// explicit offset, "+00:00" rather than "Z" for UTC.
const timestampLayout = "2006-01-02T15:04:05-07:00"

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func isNull(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

// decodeData unwraps {"data": ...}. It returns nil when data is null or absent.
func decodeData[R any](body []byte) (*R, error) {
	if isNull(body) {
		return nil, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if isNull(env.Data) {
		return nil, nil
	}
	var r R
	if err := json.Unmarshal(env.Data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// decodeList accepts a bare array, null, or a data envelope around either.
func decodeList[R any](body []byte) ([]R, error) {
	trimmed := bytes.TrimSpace(body)
	if isNull(trimmed) {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if isNull(env.Data) {
			return nil, nil
		}
		trimmed = env.Data
	}
	var out []R
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// rawTimeEntry mirrors time entry JSON from both the v8 API and the reports API.
// Several fields have two historical names; see timeEntryFromRaw.
type rawTimeEntry struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Pid         *int64          `json:"pid"`
	Wid         *int64          `json:"wid"`
	Tid         *int64          `json:"tid"`
	UID         *int64          `json:"uid"`
	Start       string          `json:"start"`
	End         *string         `json:"end"`
	Stop        *string         `json:"stop"`
	Dur         *int64          `json:"dur"`
	Duration    *int64          `json:"duration"`
	IsBillable  *bool           `json:"is_billable"`
	Billable    json.RawMessage `json:"billable"` // bool in v8, an amount in reports
	Tags        []string        `json:"tags"`
	CreatedWith string          `json:"created_with"`
	DurOnly     *bool           `json:"duronly"`
	Project     json.RawMessage `json:"project"` // object, or the project name in reports
	Workspace   *rawWorkspace   `json:"workspace"`
	At          string          `json:"at"`
	Updated     string          `json:"updated"`
}

func timeEntryFromRaw(r rawTimeEntry) (domain.TimeEntry, error) {
	e := domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		ProjectID:   r.Pid,
		WorkspaceID: r.Wid,
		TaskID:      r.Tid,
		UserID:      r.UID,
		Tags:        r.Tags,
		CreatedWith: r.CreatedWith,
		DurOnly:     r.DurOnly,
	}

	var err error
	if e.Start, err = parseTimestamp(r.Start); err != nil {
		return e, err
	}

	end := r.End
	if end == nil {
		end = r.Stop
	}
	if end != nil && *end != "" {
		stop, err := parseTimestamp(*end)
		if err != nil {
			return e, err
		}
		e.Stop = &stop
	}

	e.Duration = r.Dur
	if e.Duration == nil {
		e.Duration = r.Duration
	}

	e.Billable = r.IsBillable
	if e.Billable == nil && !isNull(r.Billable) {
		var b bool
		if json.Unmarshal(r.Billable, &b) == nil {
			e.Billable = &b
		}
	}

	if !isNull(r.Project) {
		project, err := projectFromField(r.Project, r.Pid)
		if err != nil {
			return e, err
		}
		e.Project = project
	}

	if r.Workspace != nil {
		ws, err := workspaceFromRaw(*r.Workspace)
		if err != nil {
			return e, err
		}
		e.Workspace = &ws
	}

	at := r.At
	if at == "" {
		at = r.Updated
	}
	if e.At, err = parseTimestamp(at); err != nil {
		return e, err
	}
	return e, nil
}

// projectFromField handles the two shapes of a time entry's project field. A
// bare string yields a partial project holding the name and the entry's pid.
func projectFromField(raw json.RawMessage, pid *int64) (*domain.Project, error) {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		p := &domain.Project{Name: name}
		if pid != nil {
			p.ID = *pid
		}
		return p, nil
	}
	var rp rawProject
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("project field: %w", err)
	}
	p, err := projectFromRaw(rp)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// timeEntryBody is the writable subset of a time entry. Unset fields are omitted.
type timeEntryBody struct {
	ID          int64    `json:"id,omitempty"`
	Description string   `json:"description,omitempty"`
	Pid         *int64   `json:"pid,omitempty"`
	Wid         *int64   `json:"wid,omitempty"`
	Tid         *int64   `json:"tid,omitempty"`
	Start       string   `json:"start,omitempty"`
	Stop        string   `json:"stop,omitempty"`
	Duration    *int64   `json:"duration,omitempty"`
	Billable    *bool    `json:"billable,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedWith string   `json:"created_with,omitempty"`
	DurOnly     *bool    `json:"duronly,omitempty"`
}

func timeEntryToBody(e domain.TimeEntry) map[string]timeEntryBody {
	b := timeEntryBody{
		ID:          e.ID,
		Description: e.Description,
		Pid:         e.EffectiveProjectID(),
		Wid:         e.EffectiveWorkspaceID(),
		Tid:         e.TaskID,
		Duration:    e.Duration,
		Billable:    e.Billable,
		Tags:        e.Tags,
		CreatedWith: e.CreatedWith,
		DurOnly:     e.DurOnly,
	}
	if !e.Start.IsZero() {
		b.Start = formatTimestamp(e.Start)
	}
	if e.Stop != nil && !e.Stop.IsZero() {
		b.Stop = formatTimestamp(*e.Stop)
	}
	return map[string]timeEntryBody{"time_entry": b}
}

type rawProject struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Wid           int64  `json:"wid"`
	Cid           *int64 `json:"cid"`
	Active        *bool  `json:"active"`
	IsPrivate     *bool  `json:"is_private"`
	Template      *bool  `json:"template"`
	Billable      *bool  `json:"billable"`
	AutoEstimates *bool  `json:"auto_estimates"`
	Color         string `json:"color"`
	At            string `json:"at"`
}

func projectFromRaw(r rawProject) (domain.Project, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{
		ID:            r.ID,
		WorkspaceID:   r.Wid,
		ClientID:      r.Cid,
		Name:          r.Name,
		Active:        r.Active,
		Private:       r.IsPrivate,
		Template:      r.Template,
		Billable:      r.Billable,
		AutoEstimates: r.AutoEstimates,
		Color:         r.Color,
		At:            at,
	}, nil
}

type projectBody struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name,omitempty"`
	Wid           int64  `json:"wid,omitempty"`
	Cid           *int64 `json:"cid,omitempty"`
	Active        *bool  `json:"active,omitempty"`
	IsPrivate     *bool  `json:"is_private,omitempty"`
	Template      *bool  `json:"template,omitempty"`
	Billable      *bool  `json:"billable,omitempty"`
	AutoEstimates *bool  `json:"auto_estimates,omitempty"`
	Color         string `json:"color,omitempty"`
}

func projectToBody(p domain.Project) map[string]projectBody {
	return map[string]projectBody{"project": {
		ID:            p.ID,
		Name:          p.Name,
		Wid:           p.WorkspaceID,
		Cid:           p.ClientID,
		Active:        p.Active,
		IsPrivate:     p.Private,
		Template:      p.Template,
		Billable:      p.Billable,
		AutoEstimates: p.AutoEstimates,
		Color:         p.Color,
	}}
}

type rawClient struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Wid   int64  `json:"wid"`
	Notes string `json:"notes"`
	At    string `json:"at"`
}

func clientFromRaw(r rawClient) (domain.Client, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.Client{}, err
	}
	return domain.Client{ID: r.ID, WorkspaceID: r.Wid, Name: r.Name, Notes: r.Notes, At: at}, nil
}

type clientBody struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Wid   int64  `json:"wid,omitempty"`
	Notes string `json:"notes,omitempty"`
}

func clientToBody(c domain.Client) map[string]clientBody {
	return map[string]clientBody{"client": {ID: c.ID, Name: c.Name, Wid: c.WorkspaceID, Notes: c.Notes}}
}

type rawTask struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Pid              int64  `json:"pid"`
	Wid              int64  `json:"wid"`
	UID              *int64 `json:"uid"`
	Active           *bool  `json:"active"`
	EstimatedSeconds *int64 `json:"estimated_seconds"`
	TrackedSeconds   *int64 `json:"tracked_seconds"`
	At               string `json:"at"`
}

func taskFromRaw(r rawTask) (domain.Task, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		ID:               r.ID,
		Name:             r.Name,
		ProjectID:        r.Pid,
		WorkspaceID:      r.Wid,
		UserID:           r.UID,
		Active:           r.Active,
		EstimatedSeconds: r.EstimatedSeconds,
		TrackedSeconds:   r.TrackedSeconds,
		At:               at,
	}, nil
}

type taskBody struct {
	ID               int64  `json:"id,omitempty"`
	Name             string `json:"name,omitempty"`
	Pid              int64  `json:"pid,omitempty"`
	Wid              int64  `json:"wid,omitempty"`
	UID              *int64 `json:"uid,omitempty"`
	Active           *bool  `json:"active,omitempty"`
	EstimatedSeconds *int64 `json:"estimated_seconds,omitempty"`
}

func taskToBody(t domain.Task) map[string]taskBody {
	return map[string]taskBody{"task": {
		ID:               t.ID,
		Name:             t.Name,
		Pid:              t.ProjectID,
		Wid:              t.WorkspaceID,
		UID:              t.UserID,
		Active:           t.Active,
		EstimatedSeconds: t.EstimatedSeconds,
	}}
}

type rawWorkspace struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Premium         bool   `json:"premium"`
	Admin           bool   `json:"admin"`
	DefaultCurrency string `json:"default_currency"`
	At              string `json:"at"`
}

func workspaceFromRaw(r rawWorkspace) (domain.Workspace, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.Workspace{}, err
	}
	return domain.Workspace{
		ID:              r.ID,
		Name:            r.Name,
		Premium:         r.Premium,
		Admin:           r.Admin,
		DefaultCurrency: r.DefaultCurrency,
		At:              at,
	}, nil
}

type rawUser struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"fullname"`
	DefaultWid int64  `json:"default_wid"`
	Timezone   string `json:"timezone"`
	At         string `json:"at"`
}

func userFromRaw(r rawUser) (domain.User, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:                 r.ID,
		Email:              r.Email,
		FullName:           r.FullName,
		DefaultWorkspaceID: r.DefaultWid,
		Timezone:           r.Timezone,
		At:                 at,
	}, nil
}

type rawProjectUser struct {
	ID      int64    `json:"id"`
	Pid     int64    `json:"pid"`
	UID     int64    `json:"uid"`
	Wid     int64    `json:"wid"`
	Manager *bool    `json:"manager"`
	Rate    *float64 `json:"rate"`
	At      string   `json:"at"`
}

func projectUserFromRaw(r rawProjectUser) (domain.ProjectUser, error) {
	at, err := parseTimestamp(r.At)
	if err != nil {
		return domain.ProjectUser{}, err
	}
	return domain.ProjectUser{
		ID:          r.ID,
		ProjectID:   r.Pid,
		UserID:      r.UID,
		WorkspaceID: r.Wid,
		Manager:     r.Manager,
		Rate:        r.Rate,
		At:          at,
	}, nil
}

type projectUserBody struct {
	ID      int64    `json:"id,omitempty"`
	Pid     int64    `json:"pid,omitempty"`
	UID     int64    `json:"uid,omitempty"`
	Wid     int64    `json:"wid,omitempty"`
	Manager *bool    `json:"manager,omitempty"`
	Rate    *float64 `json:"rate,omitempty"`
}

func projectUserToBody(pu domain.ProjectUser) map[string]projectUserBody {
	return map[string]projectUserBody{"project_user": {
		ID:      pu.ID,
		Pid:     pu.ProjectID,
		UID:     pu.UserID,
		Wid:     pu.WorkspaceID,
		Manager: pu.Manager,
		Rate:    pu.Rate,
	}}
}

// rawPagedResult mirrors the reports API envelope. It is not a CRUD data
// envelope: totals sit beside the data array.
type rawPagedResult struct {
	TotalCount    int            `json:"total_count"`
	PerPage       int            `json:"per_page"`
	TotalGrand    *int64         `json:"total_grand"`
	TotalBillable *int64         `json:"total_billable"`
	Data          []rawTimeEntry `json:"data"`
}

func pagedResultFromRaw(r rawPagedResult) (domain.PagedResult, error) {
	out := domain.PagedResult{
		TotalCount:    r.TotalCount,
		PerPage:       r.PerPage,
		TotalGrand:    r.TotalGrand,
		TotalBillable: r.TotalBillable,
		Entries:       make([]domain.TimeEntry, 0, len(r.Data)),
	}
	for _, raw := range r.Data {
		e, err := timeEntryFromRaw(raw)
		if err != nil {
			return out, err
		}
		out.Entries = append(out.Entries, e)
	}
	return out, nil
}
