package toggl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"togglkit/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.BaseURL = srv.URL + "/api/v8"
	opts.ReportsURL = srv.URL + "/reports/api/v2"
	return NewClient(TokenCredentials("secret-token"), opts, zaptest.NewLogger(t))
}

func newServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// hits counts requests per key across server goroutines.
type hits struct {
	mu sync.Mutex
	n  map[string]int
}

func (h *hits) add(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.n == nil {
		h.n = make(map[string]int)
	}
	h.n[key]++
}

func (h *hits) get(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.n[key]
}

func TestClient_SendsBasicAuthAndHeaders(t *testing.T) {
	var (
		mu        sync.Mutex
		user      string
		pass      string
		ok        bool
		userAgent string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/me", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		user, pass, ok = r.BasicAuth()
		userAgent = r.Header.Get("User-Agent")
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"data":{"id":5,"email":"jane@example.com","fullname":"Jane","timezone":"Europe/Zurich","default_wid":1}}`)
	})
	srv := newServer(t, mux)
	c := newTestClient(t, srv, Options{UserAgent: "togglkit-test"})

	u, err := c.GetCurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, int64(5), u.ID)
	assert.Equal(t, "Europe/Zurich", u.Timezone)
	assert.Equal(t, int64(1), u.DefaultWorkspaceID)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ok)
	assert.Equal(t, "secret-token", user)
	assert.Equal(t, "api_token", pass)
	assert.Equal(t, "togglkit-test", userAgent)
}

func TestClient_MissingCredentialsFailsWithoutRequest(t *testing.T) {
	var h hits
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		h.add("any")
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})
	srv := newServer(t, mux)
	c := NewClient(Credentials{}, Options{BaseURL: srv.URL}, nil)

	_, err := c.GetCurrentUser(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, h.get("any"))
}

func TestListTimeEntries_EncodesDateRange(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []map[string][]string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/time_entries", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()
		writeJSON(w, http.StatusOK, `[{"id":1,"description":"a","start":"2019-02-01T01:01:00+01:00","duration":60}]`)
	})
	srv := newServer(t, mux)
	c := newTestClient(t, srv, Options{})
	ctx := context.Background()

	start := time.Date(2019, 2, 1, 1, 1, 0, 0, time.FixedZone("CET", 3600))
	end := time.Date(2019, 2, 2, 0, 0, 0, 0, time.UTC)
	entries, err := c.ListTimeEntries(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(60), *entries[0].Duration)

	// A single bound is not sent.
	_, err = c.ListTimeEntries(ctx, start, time.Time{})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, queries, 2)
	assert.Equal(t, []string{"2019-02-01T01:01:00+01:00"}, queries[0]["start_date"])
	assert.Equal(t, []string{"2019-02-02T00:00:00+00:00"}, queries[0]["end_date"])
	assert.Empty(t, queries[1])
}

func TestListTimeEntries_NullPayloadIsEmpty(t *testing.T) {
	for _, body := range []string{`null`, `{"data":null}`, ``} {
		t.Run("body="+body, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/v8/time_entries", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			c := newTestClient(t, newServer(t, mux), Options{})

			entries, err := c.ListTimeEntries(context.Background(), time.Time{}, time.Time{})
			require.NoError(t, err)
			assert.NotNil(t, entries)
			assert.Empty(t, entries)
		})
	}
}

func TestGetTimeEntry_NullDataIsAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/time_entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})
	mux.HandleFunc("GET /api/v8/time_entries/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})
	mux.HandleFunc("GET /api/v8/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	te, err := c.GetTimeEntry(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, te)

	cur, err := c.GetCurrentTimeEntry(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	u, err := c.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestClient_MapsErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		check    func(t *testing.T, err error, url string)
	}{
		{
			name:     "forbidden",
			status:   http.StatusForbidden,
			sentinel: ErrPermissionDenied,
		},
		{
			name:     "not found carries the requested url",
			status:   http.StatusNotFound,
			sentinel: ErrNotFound,
			check: func(t *testing.T, err error, url string) {
				var nf *NotFoundError
				require.ErrorAs(t, err, &nf)
				assert.Equal(t, url, nf.URL)
			},
		},
		{
			name:     "bad request carries the body verbatim",
			status:   http.StatusBadRequest,
			body:     "Project can't be blank\n",
			sentinel: ErrBadRequest,
			check: func(t *testing.T, err error, _ string) {
				var br *BadRequestError
				require.ErrorAs(t, err, &br)
				assert.Equal(t, "Project can't be blank\n", br.Body)
			},
		},
		{
			name:     "anything else is unexpected",
			status:   http.StatusTooManyRequests,
			body:     "slow down",
			sentinel: ErrUnexpectedResponse,
			check: func(t *testing.T, err error, _ string) {
				var ur *UnexpectedResponseError
				require.ErrorAs(t, err, &ur)
				assert.Equal(t, http.StatusTooManyRequests, ur.StatusCode)
				assert.Equal(t, "slow down", ur.Body)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/v8/time_entries/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			srv := newServer(t, mux)
			c := newTestClient(t, srv, Options{})

			te, err := c.GetTimeEntry(context.Background(), 123)
			require.Error(t, err)
			assert.Nil(t, te)
			assert.ErrorIs(t, err, tt.sentinel)
			for _, other := range []error{ErrPermissionDenied, ErrNotFound, ErrBadRequest, ErrUnexpectedResponse} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(err, other), "unexpected match with %v", other)
				}
			}
			if tt.check != nil {
				tt.check(t, err, srv.URL+"/api/v8/time_entries/123")
			}
		})
	}
}

func TestCreateTimeEntry_ThenGetByID(t *testing.T) {
	var (
		mu     sync.Mutex
		stored []byte
		keys   []string
		method string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v8/time_entries", func(w http.ResponseWriter, r *http.Request) {
		var env map[string]map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&env)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Len(t, env, 1)
		entry := env["time_entry"]
		mu.Lock()
		method = r.Method
		for k := range entry {
			keys = append(keys, k)
		}
		entry["id"] = 42
		stored, _ = json.Marshal(entry)
		body := stored
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"data":`+string(body)+`}`)
	})
	mux.HandleFunc("GET /api/v8/time_entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		body := stored
		mu.Unlock()
		if r.PathValue("id") != "42" || body == nil {
			writeJSON(w, http.StatusOK, `{"data":null}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":`+string(body)+`}`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	cet := time.FixedZone("CET", 3600)
	start := time.Date(2011, 11, 15, 8, 0, 0, 0, cet)
	stop := time.Date(2011, 11, 15, 16, 0, 0, 0, cet)
	created, err := c.CreateTimeEntry(ctx, domain.TimeEntry{
		Description: "From unit test",
		ProjectID:   ptr(int64(7)),
		Start:       start,
		Stop:        &stop,
		Duration:    ptr(int64(480)),
		Billable:    ptr(true),
		CreatedWith: "togglkit tests",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(42), created.ID)

	mu.Lock()
	sort.Strings(keys)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, []string{"billable", "created_with", "description", "duration", "pid", "start", "stop"}, keys)
	mu.Unlock()

	got, err := c.GetTimeEntry(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "From unit test", got.Description)
	require.NotNil(t, got.Duration)
	assert.Equal(t, int64(480), *got.Duration)
	assert.True(t, got.Start.Equal(start))
	require.NotNil(t, got.Stop)
	assert.True(t, got.Stop.Equal(stop))
	assert.True(t, *got.Billable)
	assert.Equal(t, int64(7), *got.ProjectID)
}

func TestTimeEntryWrites_UseTheirEndpoints(t *testing.T) {
	var h hits
	entry := `{"data":{"id":7,"description":"x","start":"2024-01-01T09:00:00+00:00","duration":-1704099600}}`
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v8/time_entries/start", func(w http.ResponseWriter, r *http.Request) {
		h.add("start")
		writeJSON(w, http.StatusOK, entry)
	})
	mux.HandleFunc("PUT /api/v8/time_entries/{id}/stop", func(w http.ResponseWriter, r *http.Request) {
		h.add("stop " + r.PathValue("id"))
		writeJSON(w, http.StatusOK, `{"data":{"id":7,"description":"x","start":"2024-01-01T09:00:00+00:00","stop":"2024-01-01T09:00:05+00:00","duration":5}}`)
	})
	mux.HandleFunc("PUT /api/v8/time_entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.add("update " + r.PathValue("id"))
		writeJSON(w, http.StatusOK, entry)
	})
	mux.HandleFunc("DELETE /api/v8/time_entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.add("delete " + r.PathValue("id"))
		w.WriteHeader(http.StatusOK)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	started, err := c.StartTimeEntry(ctx, domain.TimeEntry{Description: "x", CreatedWith: "togglkit tests"})
	require.NoError(t, err)
	assert.True(t, started.Running())

	stopped, err := c.StopTimeEntry(ctx, *started)
	require.NoError(t, err)
	assert.False(t, stopped.Running())
	assert.Equal(t, int64(5), *stopped.Duration)

	_, err = c.UpdateTimeEntry(ctx, *started)
	require.NoError(t, err)
	require.NoError(t, c.DestroyTimeEntry(ctx, 7))

	_, err = c.UpdateTimeEntry(ctx, domain.TimeEntry{Description: "no id"})
	require.Error(t, err)

	assert.Equal(t, 1, h.get("start"))
	assert.Equal(t, 1, h.get("stop 7"))
	assert.Equal(t, 1, h.get("update 7"))
	assert.Equal(t, 1, h.get("delete 7"))
}

func TestWrite_NullDataIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v8/clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null}`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	_, err := c.CreateClient(context.Background(), domain.Client{Name: "Acme", WorkspaceID: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestClientCRUD_WrapsUnderClientKey(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	record := func(r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v8/clients", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, `{"data":{"id":3,"name":"Acme","wid":1,"at":"2024-01-01T00:00:00+00:00"}}`)
	})
	mux.HandleFunc("PUT /api/v8/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, `{"data":{"id":3,"name":"Acme","wid":1,"notes":"more notes"}}`)
	})
	mux.HandleFunc("GET /api/v8/clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":3,"name":"Acme","wid":1}]`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	created, err := c.CreateClient(ctx, domain.Client{Name: "Acme", WorkspaceID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, 2024, created.At.Year())

	created.Notes = "more notes"
	updated, err := c.UpdateClient(ctx, *created)
	require.NoError(t, err)
	assert.Equal(t, "more notes", updated.Notes)

	list, err := c.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"client":{"name":"Acme","wid":1}}`, bodies[0])
	assert.JSONEq(t, `{"client":{"id":3,"name":"Acme","wid":1,"notes":"more notes"}}`, bodies[1])
}

func TestProjectAndTaskWrites_WrapUnderTheirKeys(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies = map[string]string{}
	)
	record := func(key string, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies[key] = string(b)
		mu.Unlock()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v8/projects", func(w http.ResponseWriter, r *http.Request) {
		record("project", r)
		writeJSON(w, http.StatusOK, `{"data":{"id":10,"name":"JUnit Project","wid":1,"cid":3,"billable":true,"active":true}}`)
	})
	mux.HandleFunc("POST /api/v8/tasks", func(w http.ResponseWriter, r *http.Request) {
		record("task", r)
		writeJSON(w, http.StatusOK, `{"data":{"id":20,"name":"Task","pid":10,"wid":1,"active":true}}`)
	})
	mux.HandleFunc("PUT /api/v8/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		record("task update", r)
		writeJSON(w, http.StatusOK, `{"data":{"id":20,"name":"Task","pid":10,"wid":1,"active":false}}`)
	})
	mux.HandleFunc("POST /api/v8/project_users", func(w http.ResponseWriter, r *http.Request) {
		record("project_user", r)
		writeJSON(w, http.StatusOK, `{"data":{"id":30,"pid":10,"uid":5,"wid":1,"manager":false}}`)
	})
	mux.HandleFunc("DELETE /api/v8/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("DELETE /api/v8/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	p, err := c.CreateProject(ctx, domain.Project{Name: "JUnit Project", WorkspaceID: 1, ClientID: ptr(int64(3)), Billable: ptr(true)})
	require.NoError(t, err)
	assert.True(t, *p.Billable)

	task, err := c.CreateTask(ctx, domain.Task{Name: "Task", ProjectID: p.ID, Active: ptr(true)})
	require.NoError(t, err)
	task.Active = ptr(false)
	task, err = c.UpdateTask(ctx, *task)
	require.NoError(t, err)
	assert.False(t, *task.Active)

	pu, err := c.CreateProjectUser(ctx, domain.ProjectUser{ProjectID: 10, UserID: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(30), pu.ID)

	require.NoError(t, c.DestroyProject(ctx, 10))
	err = c.DestroyTask(ctx, 20)
	assert.ErrorIs(t, err, ErrNotFound)

	mu.Lock()
	defer mu.Unlock()
	assert.JSONEq(t, `{"project":{"name":"JUnit Project","wid":1,"cid":3,"billable":true}}`, bodies["project"])
	assert.JSONEq(t, `{"task":{"name":"Task","pid":10,"active":true}}`, bodies["task"])
	assert.JSONEq(t, `{"task":{"id":20,"name":"Task","pid":10,"wid":1,"active":false}}`, bodies["task update"])
	assert.JSONEq(t, `{"project_user":{"pid":10,"uid":5}}`, bodies["project_user"])
}

func workspaceMux(h *hits) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/workspaces", func(w http.ResponseWriter, r *http.Request) {
		h.add("workspaces")
		writeJSON(w, http.StatusOK, `[{"id":1,"name":"One"},{"id":2,"name":"Two","premium":true}]`)
	})
	return mux
}

func TestListProjects_FansOutPerWorkspace(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		h.add("projects " + id)
		switch id {
		case "1":
			writeJSON(w, http.StatusOK, `[{"id":10,"name":"A","wid":1},{"id":11,"name":"B"}]`)
		default:
			writeJSON(w, http.StatusOK, `[{"id":11,"name":"B","wid":2},{"id":12,"name":"C"}]`)
		}
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	projects, err := c.ListProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, int64(1), projects[10].WorkspaceID)
	assert.Equal(t, int64(2), projects[11].WorkspaceID)
	assert.Equal(t, int64(2), projects[12].WorkspaceID, "inherits the workspace it was listed under")

	assert.Equal(t, 1, h.get("workspaces"))
	assert.Equal(t, 1, h.get("projects 1"))
	assert.Equal(t, 1, h.get("projects 2"))
}

func TestListTasks_SkipsWorkspacesWithoutTasks(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}/tasks", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		h.add("tasks " + id)
		if id == "1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id":5,"name":"T","pid":12,"wid":2},{"id":6,"name":"U","pid":12,"wid":2}]`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	tasks, err := c.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "T", tasks[5].Name)
	assert.Equal(t, 1, h.get("workspaces"))
	assert.Equal(t, 1, h.get("tasks 1"))
	assert.Equal(t, 1, h.get("tasks 2"))
}

func TestListTasks_SurfacesOtherErrors(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	tasks, err := c.ListTasks(context.Background())
	assert.Nil(t, tasks)
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestListProjects_SurfacesMissingWorkspace(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	_, err := c.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers_DeduplicatesAcrossWorkspaces(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}/users", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		h.add("users " + id)
		if id == "1" {
			writeJSON(w, http.StatusOK, `[{"id":1,"email":"a@example.com"},{"id":2,"email":"b@example.com"}]`)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id":2,"email":"b@example.com"},{"id":3,"email":"c@example.com"}]`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})

	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.Equal(t, 1, h.get("workspaces"))
	assert.Equal(t, 1, h.get("users 1"))
	assert.Equal(t, 1, h.get("users 2"))
}

func TestWorkspaceReads(t *testing.T) {
	var h hits
	mux := workspaceMux(&h)
	mux.HandleFunc("GET /api/v8/workspaces/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "2" {
			writeJSON(w, http.StatusOK, `{"data":null}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":{"id":2,"name":"Two","premium":true,"default_currency":"CHF"}}`)
	})
	mux.HandleFunc("GET /api/v8/workspaces/{id}/clients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"id":3,"name":"Acme","wid":2}]}`)
	})
	c := newTestClient(t, newServer(t, mux), Options{})
	ctx := context.Background()

	all, err := c.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "One", all[0].Name)
	assert.Equal(t, "Two", all[1].Name)

	ws, err := c.GetWorkspace(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, ws)
	assert.True(t, ws.Premium)
	assert.Equal(t, "CHF", ws.DefaultCurrency)

	missing, err := c.GetWorkspace(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, missing)

	clients, err := c.ListWorkspaceClients(ctx, 2)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme", clients[0].Name)
}

func TestGetDetailedReport(t *testing.T) {
	var (
		mu    sync.Mutex
		query map[string][]string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /reports/api/v2/details", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		query = r.URL.Query()
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{
			"total_grand": 28800000,
			"total_billable": 28800000,
			"total_count": 1,
			"per_page": 50,
			"data": [{
				"id": 42, "pid": 7, "tid": null, "uid": 5,
				"description": "From unit test",
				"start": "2011-11-15T08:00:00+01:00",
				"end": "2011-11-15T16:00:00+01:00",
				"updated": "2011-11-15T16:00:01+01:00",
				"dur": 28800000,
				"user": "Jane",
				"project": "JUnit Project",
				"client": "Acme",
				"is_billable": true,
				"billable": 80.5,
				"tags": ["x"]
			}]
		}`)
	})
	c := newTestClient(t, newServer(t, mux), Options{UserAgent: "togglkit-test"})

	res, err := c.GetDetailedReport(context.Background(), domain.PagedReportsParameter{
		WorkspaceID: 99,
		Since:       "2011-11-15",
		Until:       "2011-11-15",
		ProjectIDs:  []int64{7, 3, 7},
		Description: "From unit test",
		Page:        2,
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "99", first(query["workspace_id"]))
	assert.Equal(t, "togglkit-test", first(query["user_agent"]))
	assert.Equal(t, "2011-11-15", first(query["since"]))
	assert.Equal(t, "2011-11-15", first(query["until"]))
	assert.Equal(t, "3,7", first(query["project_ids"]))
	assert.Equal(t, "From unit test", first(query["description"]))
	assert.Equal(t, "2", first(query["page"]))
	mu.Unlock()

	assert.Equal(t, 1, res.TotalCount)
	assert.Equal(t, 1, res.Pages())
	require.Len(t, res.Entries, 1)
	e := res.Entries[0]
	assert.Equal(t, int64(42), e.ID)
	require.NotNil(t, e.Project)
	assert.Equal(t, "JUnit Project", e.Project.Name)
	assert.Equal(t, int64(7), e.Project.ID)
	assert.Equal(t, int64(28800000), *e.Duration)
	assert.True(t, *e.Billable)
	require.NotNil(t, e.Stop)
	assert.Equal(t, 16, e.Stop.Hour())
	assert.False(t, e.At.IsZero())
	assert.Nil(t, e.TaskID)
}

func TestGetDetailedReport_RequiresWorkspace(t *testing.T) {
	c := NewClient(TokenCredentials("t"), Options{}, nil)
	_, err := c.GetDetailedReport(context.Background(), domain.PagedReportsParameter{})
	require.Error(t, err)
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func TestClient_ThrottlesEveryRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/workspaces", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	c := newTestClient(t, newServer(t, mux), Options{Throttle: 40 * time.Millisecond})

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := c.ListWorkspaces(context.Background())
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestClient_ThrottleHonoursCancellation(t *testing.T) {
	var h hits
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		h.add("any")
		writeJSON(w, http.StatusOK, `[]`)
	})
	c := newTestClient(t, newServer(t, mux), Options{Throttle: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListWorkspaces(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, h.get("any"))
}

func TestClient_TraceLogsRequestAndResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v8/workspaces", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	srv := newServer(t, mux)

	for _, trace := range []bool{true, false} {
		core, logs := observer.New(zap.DebugLevel)
		c := NewClient(TokenCredentials("t"), Options{BaseURL: srv.URL + "/api/v8", Trace: trace}, zap.New(core))
		_, err := c.ListWorkspaces(context.Background())
		require.NoError(t, err)

		want := 0
		if trace {
			want = 1
		}
		assert.Equal(t, want, logs.FilterMessage("request").Len())
		assert.Equal(t, want, logs.FilterMessage("response").Len())
	}
}
