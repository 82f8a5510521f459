package toggl

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL    = "https://api.track.toggl.com/api/v8"
	DefaultReportsURL = "https://api.track.toggl.com/reports/api/v2"
	DefaultUserAgent  = "togglkit"
	DefaultTimeout    = 15 * time.Second

	// maxResponseBytes bounds how much of a response body is read into memory.
	maxResponseBytes = 16 << 20
)

// Credentials are sent as HTTP Basic auth on every request.
type Credentials struct {
	User     string
	Password string
}

// TokenCredentials authenticates with an API token. Toggl expects the token as
// the user name and the literal "api_token" as the password.
func TokenCredentials(token string) Credentials {
	return Credentials{User: token, Password: "api_token"}
}

// Options configure a Client. Zero values select the defaults.
type Options struct {
	BaseURL    string
	ReportsURL string
	UserAgent  string
	// Throttle is slept before every request to stay under the API rate limit.
	Throttle time.Duration
	// Timeout applies to every request, connection and read included.
	Timeout time.Duration
	// Trace logs raw requests and responses at debug level.
	Trace      bool
	HTTPClient *http.Client
}

// Client talks to the Toggl API v8 and the
// reports API v2. Its configuration is fixed at construction; a Client may be
// reused for sequential calls but does no locking of its own.
type Client struct {
	creds      Credentials
	baseURL    string
	reportsURL string
	userAgent  string
	throttle   time.Duration
	trace      bool
	http       *http.Client
	log        *zap.Logger
}

func NewClient(creds Credentials, opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.ReportsURL == "" {
		opts.ReportsURL = DefaultReportsURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		creds:      creds,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		reportsURL: strings.TrimRight(opts.ReportsURL, "/"),
		userAgent:  opts.UserAgent,
		throttle:   opts.Throttle,
		trace:      opts.Trace,
		http:       httpClient,
		log:        log.Named("toggl"),
	}
}

// apiURL expands e against the CRUD root and appends the query, if any.
func (c *Client) apiURL(e endpoint, id int64, query url.Values) string {
	return joinURL(c.baseURL, e.expand(id), query)
}

func (c *Client) reportURL(e endpoint, query url.Values) string {
	return joinURL(c.reportsURL, e.expand(0), query)
}

func joinURL(root, path string, query url.Values) string {
	u := root + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// send performs one request and returns the body of a 2xx response. Non-2xx
// statuses are mapped by checkStatus.
func (c *Client) send(ctx context.Context, method, rawURL string, body any) ([]byte, error) {
	if c.creds.User == "" {
		return nil, errors.New("toggl: missing credentials")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var (
		payload []byte
		reader  io.Reader
	)
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("toggl: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("toggl: create request: %w", err)
	}
	// Basic auth: user:password, or token:api_token
	auth := base64.StdEncoding.EncodeToString([]byte(c.creds.User + ":" + c.creds.Password))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.trace {
		c.log.Debug("request",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.ByteString("body", payload),
		)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toggl: %s %s: %w", method, rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("toggl: read response: %w", err)
	}

	if c.trace {
		c.log.Debug("response",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
			zap.ByteString("body", respBody),
		)
	}

	if err := checkStatus(resp.StatusCode, rawURL, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// wait sleeps for the configured throttle, returning early when ctx ends.
func (c *Client) wait(ctx context.Context) error {
	if c.throttle <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.throttle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// getList fetches a collection and converts every element.
func getList[R, T any](ctx context.Context, c *Client, rawURL string, conv func(R) (T, error)) ([]T, error) {
	body, err := c.send(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	raws, err := decodeList[R](body)
	if err != nil {
		return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
	}
	out := make([]T, 0, len(raws))
	for _, r := range raws {
		v, err := conv(r)
		if err != nil {
			return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// getOne fetches a single data-enveloped resource. A null data field yields nil, nil.
func getOne[R, T any](ctx context.Context, c *Client, rawURL string, conv func(R) (T, error)) (*T, error) {
	body, err := c.send(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return unwrapOne(rawURL, body, conv)
}

// writeOne sends a wrapped entity and converts the data-enveloped answer.
// Unlike reads, a write that answers without data is an error.
func writeOne[R, T any](ctx context.Context, c *Client, method, rawURL string, body any, conv func(R) (T, error)) (*T, error) {
	respBody, err := c.send(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	v, err := unwrapOne(rawURL, respBody, conv)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("toggl: %s %s returned no data: %w", method, rawURL, ErrUnexpectedResponse)
	}
	return v, nil
}

func unwrapOne[R, T any](rawURL string, body []byte, conv func(R) (T, error)) (*T, error) {
	raw, err := decodeData[R](body)
	if err != nil {
		return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
	}
	if raw == nil {
		return nil, nil
	}
	v, err := conv(*raw)
	if err != nil {
		return nil, fmt.Errorf("toggl: decode %s: %w", rawURL, err)
	}
	return &v, nil
}

// destroy issues a DELETE and discards the body.
func (c *Client) destroy(ctx context.Context, e endpoint, id int64) error {
	_, err := c.send(ctx, http.MethodDelete, c.apiURL(e, id, nil), nil)
	return err
}
