package toggl

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

// maxErrorBody caps how much of a response body UnexpectedResponseError prints.
const maxErrorBody = 512

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrPermissionDenied   = errors.New("toggl: permission denied")
	ErrNotFound           = errors.New("toggl: not found")
	ErrBadRequest         = errors.New("toggl: bad request")
	ErrUnexpectedResponse = errors.New("toggl: unexpected response")
)

// PermissionDeniedError is returned for HTTP 403.
type PermissionDeniedError struct {
	URL string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("toggl: forbidden: %s", e.URL)
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

// NotFoundError is returned for HTTP 404 and carries the requested URL.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("toggl: not found: %s", e.URL)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// BadRequestError is returned for HTTP 400. Body holds the validation detail
// exactly as the API sent it.
type BadRequestError struct {
	URL  string
	Body string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("toggl: bad request: %s", e.Body)
}

func (e *BadRequestError) Is(target error) bool { return target == ErrBadRequest }

// UnexpectedResponseError covers every other non-2xx status.
type UnexpectedResponseError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *UnexpectedResponseError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "..."
	}
	return fmt.Sprintf("toggl: unexpected status %d from %s: %s", e.StatusCode, e.URL, body)
}

func (e *UnexpectedResponseError) Is(target error) bool { return target == ErrUnexpectedResponse }

// checkStatus maps a response status onto the error taxonomy. It returns nil for 2xx.
func checkStatus(status int, url string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusForbidden:
		return &PermissionDeniedError{URL: url}
	case status == http.StatusNotFound:
		return &NotFoundError{URL: url}
	case status == http.StatusBadRequest:
		return &BadRequestError{URL: url, Body: string(body)}
	default:
		return &UnexpectedResponseError{StatusCode: status, URL: url, Body: string(body)}
	}
}

// IsMissing reports whether err means the resource is absent or not visible to
// the caller (404 or 403).
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrPermissionDenied)
}
