// Package transport holds the error taxonomy and request plumbing shared by
// the clients that talk to backend collaborators.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one outbound request. Generation can take minutes.
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of a failed response body is kept in an error.
const maxErrorBody = 512

// Kind tells apart the ways an outbound request can fail.
type Kind string

const (
	// KindStatus means the backend answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindNoResponse means the request was sent but no response arrived.
	KindNoResponse Kind = "no-response"
	// KindSetup means the request could not be built or the client is misconfigured.
	KindSetup Kind = "setup"
)

// Error reports a failed call to a backend collaborator.
type Error struct {
	Kind       Kind
	StatusCode int // Set when Kind is KindStatus.
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Err != nil {
			return fmt.Sprintf("server responded with status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("server responded with status %d", e.StatusCode)
	case KindNoResponse:
		return fmt.Sprintf("no response received from server: %v", e.Err)
	default:
		return fmt.Sprintf("request setup failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError builds a KindStatus error. A non-empty body is kept as the cause.
func StatusError(code int, body string) *Error {
	e := &Error{Kind: KindStatus, StatusCode: code}
	if body = strings.TrimSpace(body); body != "" {
		e.Err = errors.New(body)
	}
	return e
}

// NoResponseError builds a KindNoResponse error.
func NoResponseError(err error) *Error {
	return &Error{Kind: KindNoResponse, Err: err}
}

// SetupError builds a KindSetup error.
func SetupError(err error) *Error {
	return &Error{Kind: KindSetup, Err: err}
}

// NewClient returns the HTTP client used for backend calls.
func NewClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// Do sends req, attaching token as a bearer credential when set, and returns
// the body of a 2xx response. Every failure is an *Error.
func Do(client *http.Client, req *http.Request, token string) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NoResponseError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, StatusError(resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NoResponseError(fmt.Errorf("read response body: %w", err))
	}
	return body, nil
}

// Ping checks that url answers with a 2xx status.
func Ping(ctx context.Context, client *http.Client, url, token string) error {
	if url == "" {
		return SetupError(errors.New("no status URL configured"))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return SetupError(err)
	}
	_, err = Do(client, req, token)
	return err
}
