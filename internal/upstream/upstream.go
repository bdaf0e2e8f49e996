// Package upstream holds the HTTP plumbing shared by the external API clients.
package upstream

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single upstream call
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 4 << 10

// NewHTTPClient returns the client every upstream call goes through
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// StatusError is returned when an upstream answers with a non-2xx status
type StatusError struct {
	API        string
	StatusCode int
	Status     string
	Body       string
	RetryAfter string
}

func (e *StatusError) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.API, e.Status)
	}
	return fmt.Sprintf("%s: %s: %s", e.API, e.Status, msg)
}

// Message extracts a human readable message from the error body. Most of the
// upstreams answer with {"message": ...} or {"error": {"message": ...}}.
func (e *StatusError) Message() string {
	var body struct {
		Message string          `json:"message"`
		Msg     string          `json:"msg"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	var flat string
	if json.Unmarshal(body.Error, &flat) == nil {
		return flat
	}
	return ""
}

// Temporary reports whether retrying the call may succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Do sends req and decodes a 2xx JSON body into out. api names the upstream
// in errors; the request URL is never included since it may carry keys.
func Do(c *http.Client, api string, req *http.Request, out any) error {
	if c == nil {
		c = http.DefaultClient
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return errors.Wrapf(stripURL(err), "%s %s %s", api, req.Method, req.URL.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			API:        api,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(b),
			RetryAfter: resp.Header.Get("Retry-After"),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s: decode %s", api, req.URL.Path)
	}
	return nil
}

// GetJSON issues a GET against rawURL and decodes the response into out
func GetJSON(ctx context.Context, c *http.Client, api, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrapf(stripURL(err), "%s: build request", api)
	}
	return Do(c, api, req, out)
}

// NewJSONRequest builds a request carrying in as a JSON body
func NewJSONRequest(ctx context.Context, method, rawURL string, in any) (*http.Request, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(stripURL(err), "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// PostJSON marshals in, POSTs it to rawURL and decodes the response into out
func PostJSON(ctx context.Context, c *http.Client, api, rawURL string, in, out any) error {
	req, err := NewJSONRequest(ctx, http.MethodPost, rawURL, in)
	if err != nil {
		return errors.WithMessage(err, api)
	}
	return Do(c, api, req, out)
}

// StatusCode returns the upstream status carried by err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// stripURL drops the request URL from transport errors; query strings carry
// API keys for several upstreams.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
