// Package upstream holds the JSON-over-HTTP plumbing shared by the provider
// integrations.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const (
	maxErrorBody    = 4096
	maxResponseBody = 1 << 20
)

// ErrNotConfigured is returned by a provider that has no API key.
var ErrNotConfigured = errors.New("upstream: provider not configured")

// ErrNoText is returned when a well-formed response carries no usable text.
var ErrNoText = errors.New("upstream: response carried no text")

// StatusError captures non-200 upstream responses.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// DecodeError reports a 200 response whose body did not match the expected envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("upstream: decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PostJSON marshals payload, POSTs it to url with the given headers and
// decodes a 200 response into out. Any other status is a *StatusError.
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any) error {
	body, err := marshal(payload)
	if err != nil {
		return fmt.Errorf("upstream: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("upstream: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{
			StatusCode: res.StatusCode,
			URL:        redactQuery(req),
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("upstream: read response body: %w", err)
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// marshal encodes without HTML escaping so prompt markers such as <s> go out verbatim.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// redactQuery drops the query string so keys passed as ?key= never reach logs.
func redactQuery(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}
