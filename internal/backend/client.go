// Package backend is the HTTP gateway to the jobs backend. Every call takes
// the caller's credential; a non-empty credential is sent as a bearer token.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"nextfit/web-service/internal/metrics"
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 4 << 20

// Client talks to the jobs backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client with its own HTTP client and timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP constructs a Client around an existing http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

// do issues one request and returns the response body of a 2xx reply.
// Any other outcome is returned as *Error.
func (c *Client) do(ctx context.Context, endpoint, method, path string, query url.Values, credential string, in any) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, KindNetwork.String()).Inc()
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.BackendRequests.WithLabelValues(endpoint, KindNetwork.String()).Inc()
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		be := &Error{
			Kind:    ClassifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: payloadMessage(raw),
		}
		metrics.BackendRequests.WithLabelValues(endpoint, be.Kind.String()).Inc()
		slog.DebugContext(ctx, "backend request failed",
			"endpoint", endpoint, "status", resp.StatusCode, "kind", be.Kind.String())
		return nil, be
	}

	metrics.BackendRequests.WithLabelValues(endpoint, "ok").Inc()
	return raw, nil
}

// locate returns the innermost JSON object that holds key, descending through
// "data" envelopes. The backend wraps payloads in one or more such envelopes
// depending on the route. A nil result means key was not found.
func locate(raw []byte, key string) (map[string]json.RawMessage, error) {
	for depth := 0; depth < 4; depth++ {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		if _, ok := obj[key]; ok {
			return obj, nil
		}
		data, ok := obj["data"]
		if !ok || len(data) == 0 || data[0] != '{' {
			return nil, nil
		}
		raw = data
	}
	return nil, nil
}

// decodeField decodes the value stored under key into out. A missing key
// leaves out untouched.
func decodeField(raw []byte, key string, out any) error {
	obj, err := locate(raw, key)
	if err != nil || obj == nil {
		return err
	}
	if v := obj[key]; len(v) > 0 && string(v) != "null" {
		if err := json.Unmarshal(v, out); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return nil
}
