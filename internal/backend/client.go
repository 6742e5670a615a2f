// Package backend is the typed gateway to the portal REST API. It does no
// caching and never retries; every failure is reported upward as an
// APIError, ConflictError or TransportError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the portal backend. It attaches the
// bearer token supplied by the caller and handles JSON (de)serialization.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a backend client. baseURL is the API root including
// its /api prefix (e.g. http://localhost:8080/api). An empty token sends
// no Authorization header.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) get(
	ctx context.Context,
	path string,
	query url.Values,
	result interface{},
) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

// post performs an HTTP POST request with an optional JSON body.
func (c *Client) post(
	ctx context.Context,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPost, path, query, body, result)
}

// put performs an HTTP PUT request with a JSON body.
func (c *Client) put(
	ctx context.Context,
	path string,
	body interface{},
	result interface{},
) error {
	return c.do(ctx, http.MethodPut, path, nil, body, result)
}

// delete performs an HTTP DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// do builds the request, attaches auth, sends it exactly once and maps
// the outcome onto the package's error types.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("backend: %s %s failed: %v", method, path, err)
		return &TransportError{Method: method, Path: path, Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", readErr),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("backend: %s %s returned %d", method, path, resp.StatusCode)
		if msg := parseErrorMessage(respBody); msg != "" {
			return &APIError{
				Method:     method,
				Path:       path,
				StatusCode: resp.StatusCode,
				Message:    msg,
			}
		}
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(respBody)),
		}
	}

	// No content to parse (e.g. 204, or a plain-text acknowledgement).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unmarshaling response: %w", err),
		}
	}

	return nil
}

// errorResponse is the structured error body the backend sends with a
// non-2xx status.
type errorResponse struct {
	Message string `json:"message"`
}

// parseErrorMessage extracts the message field from an error body. Any
// other shape yields "".
func parseErrorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return strings.TrimSpace(e.Message)
}

// snippet shortens a response body for inclusion in an error.
func snippet(body []byte) string {
	const maxSnippet = 200
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}
