// Package client talks to the wordwall comment API: it fetches the comment
// list, submits new comments as multipart forms and likes comments. Mutating
// requests carry the anti-forgery token published in the index page's
// csrf-token meta tag.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
)

// DefaultURL is used when no server URL is configured.
const DefaultURL = "http://localhost:9999"

// CSRFHeader carries the anti-forgery token on mutating requests.
const CSRFHeader = "X-CSRFToken"

// Client is an HTTP client for the comment API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu        sync.Mutex
	csrfToken string
}

// New creates a Client for baseURL with its own cookie jar, so the CSRF
// cookie issued with the index page is sent back on later requests.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil) // only fails for a bad PublicSuffixList
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Jar: jar},
	}
}

// newRequest builds a request against BaseURL.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return req, nil
}

// do sends req and returns the response body. Non-2xx responses are
// returned as *HTTPError carrying the body.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}

// getJSON issues a GET and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// Version returns the server's reported version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var v struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, "/api/version", &v); err != nil {
		return "", err
	}
	return v.Version, nil
}
