package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"
)

// CSRFMetaName is the name of the meta tag holding the anti-forgery token.
const CSRFMetaName = "csrf-token"

// CSRFToken returns the anti-forgery token, loading the index page on first
// use to read it from the csrf-token meta tag.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.csrfToken
	c.mu.Unlock()
	if tok != "" {
		return tok, nil
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("loading index page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}

	tok, err = parseCSRFMeta(resp.Body)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.csrfToken = tok
	c.mu.Unlock()
	return tok, nil
}

// postWithCSRF POSTs body with the anti-forgery token. A token the server
// rejects, e.g. after a restart with a new signing key, is dropped and the
// request retried once with a fresh one.
func (c *Client) postWithCSRF(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.CSRFToken(ctx)
		if err != nil {
			return nil, err
		}

		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := c.newRequest(ctx, http.MethodPost, path, rd)
		if err != nil {
			return nil, err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set(CSRFHeader, token)

		resp, err := c.do(req)
		if err != nil && attempt == 0 && csrfRejected(err) {
			c.dropCSRFToken(token)
			continue
		}
		return resp, err
	}
}

// dropCSRFToken forgets tok if it is still the cached token.
func (c *Client) dropCSRFToken(tok string) {
	c.mu.Lock()
	if c.csrfToken == tok {
		c.csrfToken = ""
	}
	c.mu.Unlock()
}

// csrfRejected reports whether err is a 400 naming the csrf_token field.
func csrfRejected(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		return false
	}
	var body struct {
		Errors map[string]json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(he.Body, &body) != nil {
		return false
	}
	_, ok := body.Errors["csrf_token"]
	return ok
}

// parseCSRFMeta finds <meta name="csrf-token" content="..."> in an HTML
// document.
func parseCSRFMeta(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing index page: %w", err)
	}

	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" && getAttr(n, "name") == CSRFMetaName {
			found = getAttr(n, "content")
			return true
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if walk(child) {
				return true
			}
		}
		return false
	}

	if !walk(doc) || found == "" {
		return "", fmt.Errorf("no %s meta tag on index page", CSRFMetaName)
	}
	return found, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
