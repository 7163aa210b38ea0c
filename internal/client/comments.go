package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"sort"
	"strconv"

	"github.com/vector76/wordwall/internal/model"
)

// FetchComments returns every comment, newest first.
func (c *Client) FetchComments(ctx context.Context) ([]model.Comment, error) {
	return c.SearchComments(ctx, "", 0)
}

// SearchComments returns comments whose text contains query, newest first,
// at most limit of them when limit > 0.
func (c *Client) SearchComments(ctx context.Context, query string, limit int) ([]model.Comment, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/comments"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var comments []model.Comment
	if err := c.getJSON(ctx, path, &comments); err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}

// CreateComment submits fields as multipart form data. A rejected
// submission with a JSON body is returned as *FormError.
func (c *Client) CreateComment(ctx context.Context, fields map[string]string) (model.Comment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return model.Comment{}, fmt.Errorf("writing form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return model.Comment{}, fmt.Errorf("closing form: %w", err)
	}

	body, err := c.postWithCSRF(ctx, "/api/comments", mw.FormDataContentType(), buf.Bytes())
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) {
			if fe := formError(he); fe != nil {
				return model.Comment{}, fe
			}
		}
		return model.Comment{}, err
	}

	var created model.Comment
	if err := json.Unmarshal(body, &created); err != nil {
		return model.Comment{}, fmt.Errorf("decoding created comment: %w", err)
	}
	return created, nil
}

// Like adds one like to comment id and returns the updated comment.
func (c *Client) Like(ctx context.Context, id int64) (model.Comment, error) {
	body, err := c.postWithCSRF(ctx, fmt.Sprintf("/api/comments/%d/like", id), "", nil)
	if err != nil {
		return model.Comment{}, err
	}

	var liked model.Comment
	if err := json.Unmarshal(body, &liked); err != nil {
		return model.Comment{}, fmt.Errorf("decoding liked comment: %w", err)
	}
	return liked, nil
}
