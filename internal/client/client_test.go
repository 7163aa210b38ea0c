package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vector76/wordwall/internal/server"
	"github.com/vector76/wordwall/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// newTestClient starts a real server backed by a temp JSON store.
func newTestClient(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	st, err := store.Load(filepath.Join(t.TempDir(), "comments.json"))
	require.NoError(t, err)

	srv, err := server.New(server.Config{Version: "test"}, st)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router)
	c := New(ts.URL)
	t.Cleanup(func() {
		c.HTTPClient.CloseIdleConnections()
		ts.Close()
	})
	return c, ts
}

func TestNewTrimsTrailingSlash(t *testing.T) {
	c := New("http://example.com/")
	assert.Equal(t, "http://example.com", c.BaseURL)
	assert.NotNil(t, c.HTTPClient.Jar)
}

func TestVersion(t *testing.T) {
	c, _ := newTestClient(t)
	v, err := c.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", v)
}

func TestFetchCommentsEmpty(t *testing.T) {
	c, _ := newTestClient(t)
	comments, err := c.FetchComments(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestCreateAndFetch(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateComment(ctx, map[string]string{"text": "from the client"})
	require.NoError(t, err)
	assert.Equal(t, "from the client", created.Text)
	assert.Equal(t, 0, created.Likes)

	_, err = c.CreateComment(ctx, map[string]string{"text": "second"})
	require.NoError(t, err)

	comments, err := c.FetchComments(ctx)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, created.ID, comments[1].ID)
}

func TestSearchComments(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	for _, text := range []string{"apple pie", "banana", "Apple juice"} {
		_, err := c.CreateComment(ctx, map[string]string{"text": text})
		require.NoError(t, err)
	}

	got, err := c.SearchComments(ctx, "apple", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = c.SearchComments(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Apple juice", got[0].Text)
}

func TestCreateValidationError(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.CreateComment(context.Background(), map[string]string{"text": ""})
	var fe *FormError
	require.True(t, errors.As(err, &fe), "expected FormError, got %v", err)
	assert.Equal(t, http.StatusBadRequest, fe.StatusCode)
	assert.JSONEq(t, `{"text":["This field is required."]}`, string(fe.Errors))
	assert.Equal(t, `Error: {"text":["This field is required."]}`, fe.Error())
}

func TestLike(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateComment(ctx, map[string]string{"text": "like me"})
	require.NoError(t, err)

	liked, err := c.Like(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	liked, err = c.Like(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, liked.Likes)
}

func TestLikeUnknown(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.Like(context.Background(), 404)
	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Contains(t, he.Error(), "comment 404 not found")
}

func TestCSRFTokenCached(t *testing.T) {
	var indexHits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		indexHits++
		w.Write([]byte(`<html><head><meta name="csrf-token" content="tok-1"></head></html>`))
	}))
	defer ts.Close()

	c := New(ts.URL)
	defer c.HTTPClient.CloseIdleConnections()
	for i := 0; i < 3; i++ {
		tok, err := c.CSRFToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", tok)
	}
	assert.Equal(t, 1, indexHits)
}

func TestCSRFTokenRefreshedAfterRestart(t *testing.T) {
	st, err := store.Load(filepath.Join(t.TempDir(), "comments.json"))
	require.NoError(t, err)

	// Each server generates its own signing key, as after a restart.
	var current atomic.Pointer[server.Server]
	restart := func() {
		srv, err := server.New(server.Config{}, st)
		require.NoError(t, err)
		current.Store(srv)
	}
	restart()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current.Load().Router.ServeHTTP(w, r)
	}))
	c := New(ts.URL)
	defer func() {
		c.HTTPClient.CloseIdleConnections()
		ts.Close()
	}()
	ctx := context.Background()

	created, err := c.CreateComment(ctx, map[string]string{"text": "before"})
	require.NoError(t, err)
	stale, err := c.CSRFToken(ctx)
	require.NoError(t, err)

	restart()
	liked, err := c.Like(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	fresh, err := c.CSRFToken(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, stale, fresh)

	restart()
	_, err = c.CreateComment(ctx, map[string]string{"text": "after"})
	require.NoError(t, err)
}

func TestCSRFRejected(t *testing.T) {
	assert.True(t, csrfRejected(&HTTPError{StatusCode: 400, Body: []byte(`{"errors":{"csrf_token":["The CSRF token is invalid."]}}`)}))
	assert.False(t, csrfRejected(&HTTPError{StatusCode: 400, Body: []byte(`{"errors":{"text":["This field is required."]}}`)}))
	assert.False(t, csrfRejected(&HTTPError{StatusCode: 404, Body: []byte(`{"error":"not found"}`)}))
	assert.False(t, csrfRejected(errors.New("boom")))
}

func TestParseCSRFMetaMissing(t *testing.T) {
	_, err := parseCSRFMeta(strings.NewReader(`<html><head><title>x</title></head></html>`))
	assert.Error(t, err)

	tok, err := parseCSRFMeta(strings.NewReader(`<meta name="other" content="a"><meta name="csrf-token" content="b">`))
	require.NoError(t, err)
	assert.Equal(t, "b", tok)
}

func TestHTTPErrorMessage(t *testing.T) {
	e := &HTTPError{StatusCode: 429, Body: []byte(`{"error":"too many requests"}`)}
	assert.Equal(t, "HTTP 429: too many requests", e.Error())

	e = &HTTPError{StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "HTTP 502: bad gateway", e.Error())
}

func TestFormErrorConversion(t *testing.T) {
	assert.Nil(t, formError(&HTTPError{StatusCode: 500, Body: []byte("oops")}))

	fe := formError(&HTTPError{StatusCode: 429, Body: []byte(`{"error":"too many requests"}`)})
	require.NotNil(t, fe)
	assert.JSONEq(t, `{"error":"too many requests"}`, string(fe.Errors))
}

func TestFetchServerDown(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.FetchComments(context.Background())
	assert.Error(t, err)
}

