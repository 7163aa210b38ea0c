package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vector76/wordwall/internal/cloud"
	"github.com/vector76/wordwall/internal/model"
	"github.com/vector76/wordwall/internal/server"
	"github.com/vector76/wordwall/internal/store"
)

// startTestServer creates a test HTTP server backed by a real store.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := store.Load(filepath.Join(t.TempDir(), "comments.json"))
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	srv, err := server.New(server.Config{Version: "test-server"}, s)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Router)
	t.Cleanup(ts.Close)
	return ts
}

// setClientEnv points client commands at url for the test.
func setClientEnv(t *testing.T, url string) {
	t.Helper()
	t.Setenv("WW_URL", url)
	t.Setenv("WW_LOG_LEVEL", "fatal")
}

// runCmd executes a CLI command and returns stdout output.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return buf.String()
}

// runCmdErr executes a CLI command and expects an error.
func runCmdErr(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func parseComments(t *testing.T, output string) []model.Comment {
	t.Helper()
	var comments []model.Comment
	if err := json.Unmarshal([]byte(output), &comments); err != nil {
		t.Fatalf("failed to parse comments: %v\noutput: %s", err, output)
	}
	return comments
}

func TestListEmpty(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	if out := strings.TrimSpace(runCmd(t, "list")); out != "[]" {
		t.Errorf("expected [], got %q", out)
	}
}

func TestPostAndList(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	out := runCmd(t, "post", "hello from the cli")
	if !strings.Contains(out, "rendered 1 words") {
		t.Errorf("post output = %q", out)
	}
	runCmd(t, "comment", "via alias")

	comments := parseComments(t, runCmd(t, "list"))
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Text != "via alias" || comments[1].Text != "hello from the cli" {
		t.Errorf("unexpected order: %+v", comments)
	}

	comments = parseComments(t, runCmd(t, "list", "--query", "CLI", "--limit", "5"))
	if len(comments) != 1 {
		t.Errorf("query: expected 1 comment, got %d", len(comments))
	}
}

func TestListTokens(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)
	runCmd(t, "post", "hi")
	runCmd(t, "like", "1")

	var tokens []cloud.WordToken
	if err := json.Unmarshal([]byte(runCmd(t, "list", "--tokens")), &tokens); err != nil {
		t.Fatalf("parse tokens: %v", err)
	}
	want := cloud.WordToken{Text: "hi", Size: 12, ID: 1, Likes: 1}
	if len(tokens) != 1 || tokens[0] != want {
		t.Errorf("tokens = %+v, want [%+v]", tokens, want)
	}
}

func TestPostValidationError(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	cmd := NewRootCmd()
	stderr := new(bytes.Buffer)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"post", ""})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for empty comment")
	}
	want := `Error: {"text":["This field is required."]}`
	if got := strings.TrimSpace(stderr.String()); got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}

	if out := strings.TrimSpace(runCmd(t, "list")); out != "[]" {
		t.Errorf("invalid comment stored: %s", out)
	}
}

func TestLike(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)
	runCmd(t, "post", "likeable")

	out := runCmd(t, "like", "1")
	if !strings.Contains(out, "rendered 1 words") {
		t.Errorf("like output = %q", out)
	}
	runCmd(t, "like", "1")

	comments := parseComments(t, runCmd(t, "list"))
	if comments[0].Likes != 2 {
		t.Errorf("likes = %d, want 2", comments[0].Likes)
	}
}

func TestLikeErrors(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	if err := runCmdErr(t, "like", "abc"); err == nil || !strings.Contains(err.Error(), "invalid comment id") {
		t.Errorf("expected invalid id error, got %v", err)
	}
	if err := runCmdErr(t, "like", "99"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestCloudStdout(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	if out := runCmd(t, "cloud"); !strings.Contains(out, cloud.Placeholder) {
		t.Errorf("expected placeholder, got %q", out)
	}

	runCmd(t, "post", "svg me")
	out := runCmd(t, "cloud", "--width", "300", "--height", "200")
	if !strings.Contains(out, `<svg`) || !strings.Contains(out, `width="300"`) || !strings.Contains(out, "svg me") {
		t.Errorf("unexpected svg: %s", out)
	}
}

func TestCloudPNGFile(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)
	runCmd(t, "post", "picture")

	path := filepath.Join(t.TempDir(), "cloud.png")
	runCmd(t, "cloud", "--out", path, "--width", "200", "--height", "100")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("size = %v", b)
	}
}

func TestPostWritesOutFile(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	path := filepath.Join(t.TempDir(), "after.svg")
	runCmd(t, "post", "to a file", "--out", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "to a file") {
		t.Errorf("svg missing word: %s", data)
	}
}

func TestCloudUnknownFormat(t *testing.T) {
	ts := startTestServer(t)
	setClientEnv(t, ts.URL)

	err := runCmdErr(t, "cloud", "--format", "gif")
	if err == nil || !strings.Contains(err.Error(), `unknown format "gif"`) {
		t.Errorf("expected format error, got %v", err)
	}
}

func TestResolvedFormat(t *testing.T) {
	tests := []struct {
		path, format, want string
	}{
		{"", "", "svg"},
		{"out.PNG", "", "png"},
		{"out.svg", "", "svg"},
		{"out.bin", "png", "png"},
		{"", "SVG", "svg"},
	}
	for _, tt := range tests {
		o := sceneOutput{path: tt.path, format: tt.format}
		got, err := o.resolvedFormat()
		if err != nil || got != tt.want {
			t.Errorf("resolvedFormat(%q, %q) = %q, %v; want %q", tt.path, tt.format, got, err, tt.want)
		}
	}
}
