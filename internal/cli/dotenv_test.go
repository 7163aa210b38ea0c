package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDotenv creates a .env file in dir and changes the working directory
// to dir for the duration of the test. It also resets the dotenv cache.
func writeDotenv(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	resetDotenv()
	t.Cleanup(func() {
		os.Chdir(origDir)
		resetDotenv()
	})
}

func TestLoadDotenv_BasicKeyValue(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "FOO=bar\nBAZ=qux\n")

	vals := loadDotenv()
	if vals["FOO"] != "bar" {
		t.Errorf("FOO = %q, want %q", vals["FOO"], "bar")
	}
	if vals["BAZ"] != "qux" {
		t.Errorf("BAZ = %q, want %q", vals["BAZ"], "qux")
	}
}

func TestLoadDotenv_CommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "# comment\n\nFOO=bar\n  # indented comment\n")

	vals := loadDotenv()
	if vals["FOO"] != "bar" {
		t.Errorf("FOO = %q, want %q", vals["FOO"], "bar")
	}
	if _, ok := vals["# comment"]; ok {
		t.Error("comment should not be parsed as a key")
	}
}

func TestLoadDotenv_QuotedValues(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, `FOO="hello world"
BAR='single quoted'
BAZ=unquoted value
`)

	vals := loadDotenv()
	if vals["FOO"] != "hello world" {
		t.Errorf("FOO = %q, want %q", vals["FOO"], "hello world")
	}
	if vals["BAR"] != "single quoted" {
		t.Errorf("BAR = %q, want %q", vals["BAR"], "single quoted")
	}
	if vals["BAZ"] != "unquoted value" {
		t.Errorf("BAZ = %q, want %q", vals["BAZ"], "unquoted value")
	}
}

func TestLoadDotenv_WhitespaceHandling(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "  FOO  =  bar  \n")

	vals := loadDotenv()
	if vals["FOO"] != "bar" {
		t.Errorf("FOO = %q, want %q", vals["FOO"], "bar")
	}
}

func TestLoadDotenv_NoFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	os.Chdir(dir)
	resetDotenv()
	t.Cleanup(func() {
		os.Chdir(origDir)
		resetDotenv()
	})

	vals := loadDotenv()
	if len(vals) != 0 {
		t.Errorf("expected empty map when .env missing, got %v", vals)
	}
}

func TestLoadDotenv_LineWithoutEquals(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "NOEQ\nFOO=bar\n")

	vals := loadDotenv()
	if _, ok := vals["NOEQ"]; ok {
		t.Error("line without = should be skipped")
	}
	if vals["FOO"] != "bar" {
		t.Errorf("FOO = %q, want %q", vals["FOO"], "bar")
	}
}

func TestLoadDotenv_ValueWithEquals(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "URL=http://localhost:9999?a=b\n")

	vals := loadDotenv()
	if vals["URL"] != "http://localhost:9999?a=b" {
		t.Errorf("URL = %q, want %q", vals["URL"], "http://localhost:9999?a=b")
	}
}

func TestGetenv_EnvVarTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "MY_KEY=from-dotenv\n")

	os.Setenv("MY_KEY", "from-env")
	t.Cleanup(func() { os.Unsetenv("MY_KEY") })

	if got := getenv("MY_KEY"); got != "from-env" {
		t.Errorf("getenv(MY_KEY) = %q, want %q (env takes precedence)", got, "from-env")
	}
}

func TestGetenv_FallsThroughToDotenv(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "MY_KEY=from-dotenv\n")
	os.Unsetenv("MY_KEY")

	if got := getenv("MY_KEY"); got != "from-dotenv" {
		t.Errorf("getenv(MY_KEY) = %q, want %q (dotenv fallback)", got, "from-dotenv")
	}
}

func TestGetenv_MissingEverywhere(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "OTHER=val\n")
	os.Unsetenv("MISSING_KEY")

	if got := getenv("MISSING_KEY"); got != "" {
		t.Errorf("getenv(MISSING_KEY) = %q, want empty", got)
	}
}

func TestParseDotenv_ExportPrefix(t *testing.T) {
	vals := parseDotenv(strings.NewReader("export WW_URL=http://h:1\nexport  SPACED = 'v'\n"))
	if vals["WW_URL"] != "http://h:1" {
		t.Errorf("WW_URL = %q", vals["WW_URL"])
	}
	if vals["SPACED"] != "v" {
		t.Errorf("SPACED = %q", vals["SPACED"])
	}
}

func TestParseDotenv_MismatchedQuotesKept(t *testing.T) {
	vals := parseDotenv(strings.NewReader(`FOO="bar'` + "\n"))
	if vals["FOO"] != `"bar'` {
		t.Errorf("FOO = %q", vals["FOO"])
	}
}

func TestClientURL_FromDotenv(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "WW_URL=http://dotenv-host:1234\n")
	os.Unsetenv("WW_URL")

	if got := clientURL(); got != "http://dotenv-host:1234" {
		t.Errorf("clientURL() = %q, want %q", got, "http://dotenv-host:1234")
	}
	if got := newClient().BaseURL; got != "http://dotenv-host:1234" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestClientURL_EnvOverridesDotenv(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "WW_URL=http://dotenv-host:1234\n")
	t.Setenv("WW_URL", "http://env-host:5678")

	if got := clientURL(); got != "http://env-host:5678" {
		t.Errorf("clientURL() = %q", got)
	}
}

func TestClientURL_Default(t *testing.T) {
	dir := t.TempDir()
	writeDotenv(t, dir, "OTHER=val\n")
	os.Unsetenv("WW_URL")

	if got := clientURL(); got != "http://localhost:9999" {
		t.Errorf("clientURL() = %q", got)
	}
}

func TestPost_CommentFromDotenvURL(t *testing.T) {
	ts := startTestServer(t)
	dir := t.TempDir()
	writeDotenv(t, dir, "WW_URL="+ts.URL+"\nWW_LOG_LEVEL=fatal\n")
	os.Unsetenv("WW_URL")

	runCmd(t, "post", "configured by dotenv")
	if out := runCmd(t, "list"); !strings.Contains(out, "configured by dotenv") {
		t.Errorf("list output = %q", out)
	}
}
