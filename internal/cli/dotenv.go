package cli

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	dotenvMu     sync.Mutex
	dotenvValues map[string]string
	dotenvLoaded bool
)

// loadDotenv reads .env in the current directory once and caches the
// result. A missing or unreadable file yields an empty map.
func loadDotenv() map[string]string {
	dotenvMu.Lock()
	defer dotenvMu.Unlock()

	if dotenvLoaded {
		return dotenvValues
	}
	dotenvLoaded = true
	dotenvValues = map[string]string{}

	f, err := os.Open(".env")
	if err != nil {
		return dotenvValues
	}
	defer f.Close()

	dotenvValues = parseDotenv(f)
	return dotenvValues
}

// parseDotenv parses KEY=VALUE lines. Blank lines, # comments and lines
// without '=' are skipped; an "export " prefix and matching quotes around
// the value are stripped.
func parseDotenv(r io.Reader) map[string]string {
	values := map[string]string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if len(value) >= 2 {
			if q := value[0]; (q == '"' || q == '\'') && value[len(value)-1] == q {
				value = value[1 : len(value)-1]
			}
		}
		values[key] = value
	}
	return values
}

// resetDotenv clears the cache. Used by tests.
func resetDotenv() {
	dotenvMu.Lock()
	defer dotenvMu.Unlock()
	dotenvValues = nil
	dotenvLoaded = false
}

// getenv returns key from the environment, falling back to .env.
func getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return loadDotenv()[key]
}
