package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vector76/wordwall/internal/client"
	"github.com/vector76/wordwall/internal/logging"
)

// clientURL returns WW_URL from the environment or .env, or the default.
func clientURL() string {
	if u := getenv("WW_URL"); u != "" {
		return u
	}
	return client.DefaultURL
}

// newClient creates an API client for clientURL.
func newClient() *client.Client {
	return client.New(clientURL())
}

// newClientLogger returns the stderr logger for client commands. The level
// comes from WW_LOG_LEVEL and defaults to warn.
func newClientLogger() *zap.Logger {
	level := getenv("WW_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// printJSON writes v as JSON with 2-space indentation.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
