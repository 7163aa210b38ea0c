package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

func init() {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok &&
			info.Main.Version != "" &&
			info.Main.Version != "(devel)" {
			version = strings.TrimPrefix(info.Main.Version, "v")
		}
	}
}

// NewRootCmd creates the root cobra command for the ww CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ww",
		Short: "Word wall CLI",
		Long:  "Word wall CLI — run the comment wall server or post, like and render its word cloud.\n\nClient commands read WW_URL (default http://localhost:9999) from the environment or a .env file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if !showVersion {
				return cmd.Help()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "client: %s\n", version)
			serverVersion := "unavailable"
			if v, err := newClient().Version(cmd.Context()); err == nil && v != "" {
				serverVersion = v
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server: %s\n", serverVersion)
			return nil
		},
	}

	root.Flags().BoolP("version", "v", false, "show version information")
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "client", Title: "Client Commands:"},
	)

	serveCmd := newServeCmd()
	serveCmd.GroupID = "server"
	root.AddCommand(serveCmd)

	for _, cmd := range []*cobra.Command{
		newListCmd(),
		newPostCmd(),
		newLikeCmd(),
		newCloudCmd(),
	} {
		cmd.GroupID = "client"
		root.AddCommand(cmd)
	}

	// Hidden alias: "comment" -> "post"
	commentAlias := newPostCmd()
	commentAlias.Use = "comment <text>"
	commentAlias.Hidden = true
	root.AddCommand(commentAlias)

	return root
}
