package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vector76/wordwall/internal/client"
	"github.com/vector76/wordwall/internal/cloud"
	"github.com/vector76/wordwall/internal/view"
)

func newListCmd() *cobra.Command {
	var tokens bool
	var query string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List comments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comments, err := newClient().SearchComments(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			if tokens {
				return printJSON(cmd.OutOrStdout(), cloud.Tokens(comments))
			}
			return printJSON(cmd.OutOrStdout(), comments)
		},
	}

	cmd.Flags().BoolVar(&tokens, "tokens", false, "print the word tokens used for layout")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only comments containing this text")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of comments (0 = all)")

	return cmd
}

func newPostCmd() *cobra.Command {
	var out sceneOutput

	cmd := &cobra.Command{
		Use:   "post <text>",
		Short: "Post a comment and re-render the cloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := newPage(cmd, &out)
			if err != nil {
				return err
			}
			page.Form.Set("text", args[0])

			err = page.Submit(cmd.Context())
			var fe *client.FormError
			if errors.As(err, &fe) {
				// Already shown through the alert hook.
				cmd.SilenceErrors = true
				cmd.SilenceUsage = true
			}
			return err
		},
	}

	out.addFlags(cmd, true)
	return cmd
}

func newLikeCmd() *cobra.Command {
	var out sceneOutput

	cmd := &cobra.Command{
		Use:   "like <id>",
		Short: "Like a comment and re-render the cloud",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id < 1 {
				return fmt.Errorf("invalid comment id %q", args[0])
			}
			page, err := newPage(cmd, &out)
			if err != nil {
				return err
			}
			return page.Like(cmd.Context(), id)
		},
	}

	out.addFlags(cmd, true)
	return cmd
}

func newCloudCmd() *cobra.Command {
	var out sceneOutput

	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Render the word cloud as SVG or PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := newPage(cmd, &out)
			if err != nil {
				return err
			}
			return page.Refresh(cmd.Context())
		},
	}

	out.addFlags(cmd, false)
	return cmd
}

// newPage wires a view.Page to the API client with out as its display.
// Rejected submissions are printed to stderr.
func newPage(cmd *cobra.Command, out *sceneOutput) (*view.Page, error) {
	if _, err := out.resolvedFormat(); err != nil {
		return nil, err
	}
	log := newClientLogger()
	out.stdout = cmd.OutOrStdout()
	out.font = cloud.DefaultFont()

	renderer := cloud.NewRenderer(cloud.NewLayout(out.font), log.Named("cloud"))
	return view.New(newClient(), renderer, out, view.Options{
		Width:  out.width,
		Height: out.height,
		Alert: func(msg string) {
			fmt.Fprintln(cmd.ErrOrStderr(), msg)
		},
		Logger: log,
	}), nil
}

// sceneOutput is the CLI display: it writes each scene to a file, to
// stdout, or as a one-line summary.
type sceneOutput struct {
	path    string
	format  string
	width   int
	height  int
	summary bool

	stdout io.Writer
	font   *cloud.Font
}

func (o *sceneOutput) addFlags(cmd *cobra.Command, summary bool) {
	o.summary = summary
	usage := "write the rendered cloud to this file"
	if !summary {
		usage += " (default stdout)"
	}
	cmd.Flags().StringVarP(&o.path, "out", "o", "", usage)
	cmd.Flags().StringVar(&o.format, "format", "", "output format: svg or png (default from --out extension, else svg)")
	cmd.Flags().IntVar(&o.width, "width", 800, "canvas width in pixels")
	cmd.Flags().IntVar(&o.height, "height", 600, "canvas height in pixels")
}

// resolvedFormat returns the output format, inferring png from a .png path.
func (o *sceneOutput) resolvedFormat() (string, error) {
	format := strings.ToLower(o.format)
	if format == "" {
		format = "svg"
		if strings.EqualFold(filepath.Ext(o.path), ".png") {
			format = "png"
		}
	}
	if format != "svg" && format != "png" {
		return "", fmt.Errorf("unknown format %q (want svg or png)", o.format)
	}
	return format, nil
}

// Show implements view.Display.
func (o *sceneOutput) Show(s cloud.Scene) error {
	if o.path == "" && o.summary {
		if s.Empty {
			fmt.Fprintln(o.stdout, cloud.Placeholder)
		} else {
			fmt.Fprintf(o.stdout, "rendered %d words\n", len(s.Words))
		}
		return nil
	}

	format, err := o.resolvedFormat()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if format == "png" {
		err = cloud.WritePNG(&buf, s, o.font)
	} else {
		err = cloud.WriteSVG(&buf, s)
	}
	if err != nil {
		return err
	}

	if o.path == "" {
		_, err = o.stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(o.path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", o.path, err)
	}
	return nil
}
