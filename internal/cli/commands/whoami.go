package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-dev/conduit/internal/session"
)

// Output formats accepted by --output
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// profileView is the printable part of a user. The token is never printed.
type profileView struct {
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	Bio      string `json:"bio" yaml:"bio"`
	Image    string `json:"image" yaml:"image"`
	Server   string `json:"server" yaml:"server"`
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(g *GlobalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), g, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "Output format: text, json or yaml")

	return cmd
}

func runWhoami(ctx context.Context, g *GlobalOptions, output string, opts ...Option) error {
	switch output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (expected %s, %s or %s)", output, outputText, outputJSON, outputYAML)
	}

	deps, err := resolveDeps(g, opts...)
	if err != nil {
		return err
	}

	sess := deps.newSession()
	user, err := sess.GetCurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("not logged in to %s: %w\nRun 'conduit login' first", deps.server.Alias, err)
	}

	return printProfile(deps, profileFromUser(user, deps.server.URL), output)
}

func printProfile(deps *commandDeps, view profileView, output string) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(deps.out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case outputYAML:
		enc := yaml.NewEncoder(deps.out)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}

	w := tabwriter.NewWriter(deps.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", view.Username)
	fmt.Fprintf(w, "Email:\t%s\n", view.Email)
	fmt.Fprintf(w, "Bio:\t%s\n", orNone(view.Bio))
	fmt.Fprintf(w, "Image:\t%s\n", orNone(view.Image))
	fmt.Fprintf(w, "Server:\t%s\n", view.Server)
	return w.Flush()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func profileFromUser(user *session.User, serverURL string) profileView {
	return profileView{
		Username: user.Username,
		Email:    user.Email,
		Bio:      user.Bio,
		Image:    user.Image,
		Server:   serverURL,
	}
}
