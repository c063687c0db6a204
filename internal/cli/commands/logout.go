package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(g *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token for the selected server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(g)
		},
	}
}

func runLogout(g *GlobalOptions, opts ...Option) error {
	deps, err := resolveDeps(g, opts...)
	if err != nil {
		return err
	}

	if err := deps.newSession().Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Fprintf(deps.out, "✓ Logged out of %s (%s)\n", deps.server.Alias, deps.server.URL)
	return nil
}
