package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-dev/conduit/internal/conduit"
)

const (
	emailEnv    = "CONDUIT_EMAIL"
	passwordEnv = "CONDUIT_PASSWORD"
)

// NewLoginCmd creates the login command
func NewLoginCmd(g *GlobalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a Conduit server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), g, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CONDUIT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CONDUIT_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, g *GlobalOptions, email, password string, opts ...Option) error {
	// Environment variables are useful for CI/CD
	if email == "" {
		email = os.Getenv(emailEnv)
	}
	if password == "" {
		password = os.Getenv(passwordEnv)
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or %s env var)", emailEnv)
	}

	deps, err := resolveDeps(g, opts...)
	if err != nil {
		return err
	}

	if password == "" {
		password, err = readPassword(passwordEnv)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(deps.out, "Logging in to %s (%s)...\n", deps.server.Alias, deps.server.URL)

	sess := deps.newSession()
	user, err := sess.Login(ctx, conduit.LoginInput{Email: email, Password: password})
	if err != nil {
		if user == nil {
			return submitError("login", err)
		}
		// Logged in, but the token could not be saved
		return err
	}

	fmt.Fprintln(deps.out, "✓ Login successful!")
	fmt.Fprintf(deps.out, "  User: %s (%s)\n", user.Username, user.Email)

	return nil
}
