package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-dev/conduit/internal/conduit"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(g *GlobalOptions) *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on a Conduit server and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(cmd.Context(), g, username, email, password)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CONDUIT_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CONDUIT_PASSWORD, will prompt if not provided)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runRegister(ctx context.Context, g *GlobalOptions, username, email, password string, opts ...Option) error {
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

	fmt.Fprintf(deps.out, "Registering %s on %s (%s)...\n", username, deps.server.Alias, deps.server.URL)

	sess := deps.newSession()
	user, err := sess.Register(ctx, conduit.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		if user == nil {
			return submitError("registration", err)
		}
		return err
	}

	fmt.Fprintln(deps.out, "✓ Account created, you are now logged in")
	fmt.Fprintf(deps.out, "  User: %s (%s)\n", user.Username, user.Email)

	return nil
}
