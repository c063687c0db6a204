package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-dev/conduit/internal/cli/commands"
	"github.com/conduit-dev/conduit/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the conduit command tree
func NewRootCmd() *cobra.Command {
	globals := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "conduit",
		Short: "Conduit - account management for Conduit (RealWorld) servers",
		Long: `Conduit CLI - Register, log in and manage your profile on a Conduit API server.

Servers are listed in ./conduit.json; tokens are kept in the system keyring
(or ~/.config/conduit/credentials.json with --token-store file).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so --output json|yaml stays parseable
			globals.Logger = logger.New(os.Stderr, globals.LogLevel, "console")
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.LogLevel, "log-level", "error", "Log level (debug, info, warn, error)")
	flags.StringVar(&globals.Server, "server", "", "Server URL or alias from conduit.json (default: selected server)")
	flags.StringVar(&globals.TokenStore, "token-store", "", "Where tokens are kept: keyring or file (default: keyring)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "conduit version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd(globals))
	rootCmd.AddCommand(commands.NewLoginCmd(globals))
	rootCmd.AddCommand(commands.NewWhoamiCmd(globals))
	rootCmd.AddCommand(commands.NewUpdateProfileCmd(globals))
	rootCmd.AddCommand(commands.NewLogoutCmd(globals))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
