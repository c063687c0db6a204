package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-dev/conduit/internal/conduit"
)

// NewUpdateProfileCmd creates the update-profile command
func NewUpdateProfileCmd(g *GlobalOptions) *cobra.Command {
	var email, username, password, bio, image string

	cmd := &cobra.Command{
		Use:   "update-profile",
		Short: "Update the logged in user's profile",
		Long: `Update the logged in user's profile.

Only the flags you pass are sent; everything else is left unchanged.
Pass an empty value (e.g. --bio "") to clear a field.

Examples:
  $ conduit update-profile --bio "I like to skateboard"
  $ conduit update-profile --email new@example.com --username jake2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input conduit.UpdateUserInput
			flags := cmd.Flags()
			if flags.Changed("email") {
				input.Email = &email
			}
			if flags.Changed("username") {
				input.Username = &username
			}
			if flags.Changed("password") {
				input.Password = &password
			}
			if flags.Changed("bio") {
				input.Bio = &bio
			}
			if flags.Changed("image") {
				input.Image = &image
			}
			return runUpdateProfile(cmd.Context(), g, input)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&image, "image", "", "Avatar image URL")

	return cmd
}

func runUpdateProfile(ctx context.Context, g *GlobalOptions, input conduit.UpdateUserInput, opts ...Option) error {
	if input.Email == nil && input.Username == nil && input.Password == nil && input.Bio == nil && input.Image == nil {
		return fmt.Errorf("nothing to update (pass at least one of --email, --username, --password, --bio, --image)")
	}

	deps, err := resolveDeps(g, opts...)
	if err != nil {
		return err
	}

	sess := deps.newSession()
	user, err := sess.UpdateCurrentUser(ctx, input)
	if err != nil {
		return submitError("profile update", err)
	}

	fmt.Fprintln(deps.out, "✓ Profile updated")
	return printProfile(deps, profileFromUser(user, deps.server.URL), outputText)
}
