package cli

import (
	"errors"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the local user",
	}
	cmd.AddCommand(a.userSetCommand(), a.userShowCommand())
	return cmd
}

func (a *App) userSetCommand() *cobra.Command {
	var (
		id, raw string
		patch   models.UserPatch
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create the local user or merge fields into it",
		Long: `Create the local user or merge the given fields into it.

Examples:
  studydeck user set --id u1 --name Ann --email ann@example.com
  studydeck user set --fields '{"_id":"u1","plan":"pro"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				u   *models.User
				err error
			)
			if raw != "" {
				u, err = a.users.UpsertCurrentUserFields(ctx, []byte(raw))
			} else {
				if id == "" {
					return errors.New("--id or --fields is required")
				}
				patch.ID = id
				u, err = a.users.UpsertCurrentUser(ctx, changedUserPatch(cmd, patch))
			}
			if err != nil {
				return err
			}
			return a.printUser(u)
		},
	}

	f := cmd.Flags()
	f.StringVar(&id, "id", "", "user id as known to the backend")
	f.StringVar(&raw, "fields", "", "JSON object of user attributes")
	patch.Name = f.String("name", "", "display name")
	patch.Email = f.String("email", "", "email address")
	patch.UserCode = f.String("code", "", "user code")
	patch.Role = f.String("role", "", "role")
	patch.Plan = f.String("plan", "", "subscription plan")
	patch.ProfileImage = f.String("profile-image", "", "profile image URL")
	patch.OrgPoints = f.Int("org-points", 0, "organisation points")
	return cmd
}

// changedUserPatch drops the fields whose flags were not given.
func changedUserPatch(cmd *cobra.Command, p models.UserPatch) models.UserPatch {
	f := cmd.Flags()
	if !f.Changed("name") {
		p.Name = nil
	}
	if !f.Changed("email") {
		p.Email = nil
	}
	if !f.Changed("code") {
		p.UserCode = nil
	}
	if !f.Changed("role") {
		p.Role = nil
	}
	if !f.Changed("plan") {
		p.Plan = nil
	}
	if !f.Changed("profile-image") {
		p.ProfileImage = nil
	}
	if !f.Changed("org-points") {
		p.OrgPoints = nil
	}
	return p
}

func (a *App) userShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the local user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.currentUser(cmd.Context())
			if err != nil {
				return err
			}
			return a.printUser(u)
		},
	}
}
