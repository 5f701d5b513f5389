package cli

import (
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/services"
	"github.com/spf13/cobra"
)

func (a *App) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage card lists",
	}
	cmd.AddCommand(
		a.listAddCommand(),
		a.listLsCommand(),
		a.listShowCommand(),
		a.listUpdateCommand(),
		a.listRmCommand(),
	)
	return cmd
}

func readOptions(all bool) []services.ReadOption {
	if all {
		return []services.ReadOption{services.IncludeDeleted()}
	}
	return nil
}

func (a *App) listAddCommand() *cobra.Command {
	var (
		description string
		offline     bool
	)
	cmd := &cobra.Command{
		Use:   "add [TITLE]",
		Short: "Create a list owned by the local user",
		Long:  "Create a list owned by the local user. Without TITLE the title is read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			title, err := a.titleArg(args, 0)
			if err != nil {
				return err
			}
			in := models.NewList{UserID: u.ID, Title: title, Offline: offline}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			l, err := a.lists.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.printList(l)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "list description")
	cmd.Flags().BoolVar(&offline, "offline", false, "mark the list as not yet known to the backend")
	return cmd
}

func (a *App) listLsCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List the local user's lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			lists, err := a.lists.GetByUserID(ctx, u.ID, readOptions(all)...)
			if err != nil {
				return err
			}
			return a.printLists(lists)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include deleted lists")
	return cmd
}

func (a *App) listShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a list and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := a.lists.GetByID(ctx, args[0])
			if err != nil {
				return err
			}
			cards, err := a.lists.Cards(ctx, l.ID)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(struct {
					*models.List
					Cards []models.Card `json:"cards"`
				}{l, cards})
			}
			if err := a.printList(l); err != nil {
				return err
			}
			fmt.Fprintln(a.out)
			return a.printCards(cards)
		},
	}
}

func (a *App) listUpdateCommand() *cobra.Command {
	var title, description, raw string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a list's title or description",
		Long: `Change a list's title or description and queue the change for sync.

Examples:
  studydeck list update <id> --title "Linear algebra"
  studydeck list update <id> --fields '{"description":"chapter 3"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var (
				l   *models.List
				err error
			)
			if raw != "" {
				l, err = a.lists.UpdateFields(ctx, args[0], []byte(raw), true)
			} else {
				var p models.ListPatch
				if cmd.Flags().Changed("title") {
					p.Title = &title
				}
				if cmd.Flags().Changed("description") {
					p.Description = &description
				}
				l, err = a.lists.Update(ctx, args[0], p, true)
			}
			if err != nil {
				return err
			}
			return a.printList(l)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&raw, "fields", "", "JSON object of list attributes")
	return cmd
}

func (a *App) listRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a list and its cards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.lists.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted list %s\n", l.ID)
			return nil
		},
	}
}
