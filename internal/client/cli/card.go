package cli

import (
	"fmt"
	"path"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) cardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage study cards",
	}
	cmd.AddCommand(
		a.cardAddCommand(),
		a.cardLsCommand(),
		a.cardShowCommand(),
		a.cardSearchCommand(),
		a.cardUpdateCommand(),
		a.cardRmCommand(),
		a.cardCommentCommand(),
		a.cardLikeCommand(),
		a.cardDownloadCommand(),
	)
	return cmd
}

// readContent returns v, or the text read from stdin when v is "-".
func (a *App) readContent(v string) (string, error) {
	if v != "-" {
		return v, nil
	}
	return GetMultiline(a.stdin(), "Enter card content", a.errOut)
}

func pdfsFromURLs(urls []string, now time.Time) []models.Pdf {
	out := make([]models.Pdf, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.Pdf{URL: u, Filename: path.Base(u), UploadedAt: now})
	}
	return out
}

func (a *App) cardAddCommand() *cobra.Command {
	var (
		in   models.NewCard
		pdfs []string
		body string
	)
	cmd := &cobra.Command{
		Use:   "add LIST_ID [TITLE]",
		Short: "Create a card in a list",
		Long: `Create a card in a list owned by the local user. Without TITLE the
title is read from stdin.

Examples:
  studydeck card add <list-id> "Quadratic formula" --priority high
  studydeck card add <list-id> "Proof" --content -    # read content from stdin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			title, err := a.titleArg(args, 1)
			if err != nil {
				return err
			}
			content, err := a.readContent(body)
			if err != nil {
				return err
			}
			in.ListID = args[0]
			in.UserID = u.ID
			in.Title = title
			in.Content = content
			in.Pdfs = pdfsFromURLs(pdfs, time.Now().UTC())

			c, err := a.cards.Create(ctx, in)
			if err != nil {
				return err
			}
			return a.printCard(c)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&in.Priority, "priority", "p", "", "low, medium or high")
	f.StringVar(&body, "content", "", `card text, or "-" to read it from stdin`)
	f.StringArrayVar(&in.ImageURLs, "image", nil, "image URL (repeatable)")
	f.StringArrayVar(&pdfs, "pdf", nil, "PDF URL (repeatable)")
	f.BoolVar(&in.IsPublished, "published", false, "publish the card")
	f.BoolVar(&in.Offline, "offline", false, "mark the card as not yet known to the backend")
	return cmd
}

func (a *App) cardLsCommand() *cobra.Command {
	var (
		listID string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List cards of the local user or of one list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var (
				cards []models.Card
				err   error
			)
			if listID != "" {
				cards, err = a.cards.GetByListID(ctx, listID, readOptions(all)...)
			} else {
				var u *models.User
				if u, err = a.currentUser(ctx); err != nil {
					return err
				}
				cards, err = a.cards.GetByUserID(ctx, u.ID, readOptions(all)...)
			}
			if err != nil {
				return err
			}
			return a.printCards(cards)
		},
	}
	cmd.Flags().StringVarP(&listID, "list", "l", "", "only cards of this list")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include deleted cards")
	return cmd
}

func (a *App) cardShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a card with its content and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cards.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printCard(c)
		},
	}
}

func (a *App) cardSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Find cards whose title or content contains TERM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cards, err := a.cards.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printCards(cards)
		},
	}
}

func (a *App) cardUpdateCommand() *cobra.Command {
	var (
		title, priority, body, listID, raw string
		published                          bool
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change card attributes",
		Long: `Change card attributes and queue the change for sync.

Examples:
  studydeck card update <id> --priority medium --content -
  studydeck card update <id> --fields '{"title":"Vectors","is_published":true}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if raw != "" {
				c, err := a.cards.UpdateFields(ctx, args[0], []byte(raw), true)
				if err != nil {
					return err
				}
				return a.printCard(c)
			}

			f := cmd.Flags()
			var p models.CardPatch
			if f.Changed("title") {
				p.Title = &title
			}
			if f.Changed("priority") {
				p.Priority = &priority
			}
			if f.Changed("list") {
				p.ListID = &listID
			}
			if f.Changed("published") {
				p.IsPublished = &published
			}
			if f.Changed("content") {
				content, err := a.readContent(body)
				if err != nil {
					return err
				}
				p.Content = &content
			}
			c, err := a.cards.Update(ctx, args[0], p, true)
			if err != nil {
				return err
			}
			return a.printCard(c)
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&priority, "priority", "p", "", "low, medium or high")
	f.StringVar(&body, "content", "", `new text, or "-" to read it from stdin`)
	f.StringVarP(&listID, "list", "l", "", "move the card to this list")
	f.BoolVar(&published, "published", false, "publish or unpublish the card")
	f.StringVar(&raw, "fields", "", "JSON object of card attributes")
	return cmd
}

func (a *App) cardRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cards.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted card %s\n", c.ID)
			return nil
		},
	}
}

func (a *App) cardCommentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "comment ID TEXT",
		Short: "Comment on a card as the local user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.currentUser(ctx)
			if err != nil {
				return err
			}
			c, err := a.cards.AddComment(ctx, args[0], u.ID, args[1])
			if err != nil {
				return err
			}
			return a.printCard(c)
		},
	}
}

func (a *App) cardLikeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "like ID",
		Short: "Like a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cards.Like(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s has %d likes\n", c.ID, c.Likes)
			return nil
		},
	}
}

func (a *App) cardDownloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "download ID",
		Short: "Record a download of a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.cards.RecordDownload(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s has %d downloads\n", c.ID, c.Downloads)
			return nil
		},
	}
}
