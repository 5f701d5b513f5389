package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/syncer"
)

func (a *App) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer, header ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	return tw
}

func syncState(synced, deleted bool) string {
	s := "synced"
	if !synced {
		s = "pending"
	}
	if deleted {
		s += ",deleted"
	}
	return s
}

func (a *App) printUser(u *models.User) error {
	if a.jsonOutput {
		return a.printJSON(u)
	}
	fmt.Fprintf(a.out, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, syncState(u.IsSynced, false))
	return nil
}

func (a *App) printLists(lists []models.List) error {
	if a.jsonOutput {
		return a.printJSON(lists)
	}
	tw := newTable(a.out, "ID", "TITLE", "DESCRIPTION", "UPDATED", "STATE")
	for _, l := range lists {
		desc := ""
		if l.Description != nil {
			desc = *l.Description
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, desc, l.UpdatedAt.Format(time.DateTime), syncState(l.IsSynced, l.IsDeleted))
	}
	return tw.Flush()
}

func (a *App) printList(l *models.List) error {
	return a.printLists([]models.List{*l})
}

func (a *App) printCards(cards []models.Card) error {
	if a.jsonOutput {
		return a.printJSON(cards)
	}
	tw := newTable(a.out, "ID", "LIST", "TITLE", "PRIORITY", "LIKES", "COMMENTS", "STATE")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n", c.ID, c.ListID, c.Title, c.Priority, c.Likes, len(c.Comments), syncState(c.IsSynced, c.IsDeleted))
	}
	return tw.Flush()
}

func (a *App) printCard(c *models.Card) error {
	if a.jsonOutput {
		return a.printJSON(c)
	}
	fmt.Fprintf(a.out, "%s  %s  [%s, %s]\n", c.ID, c.Title, c.Priority, syncState(c.IsSynced, c.IsDeleted))
	if c.Content != "" {
		fmt.Fprintf(a.out, "\n%s\n", c.Content)
	}
	for _, cm := range c.Comments {
		fmt.Fprintf(a.out, "  - %s (%s): %s\n", cm.UserID, cm.CreatedAt.Format(time.DateTime), cm.Text)
	}
	return nil
}

func (a *App) printReport(r syncer.Report) error {
	if a.jsonOutput {
		type entity struct {
			Entity   models.EntityKind `json:"entity"`
			Enqueued int64             `json:"enqueued"`
			Pushed   int               `json:"pushed"`
			Deleted  int               `json:"deleted"`
			Skipped  int               `json:"skipped"`
			Failed   int               `json:"failed"`
			Pulled   int               `json:"pulled"`
			PullErr  string            `json:"pullError,omitempty"`
		}
		out := make([]entity, 0, len(models.SyncOrder))
		for _, kind := range models.SyncOrder {
			er := r.Entity(kind)
			e := entity{Entity: kind, Enqueued: er.Enqueued, Pushed: er.Pushed, Deleted: er.Deleted,
				Skipped: er.Skipped, Failed: er.Failed, Pulled: er.Pulled}
			if er.PullErr != nil {
				e.PullErr = er.PullErr.Error()
			}
			out = append(out, e)
		}
		return a.printJSON(out)
	}

	tw := newTable(a.out, "ENTITY", "PUSHED", "DELETED", "SKIPPED", "FAILED", "PULLED")
	for _, kind := range models.SyncOrder {
		er := r.Entity(kind)
		pulled := fmt.Sprint(er.Pulled)
		switch {
		case er.PullErr != nil:
			pulled = "error"
		case kind == models.EntityUser:
			pulled = "-"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", kind, er.Pushed, er.Deleted, er.Skipped, er.Failed, pulled)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "took %s\n", r.Duration.Round(time.Millisecond))
	return nil
}

func (a *App) printPending(items []models.OutboxItem) error {
	if a.jsonOutput {
		return a.printJSON(items)
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "nothing to push")
		return nil
	}
	tw := newTable(a.out, "ENTITY", "ID", "ATTEMPTS", "NEXT ATTEMPT", "LAST ERROR")
	for _, it := range items {
		next := "now"
		if !it.NextAttemptAt.IsZero() {
			next = it.NextAttemptAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.Entity, it.EntityID, it.Attempts, next, it.LastError)
	}
	return tw.Flush()
}
