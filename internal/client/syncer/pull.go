package syncer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

// pull fetches the remote collection of kind and upserts every record as
// synced and live. The remote copy wins over local state.
func (e *Engine) pull(ctx context.Context, db *sql.DB, kind models.EntityKind, er *EntityReport) error {
	var (
		n   int
		err error
	)
	switch kind {
	case models.EntityList:
		n, err = e.pullLists(ctx, db)
	case models.EntityCard:
		n, err = e.pullCards(ctx, db)
	default:
		return nil
	}
	if err != nil {
		e.logger.Warn(ctx, "pull failed", "entity", kind, "err", err)
		return fmt.Errorf("pull %ss: %w", kind, err)
	}
	er.Pulled = n
	e.metrics.Pulled(string(kind), n)
	return nil
}

func (e *Engine) pullLists(ctx context.Context, db *sql.DB) (int, error) {
	items, err := e.api.ListLists(ctx)
	if err != nil {
		return 0, err
	}
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := e.repomanager.Lists(tx)
		for i := range items {
			l := &items[i]
			l.IsSynced = true
			l.IsDeleted = false
			l.RemoteCreated = true
			if err := repo.Upsert(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

func (e *Engine) pullCards(ctx context.Context, db *sql.DB) (int, error) {
	items, err := e.api.ListCards(ctx)
	if err != nil {
		return 0, err
	}
	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := e.repomanager.Cards(tx)
		for i := range items {
			c := &items[i]
			c.IsSynced = true
			c.IsDeleted = false
			c.RemoteCreated = true
			if err := repo.Upsert(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
