package syncer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/remote"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

// pending is a record loaded for push, reduced to what the push loop needs.
type pending struct {
	synced        bool
	deleted       bool
	remoteCreated bool
	updatedAt     time.Time

	create func(ctx context.Context) error
	update func(ctx context.Context) error
	remove func(ctx context.Context) error
}

func (p *pending) request(ctx context.Context) (deleted bool, skipped bool, err error) {
	switch {
	case p.deleted && !p.remoteCreated:
		return true, true, nil
	case p.deleted:
		err := p.remove(ctx)
		if remote.IsNotFound(err) {
			err = nil
		}
		return true, false, err
	case !p.remoteCreated:
		return false, false, p.create(ctx)
	default:
		return false, false, p.update(ctx)
	}
}

func (e *Engine) load(ctx context.Context, db dbx.DBTX, kind models.EntityKind, id string) (*pending, error) {
	switch kind {
	case models.EntityList:
		l, err := e.repomanager.Lists(db).GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &pending{
			synced: l.IsSynced, deleted: l.IsDeleted, remoteCreated: l.RemoteCreated, updatedAt: l.UpdatedAt,
			create: func(ctx context.Context) error { return e.api.CreateList(ctx, l) },
			update: func(ctx context.Context) error { return e.api.UpdateList(ctx, l) },
			remove: func(ctx context.Context) error { return e.api.DeleteList(ctx, l.ID) },
		}, nil
	case models.EntityCard:
		c, err := e.repomanager.Cards(db).GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &pending{
			synced: c.IsSynced, deleted: c.IsDeleted, remoteCreated: c.RemoteCreated, updatedAt: c.UpdatedAt,
			create: func(ctx context.Context) error { return e.api.CreateCard(ctx, c) },
			update: func(ctx context.Context) error { return e.api.UpdateCard(ctx, c) },
			remove: func(ctx context.Context) error { return e.api.DeleteCard(ctx, c.ID) },
		}, nil
	case models.EntityUser:
		u, err := e.repomanager.Users(db).GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		// The backend only exposes PUT for users.
		put := func(ctx context.Context) error { return e.api.UpdateUser(ctx, u) }
		return &pending{
			synced: u.IsSynced, remoteCreated: true, updatedAt: u.UpdatedAt,
			create: put, update: put,
		}, nil
	default:
		return nil, fmt.Errorf("unknown entity %q", kind)
	}
}

func (e *Engine) markSynced(ctx context.Context, tx dbx.DBTX, kind models.EntityKind, id string) error {
	switch kind {
	case models.EntityList:
		return e.repomanager.Lists(tx).MarkSynced(ctx, id)
	case models.EntityCard:
		return e.repomanager.Cards(tx).MarkSynced(ctx, id)
	case models.EntityUser:
		return e.repomanager.Users(tx).MarkSynced(ctx, id)
	default:
		return fmt.Errorf("unknown entity %q", kind)
	}
}

// push drains the due outbox markers of kind. Only local store failures are
// returned; request failures are recorded on the marker.
func (e *Engine) push(ctx context.Context, db *sql.DB, kind models.EntityKind, er *EntityReport) error {
	outbox := e.repomanager.Outbox(db)

	n, err := outbox.EnqueueUnsynced(ctx, kind, e.now())
	if err != nil {
		return err
	}
	er.Enqueued = n

	due, err := outbox.Due(ctx, kind, e.now())
	if err != nil {
		return err
	}

	for _, item := range due {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.pushOne(ctx, db, item, er); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) pushOne(ctx context.Context, db *sql.DB, item models.OutboxItem, er *EntityReport) error {
	log := e.logger.With("entity", item.Entity, "id", item.EntityID)
	outbox := e.repomanager.Outbox(db)

	p, err := e.load(ctx, db, item.Entity, item.EntityID)
	if errors.Is(err, common.ErrNotFound) {
		er.Skipped++
		return outbox.Remove(ctx, item.Entity, item.EntityID)
	}
	if err != nil {
		return err
	}
	if p.synced {
		er.Skipped++
		return outbox.Remove(ctx, item.Entity, item.EntityID)
	}

	deleted, skipped, reqErr := p.request(ctx)
	if reqErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		er.Failed++
		e.metrics.Pushed(string(item.Entity), false)
		next := e.now().Add(e.delay(item.Attempts))
		log.Warn(ctx, "push failed", "attempts", item.Attempts+1, "retry_at", next, "err", reqErr)
		return outbox.MarkFailed(ctx, item.Entity, item.EntityID, next, reqErr.Error())
	}

	switch {
	case skipped:
		er.Skipped++
	case deleted:
		er.Deleted++
	default:
		er.Pushed++
	}
	e.metrics.Pushed(string(item.Entity), true)

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		current, err := e.load(ctx, tx, item.Entity, item.EntityID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		txOutbox := e.repomanager.Outbox(tx)
		// Edited while the request was in flight: push again next cycle.
		if current != nil && !current.updatedAt.Equal(p.updatedAt) {
			log.Debug(ctx, "record changed during push")
			return txOutbox.Enqueue(ctx, item.Entity, item.EntityID, e.now())
		}
		if current != nil {
			if err := e.markSynced(ctx, tx, item.Entity, item.EntityID); err != nil {
				return err
			}
		}
		return txOutbox.Remove(ctx, item.Entity, item.EntityID)
	})
}
