// Package services is the record access layer: typed CRUD over users, lists
// and cards on top of the local store.
//
// Every mutating call runs in a single transaction. Records written with
// isSynced = false also get an outbox marker in the same transaction, so the
// sync engine sees every local change.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Option configures the shared dependencies of a service.
type Option func(*base)

func WithLogger(l logging.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithClock replaces time.Now for createdAt/updatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// WithIDGenerator replaces uuid.NewString for generated record ids.
func WithIDGenerator(f func() string) Option {
	return func(b *base) { b.newID = f }
}

// ReadOption tunes queries that enumerate records.
type ReadOption func(*readOptions)

type readOptions struct {
	includeDeleted bool
}

// IncludeDeleted makes a read return soft-deleted records as well.
func IncludeDeleted() ReadOption {
	return func(o *readOptions) { o.includeDeleted = true }
}

func applyRead(opts []ReadOption) readOptions {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type base struct {
	store       *store.Store
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	validate    *validator.Validate
	now         func() time.Time
	newID       func() string
}

func newBase(st *store.Store, m repomanager.RepositoryManager, opts []Option) base {
	b := base{
		store:       st,
		repomanager: m,
		logger:      logging.Discard(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) db(ctx context.Context) (*sql.DB, error) {
	return b.store.Acquire(ctx)
}

func (b *base) timestamp() time.Time {
	return b.now().UTC()
}

func (b *base) check(v any) error {
	if err := b.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (b *base) warnUnknown(ctx context.Context, entity models.EntityKind, id string, keys []string) {
	for _, k := range keys {
		b.logger.Warn(ctx, "ignoring unknown field", "entity", entity, "id", id, "field", k)
	}
}

// markDirty enqueues the record for push when it is unsynced.
func (b *base) markDirty(ctx context.Context, tx dbx.DBTX, entity models.EntityKind, id string, synced bool) error {
	if synced {
		return nil
	}
	return b.repomanager.Outbox(tx).Enqueue(ctx, entity, id, b.timestamp())
}

// requireUser maps an absent user to common.ErrMissingReference.
func (b *base) requireUser(ctx context.Context, tx dbx.DBTX, id string) error {
	_, err := b.repomanager.Users(tx).GetByID(ctx, id)
	if err != nil {
		return missingReference(err, "user", id)
	}
	return nil
}

func (b *base) requireList(ctx context.Context, tx dbx.DBTX, id string) error {
	ok, err := b.repomanager.Lists(tx).Exists(ctx, id, false)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("list %s: %w", id, common.ErrMissingReference)
	}
	return nil
}

func missingReference(err error, kind, id string) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, common.ErrMissingReference)
	}
	return err
}
