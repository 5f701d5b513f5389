package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

type ListService struct {
	base
}

func NewListService(st *store.Store, m repomanager.RepositoryManager, opts ...Option) *ListService {
	return &ListService{base: newBase(st, m, opts)}
}

// Create persists a new list owned by an existing user. A missing owner
// yields common.ErrMissingReference and nothing is written.
func (s *ListService) Create(ctx context.Context, in models.NewList) (*models.List, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.List, error) {
		if err := s.requireUser(ctx, tx, in.UserID); err != nil {
			return nil, err
		}

		now := s.timestamp()
		l := &models.List{
			ID:            in.ID,
			UserID:        in.UserID,
			Title:         in.Title,
			Description:   in.Description,
			CreatedAt:     now,
			UpdatedAt:     now,
			IsSynced:      !in.Offline,
			RemoteCreated: !in.Offline,
		}
		if l.ID == "" {
			l.ID = s.newID()
		}

		if err := s.repomanager.Lists(tx).Insert(ctx, l); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityList, l.ID, l.IsSynced); err != nil {
			return nil, err
		}
		return l, nil
	})
}

func (s *ListService) GetAll(ctx context.Context, opts ...ReadOption) ([]models.List, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Lists(db).GetAll(ctx, applyRead(opts).includeDeleted)
}

func (s *ListService) GetByUserID(ctx context.Context, userID string, opts ...ReadOption) ([]models.List, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Lists(db).GetByUserID(ctx, userID, applyRead(opts).includeDeleted)
}

// GetByID returns common.ErrNotFound for soft-deleted lists unless
// IncludeDeleted is given.
func (s *ListService) GetByID(ctx context.Context, id string, opts ...ReadOption) (*models.List, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	l, err := s.repomanager.Lists(db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.IsDeleted && !applyRead(opts).includeDeleted {
		return nil, fmt.Errorf("list %s: %w", id, common.ErrNotFound)
	}
	return l, nil
}

// Cards returns the cards that reference the list.
func (s *ListService) Cards(ctx context.Context, listID string, opts ...ReadOption) ([]models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Cards(db).GetByListID(ctx, listID, applyRead(opts).includeDeleted)
}

// Update applies the set fields of patch. markUnsynced forces isSynced = false.
// Nothing is written, and updatedAt stays, when the call changes nothing.
func (s *ListService) Update(ctx context.Context, id string, patch models.ListPatch, markUnsynced bool) (*models.List, error) {
	if err := s.check(patch); err != nil {
		return nil, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.List, error) {
		repo := s.repomanager.Lists(tx)
		l, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		changed := patch.Apply(l)
		if markUnsynced && l.IsSynced {
			l.IsSynced = false
			changed = true
		}
		if !changed {
			return l, nil
		}
		l.UpdatedAt = s.timestamp()

		if err := repo.Update(ctx, l); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityList, l.ID, l.IsSynced); err != nil {
			return nil, err
		}
		return l, nil
	})
}

// UpdateFields decodes a JSON object of list attributes and applies it like
// Update. Keys that are not list attributes are logged and ignored.
func (s *ListService) UpdateFields(ctx context.Context, id string, data []byte, markUnsynced bool) (*models.List, error) {
	patch, unknown, err := models.ParseListPatch(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	s.warnUnknown(ctx, models.EntityList, id, unknown)
	return s.Update(ctx, id, patch, markUnsynced)
}

// Delete soft-deletes the list and every card in it in one transaction.
// Deleting a list that is already deleted returns it unchanged.
func (s *ListService) Delete(ctx context.Context, id string) (*models.List, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.List, error) {
		lists := s.repomanager.Lists(tx)
		cards := s.repomanager.Cards(tx)

		l, err := lists.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if l.IsDeleted {
			return l, nil
		}

		now := s.timestamp()
		l.IsDeleted = true
		l.IsSynced = false
		l.UpdatedAt = now
		if err := lists.Update(ctx, l); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityList, l.ID, false); err != nil {
			return nil, err
		}

		children, err := cards.GetByListID(ctx, id, false)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			c, err := cards.GetByID(ctx, child.ID)
			if err != nil {
				return nil, err
			}
			c.IsDeleted = true
			c.IsSynced = false
			c.UpdatedAt = now
			if err := cards.Update(ctx, c); err != nil {
				return nil, err
			}
			if err := s.markDirty(ctx, tx, models.EntityCard, c.ID, false); err != nil {
				return nil, err
			}
		}

		s.logger.Debug(ctx, "list deleted", "id", id, "cards", len(children))
		return l, nil
	})
}
