package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

type CardService struct {
	base
}

func NewCardService(st *store.Store, m repomanager.RepositoryManager, opts ...Option) *CardService {
	return &CardService{base: newBase(st, m, opts)}
}

// Create persists a new card. Both the owner and the (non-deleted) list must
// exist, otherwise common.ErrMissingReference is returned and nothing is written.
func (s *CardService) Create(ctx context.Context, in models.NewCard) (*models.Card, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.Card, error) {
		if err := s.requireUser(ctx, tx, in.UserID); err != nil {
			return nil, err
		}
		if err := s.requireList(ctx, tx, in.ListID); err != nil {
			return nil, err
		}

		now := s.timestamp()
		c := &models.Card{
			ID:            in.ID,
			ListID:        in.ListID,
			UserID:        in.UserID,
			Title:         in.Title,
			Priority:      in.Priority,
			IsPublished:   in.IsPublished,
			ImageURLs:     append([]string{}, in.ImageURLs...),
			Pdfs:          append([]models.Pdf{}, in.Pdfs...),
			Content:       in.Content,
			CreatedAt:     now,
			UpdatedAt:     now,
			IsSynced:      !in.Offline,
			RemoteCreated: !in.Offline,
		}
		if c.ID == "" {
			c.ID = s.newID()
		}
		c.Normalize()

		if err := s.repomanager.Cards(tx).Insert(ctx, c); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityCard, c.ID, c.IsSynced); err != nil {
			return nil, err
		}
		return c, nil
	})
}

func (s *CardService) GetAll(ctx context.Context, opts ...ReadOption) ([]models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Cards(db).GetAll(ctx, applyRead(opts).includeDeleted)
}

func (s *CardService) GetByUserID(ctx context.Context, userID string, opts ...ReadOption) ([]models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Cards(db).GetByUserID(ctx, userID, applyRead(opts).includeDeleted)
}

func (s *CardService) GetByListID(ctx context.Context, listID string, opts ...ReadOption) ([]models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Cards(db).GetByListID(ctx, listID, applyRead(opts).includeDeleted)
}

func (s *CardService) GetByID(ctx context.Context, id string, opts ...ReadOption) (*models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.repomanager.Cards(db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted && !applyRead(opts).includeDeleted {
		return nil, fmt.Errorf("card %s: %w", id, common.ErrNotFound)
	}
	return c, nil
}

// Search returns the non-deleted cards whose title or content contains term,
// ignoring case. SQLite's LIKE only folds ASCII, so matching happens here.
func (s *CardService) Search(ctx context.Context, term string) ([]models.Card, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	result := []models.Card{}
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Title), needle) || strings.Contains(strings.ToLower(c.Content), needle) {
			result = append(result, c)
		}
	}
	return result, nil
}

// Update applies the set fields of patch. Moving the card to another list
// requires that list to exist.
func (s *CardService) Update(ctx context.Context, id string, patch models.CardPatch, markUnsynced bool) (*models.Card, error) {
	if err := s.check(patch); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, true, func(ctx context.Context, tx dbx.DBTX, c *models.Card) (bool, error) {
		if patch.ListID != nil && *patch.ListID != c.ListID {
			if err := s.requireList(ctx, tx, *patch.ListID); err != nil {
				return false, err
			}
		}
		changed := patch.Apply(c)
		if markUnsynced && c.IsSynced {
			c.IsSynced = false
			return true, nil
		}
		return changed, nil
	})
}

// UpdateFields decodes a JSON object of card attributes and applies it like
// Update. Keys that are not card attributes are logged and ignored.
func (s *CardService) UpdateFields(ctx context.Context, id string, data []byte, markUnsynced bool) (*models.Card, error) {
	patch, unknown, err := models.ParseCardPatch(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	s.warnUnknown(ctx, models.EntityCard, id, unknown)
	return s.Update(ctx, id, patch, markUnsynced)
}

// Delete soft-deletes the card. Deleting a deleted card returns it unchanged.
func (s *CardService) Delete(ctx context.Context, id string) (*models.Card, error) {
	return s.mutate(ctx, id, true, func(_ context.Context, _ dbx.DBTX, c *models.Card) (bool, error) {
		if c.IsDeleted {
			return false, nil
		}
		c.IsDeleted = true
		c.IsSynced = false
		return true, nil
	})
}

// AddComment appends a comment by an existing user to a live card.
func (s *CardService) AddComment(ctx context.Context, cardID, userID, text string) (*models.Card, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is empty", common.ErrValidation)
	}
	return s.mutate(ctx, cardID, false, func(ctx context.Context, tx dbx.DBTX, c *models.Card) (bool, error) {
		if err := s.requireUser(ctx, tx, userID); err != nil {
			return false, err
		}
		now := s.timestamp()
		c.Comments = append(c.Comments, models.Comment{
			ID:        s.newID(),
			UserID:    userID,
			Text:      text,
			CreatedAt: now,
			UpdatedAt: now,
		})
		c.IsSynced = false
		return true, nil
	})
}

func (s *CardService) Like(ctx context.Context, cardID string) (*models.Card, error) {
	return s.mutate(ctx, cardID, false, func(_ context.Context, _ dbx.DBTX, c *models.Card) (bool, error) {
		c.Likes++
		c.IsSynced = false
		return true, nil
	})
}

func (s *CardService) RecordDownload(ctx context.Context, cardID string) (*models.Card, error) {
	return s.mutate(ctx, cardID, false, func(_ context.Context, _ dbx.DBTX, c *models.Card) (bool, error) {
		c.Downloads++
		c.IsSynced = false
		return true, nil
	})
}

// mutate loads the card inside a transaction, lets fn change it and writes it
// back when fn reports a change. Deleted cards are only visible to fn when
// allowDeleted is set.
func (s *CardService) mutate(ctx context.Context, id string, allowDeleted bool,
	fn func(ctx context.Context, tx dbx.DBTX, c *models.Card) (bool, error)) (*models.Card, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.Card, error) {
		repo := s.repomanager.Cards(tx)
		c, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.IsDeleted && !allowDeleted {
			return nil, fmt.Errorf("card %s: %w", id, common.ErrNotFound)
		}

		changed, err := fn(ctx, tx, c)
		if err != nil {
			return nil, err
		}
		if !changed {
			return c, nil
		}

		c.UpdatedAt = s.timestamp()
		if err := repo.Update(ctx, c); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityCard, c.ID, c.IsSynced); err != nil {
			return nil, err
		}
		return c, nil
	})
}
