// Package cards persists Card records. Image URLs, attachments and comments
// are stored as JSON arrays in their own columns.
package cards

import (
	"context"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, c *models.Card) error
	Update(ctx context.Context, c *models.Card) error
	Upsert(ctx context.Context, c *models.Card) error

	// GetByID returns the card whether or not it is deleted, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Card, error)
	Exists(ctx context.Context, id string, includeDeleted bool) (bool, error)

	GetAll(ctx context.Context, includeDeleted bool) ([]models.Card, error)
	GetByUserID(ctx context.Context, userID string, includeDeleted bool) ([]models.Card, error)
	GetByListID(ctx context.Context, listID string, includeDeleted bool) ([]models.Card, error)

	MarkSynced(ctx context.Context, id string) error
}
