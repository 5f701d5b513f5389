// Package lists persists List records in the local store.
//
// Reads that enumerate lists take an includeDeleted switch; soft-deleted rows
// stay in the table until the backend has acknowledged the deletion.
package lists

import (
	"context"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
)

type Repository interface {
	// Insert stores a new list. The id must not exist yet.
	Insert(ctx context.Context, l *models.List) error

	// Update overwrites every column of an existing list.
	Update(ctx context.Context, l *models.List) error

	// Upsert inserts the list or overwrites the row with the same id.
	Upsert(ctx context.Context, l *models.List) error

	// GetByID returns the list whether or not it is deleted, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.List, error)

	// Exists reports whether a list with id exists; deleted lists only count
	// when includeDeleted is set.
	Exists(ctx context.Context, id string, includeDeleted bool) (bool, error)

	GetAll(ctx context.Context, includeDeleted bool) ([]models.List, error)
	GetByUserID(ctx context.Context, userID string, includeDeleted bool) ([]models.List, error)

	// MarkSynced records the backend's acknowledgement of the list.
	MarkSynced(ctx context.Context, id string) error
}
