// Package users persists the locally known user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)

	// First returns the earliest stored user, or common.ErrNotFound when the
	// store has none.
	First(ctx context.Context) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	MarkSynced(ctx context.Context, id string) error
}
