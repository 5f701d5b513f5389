package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

type UserService struct {
	base
}

func NewUserService(st *store.Store, m repomanager.RepositoryManager, opts ...Option) *UserService {
	return &UserService{base: newBase(st, m, opts)}
}

// UpsertCurrentUser merges data into the user with data.ID, or creates that
// user with defaults for every field data leaves unset.
func (s *UserService) UpsertCurrentUser(ctx context.Context, data models.UserPatch) (*models.User, error) {
	if data.ID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	if err := s.check(data); err != nil {
		return nil, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)
		now := s.timestamp()

		u, err := repo.GetByID(ctx, data.ID)
		switch {
		case errors.Is(err, common.ErrNotFound):
			u = &models.User{
				ID:        data.ID,
				Role:      models.DefaultRole,
				CreatedAt: now,
				UpdatedAt: now,
				IsSynced:  true,
			}
			data.Apply(u)
			if err := repo.Insert(ctx, u); err != nil {
				return nil, err
			}
			s.logger.Info(ctx, "user created", "id", u.ID)
		case err != nil:
			return nil, err
		default:
			if !data.Apply(u) {
				return u, nil
			}
			u.UpdatedAt = now
			if err := repo.Update(ctx, u); err != nil {
				return nil, err
			}
		}

		if err := s.markDirty(ctx, tx, models.EntityUser, u.ID, u.IsSynced); err != nil {
			return nil, err
		}
		return u, nil
	})
}

// UpsertCurrentUserFields decodes a JSON user payload and upserts it. Keys
// that are not user attributes are logged and ignored.
func (s *UserService) UpsertCurrentUserFields(ctx context.Context, data []byte) (*models.User, error) {
	patch, unknown, err := models.ParseUserPatch(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	s.warnUnknown(ctx, models.EntityUser, patch.ID, unknown)
	return s.UpsertCurrentUser(ctx, patch)
}

// First returns the earliest stored user, which the sync engine uses as the
// logged-in account.
func (s *UserService) First(ctx context.Context) (*models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(db).First(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(db).GetByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]models.User, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(db).GetAll(ctx)
}

// Update applies the set fields of patch to an existing user; patch.ID is
// ignored in favour of id.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch, markUnsynced bool) (*models.User, error) {
	if err := s.check(patch); err != nil {
		return nil, err
	}
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	return dbx.WithTxResult(ctx, db, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)
		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		changed := patch.Apply(u)
		if markUnsynced && u.IsSynced {
			u.IsSynced = false
			changed = true
		}
		if !changed {
			return u, nil
		}
		u.UpdatedAt = s.timestamp()

		if err := repo.Update(ctx, u); err != nil {
			return nil, err
		}
		if err := s.markDirty(ctx, tx, models.EntityUser, u.ID, u.IsSynced); err != nil {
			return nil, err
		}
		return u, nil
	})
}
