package cards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

const columns = `id, list_id, user_id, title, priority, is_published, image_url, pdfs, likes, comments,
	downloads, content, created_at, updated_at, is_synced, is_deleted, remote_created`

const placeholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(c *models.Card) ([]any, error) {
	c.Normalize()
	images, err := json.Marshal(c.ImageURLs)
	if err != nil {
		return nil, fmt.Errorf("encode image urls: %w", err)
	}
	pdfs, err := json.Marshal(c.Pdfs)
	if err != nil {
		return nil, fmt.Errorf("encode pdfs: %w", err)
	}
	comments, err := json.Marshal(c.Comments)
	if err != nil {
		return nil, fmt.Errorf("encode comments: %w", err)
	}
	return []any{
		c.ID, c.ListID, c.UserID, c.Title, c.Priority, dbx.BoolToInt(c.IsPublished),
		string(images), string(pdfs), c.Likes, string(comments), c.Downloads, c.Content,
		dbx.FormatTime(c.CreatedAt), dbx.FormatTime(c.UpdatedAt),
		dbx.BoolToInt(c.IsSynced), dbx.BoolToInt(c.IsDeleted), dbx.BoolToInt(c.RemoteCreated),
	}, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.Card) error {
	a, err := args(c)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO cards (`+columns+`) VALUES (`+placeholders+`)`, a...); err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Card) error {
	a, err := args(c)
	if err != nil {
		return err
	}
	query := `UPDATE cards SET list_id = ?, user_id = ?, title = ?, priority = ?, is_published = ?,
		image_url = ?, pdfs = ?, likes = ?, comments = ?, downloads = ?, content = ?,
		created_at = ?, updated_at = ?, is_synced = ?, is_deleted = ?, remote_created = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, append(a[1:], c.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("update card %s: %w", c.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Card) error {
	a, err := args(c)
	if err != nil {
		return err
	}
	query := `INSERT INTO cards (` + columns + `) VALUES (` + placeholders + `)
		ON CONFLICT(id) DO UPDATE SET list_id = excluded.list_id,
			user_id = excluded.user_id,
			title = excluded.title,
			priority = excluded.priority,
			is_published = excluded.is_published,
			image_url = excluded.image_url,
			pdfs = excluded.pdfs,
			likes = excluded.likes,
			comments = excluded.comments,
			downloads = excluded.downloads,
			content = excluded.content,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			is_synced = excluded.is_synced,
			is_deleted = excluded.is_deleted,
			remote_created = excluded.remote_created`
	if _, err := r.db.ExecContext(ctx, query, a...); err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	c, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM cards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string, includeDeleted bool) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cards WHERE id = ? AND (? = 1 OR is_deleted = 0)`,
		id, dbx.BoolToInt(includeDeleted)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check card: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, includeDeleted bool) ([]models.Card, error) {
	return r.query(ctx, `SELECT `+columns+` FROM cards WHERE (? = 1 OR is_deleted = 0)`,
		dbx.BoolToInt(includeDeleted))
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID string, includeDeleted bool) ([]models.Card, error) {
	return r.query(ctx, `SELECT `+columns+` FROM cards WHERE user_id = ? AND (? = 1 OR is_deleted = 0)`,
		userID, dbx.BoolToInt(includeDeleted))
}

func (r *SQLiteRepository) GetByListID(ctx context.Context, listID string, includeDeleted bool) ([]models.Card, error) {
	return r.query(ctx, `SELECT `+columns+` FROM cards WHERE list_id = ? AND (? = 1 OR is_deleted = 0)`,
		listID, dbx.BoolToInt(includeDeleted))
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE cards SET is_synced = 1, remote_created = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark card synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, a ...any) ([]models.Card, error) {
	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("failed to select cards: %w", err)
	}
	defer rows.Close()

	result := []models.Card{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Card, error) {
	var (
		c                          models.Card
		images, pdfs, comments     string
		created, updated           string
		published, synced, deleted int
		rc                         int
	)
	err := s.Scan(&c.ID, &c.ListID, &c.UserID, &c.Title, &c.Priority, &published,
		&images, &pdfs, &c.Likes, &comments, &c.Downloads, &c.Content,
		&created, &updated, &synced, &deleted, &rc)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(images), &c.ImageURLs); err != nil {
		return nil, fmt.Errorf("decode image urls of card %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(pdfs), &c.Pdfs); err != nil {
		return nil, fmt.Errorf("decode pdfs of card %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(comments), &c.Comments); err != nil {
		return nil, fmt.Errorf("decode comments of card %s: %w", c.ID, err)
	}
	if c.CreatedAt, err = dbx.ParseTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = dbx.ParseTime(updated); err != nil {
		return nil, err
	}
	c.IsPublished = published == 1
	c.IsSynced = synced == 1
	c.IsDeleted = deleted == 1
	c.RemoteCreated = rc == 1
	c.Normalize()
	return &c, nil
}
