package lists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

const columns = `id, user_id, title, description, created_at, updated_at, is_synced, is_deleted, remote_created`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(l *models.List) []any {
	return []any{
		l.ID, l.UserID, l.Title, dbx.NullString(l.Description),
		dbx.FormatTime(l.CreatedAt), dbx.FormatTime(l.UpdatedAt),
		dbx.BoolToInt(l.IsSynced), dbx.BoolToInt(l.IsDeleted), dbx.BoolToInt(l.RemoteCreated),
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, l *models.List) error {
	query := `INSERT INTO lists (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args(l)...); err != nil {
		return fmt.Errorf("failed to insert list: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, l *models.List) error {
	query := `UPDATE lists SET user_id = ?, title = ?, description = ?, created_at = ?, updated_at = ?,
		is_synced = ?, is_deleted = ?, remote_created = ? WHERE id = ?`
	a := args(l)
	res, err := r.db.ExecContext(ctx, query, append(a[1:], l.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("update list %s: %w", l.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, l *models.List) error {
	query := `INSERT INTO lists (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
			title = excluded.title,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			is_synced = excluded.is_synced,
			is_deleted = excluded.is_deleted,
			remote_created = excluded.remote_created`
	if _, err := r.db.ExecContext(ctx, query, args(l)...); err != nil {
		return fmt.Errorf("failed to upsert list: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.List, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM lists WHERE id = ?`, id)
	l, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string, includeDeleted bool) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lists WHERE id = ? AND (? = 1 OR is_deleted = 0)`,
		id, dbx.BoolToInt(includeDeleted)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check list: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context, includeDeleted bool) ([]models.List, error) {
	return r.query(ctx, `SELECT `+columns+` FROM lists WHERE (? = 1 OR is_deleted = 0)`, dbx.BoolToInt(includeDeleted))
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID string, includeDeleted bool) ([]models.List, error) {
	return r.query(ctx, `SELECT `+columns+` FROM lists WHERE user_id = ? AND (? = 1 OR is_deleted = 0)`,
		userID, dbx.BoolToInt(includeDeleted))
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE lists SET is_synced = 1, remote_created = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark list synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, a ...any) ([]models.List, error) {
	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("failed to select lists: %w", err)
	}
	defer rows.Close()

	result := []models.List{}
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.List, error) {
	var (
		l                   models.List
		description         sql.NullString
		created, updated    string
		synced, deleted, rc int
	)
	if err := s.Scan(&l.ID, &l.UserID, &l.Title, &description, &created, &updated, &synced, &deleted, &rc); err != nil {
		return nil, err
	}
	var err error
	if l.CreatedAt, err = dbx.ParseTime(created); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = dbx.ParseTime(updated); err != nil {
		return nil, err
	}
	l.Description = dbx.StringPtr(description)
	l.IsSynced = synced == 1
	l.IsDeleted = deleted == 1
	l.RemoteCreated = rc == 1
	return &l, nil
}
