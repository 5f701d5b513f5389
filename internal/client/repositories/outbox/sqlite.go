package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

const columns = `id, entity, entity_id, attempts, next_attempt_at, last_error, created_at`

var tables = map[models.EntityKind]string{
	models.EntityList: "lists",
	models.EntityCard: "cards",
	models.EntityUser: "users",
}

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, entity models.EntityKind, id string, now time.Time) error {
	query := `INSERT INTO outbox (entity, entity_id, next_attempt_at, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(entity, entity_id) DO UPDATE SET next_attempt_at = excluded.next_attempt_at`
	ts := dbx.FormatTime(now)
	if _, err := r.db.ExecContext(ctx, query, string(entity), id, ts, ts); err != nil {
		return fmt.Errorf("failed to enqueue %s %s: %w", entity, id, err)
	}
	return nil
}

func (r *SQLiteRepository) EnqueueUnsynced(ctx context.Context, entity models.EntityKind, now time.Time) (int64, error) {
	table, ok := tables[entity]
	if !ok {
		return 0, fmt.Errorf("unknown entity %q", entity)
	}
	query := `INSERT OR IGNORE INTO outbox (entity, entity_id, next_attempt_at, created_at)
		SELECT ?, id, ?, ? FROM ` + table + ` WHERE is_synced = 0`
	ts := dbx.FormatTime(now)
	res, err := r.db.ExecContext(ctx, query, string(entity), ts, ts)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue unsynced %s records: %w", entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Due(ctx context.Context, entity models.EntityKind, now time.Time) ([]models.OutboxItem, error) {
	return r.query(ctx, `SELECT `+columns+` FROM outbox WHERE entity = ? AND next_attempt_at <= ? ORDER BY id`,
		string(entity), dbx.FormatTime(now))
}

func (r *SQLiteRepository) Remove(ctx context.Context, entity models.EntityKind, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE entity = ? AND entity_id = ?`, string(entity), id); err != nil {
		return fmt.Errorf("failed to remove outbox item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, entity models.EntityKind, id string, next time.Time, reason string) error {
	query := `UPDATE outbox SET attempts = attempts + 1, next_attempt_at = ?, last_error = ?
		WHERE entity = ? AND entity_id = ?`
	if _, err := r.db.ExecContext(ctx, query, dbx.FormatTime(next), reason, string(entity), id); err != nil {
		return fmt.Errorf("failed to mark outbox item failed: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.OutboxItem, error) {
	return r.query(ctx, `SELECT `+columns+` FROM outbox ORDER BY id`)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, a ...any) ([]models.OutboxItem, error) {
	rows, err := r.db.QueryContext(ctx, query, a...)
	if err != nil {
		return nil, fmt.Errorf("failed to select outbox: %w", err)
	}
	defer rows.Close()

	result := []models.OutboxItem{}
	for rows.Next() {
		var (
			item          models.OutboxItem
			entity        string
			next, created string
		)
		if err := rows.Scan(&item.ID, &entity, &item.EntityID, &item.Attempts, &next, &item.LastError, &created); err != nil {
			return nil, err
		}
		item.Entity = models.EntityKind(entity)
		// Markers backfilled by the schema upgrade carry an empty time and are due at once.
		if next != "" {
			if item.NextAttemptAt, err = dbx.ParseTime(next); err != nil {
				return nil, err
			}
		}
		if item.CreatedAt, err = dbx.ParseTime(created); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
