package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

const columns = `id, user_code, name, email, date_of_birth, role, plan, org_points, profile_image,
	login_attempts, last_login, created_at, updated_at, is_synced`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func args(u *models.User) []any {
	return []any{
		u.ID, u.UserCode, u.Name, u.Email, u.DateOfBirth, u.Role, dbx.NullString(u.Plan), u.OrgPoints,
		dbx.NullString(u.ProfileImage), u.LoginAttempts, dbx.NullTime(u.LastLogin),
		dbx.FormatTime(u.CreatedAt), dbx.FormatTime(u.UpdatedAt), dbx.BoolToInt(u.IsSynced),
	}
}

func (r *SQLiteRepository) Insert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + columns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args(u)...); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, u *models.User) error {
	query := `UPDATE users SET user_code = ?, name = ?, email = ?, date_of_birth = ?, role = ?, plan = ?,
		org_points = ?, profile_image = ?, login_attempts = ?, last_login = ?, created_at = ?,
		updated_at = ?, is_synced = ? WHERE id = ?`
	a := args(u)
	res, err := r.db.ExecContext(ctx, query, append(a[1:], u.ID)...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("update user %s: %w", u.ID, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) First(ctx context.Context) (*models.User, error) {
	u, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users ORDER BY created_at, rowid LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no local user: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM users ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	result := []models.User{}
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE users SET is_synced = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark user synced: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.User, error) {
	var (
		u                     models.User
		plan, image, lastSeen sql.NullString
		created, updated      string
		synced                int
	)
	err := s.Scan(&u.ID, &u.UserCode, &u.Name, &u.Email, &u.DateOfBirth, &u.Role, &plan, &u.OrgPoints,
		&image, &u.LoginAttempts, &lastSeen, &created, &updated, &synced)
	if err != nil {
		return nil, err
	}
	if u.LastLogin, err = dbx.TimePtr(lastSeen); err != nil {
		return nil, err
	}
	if u.CreatedAt, err = dbx.ParseTime(created); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = dbx.ParseTime(updated); err != nil {
		return nil, err
	}
	u.Plan = dbx.StringPtr(plan)
	u.ProfileImage = dbx.StringPtr(image)
	u.IsSynced = synced == 1
	return &u, nil
}
