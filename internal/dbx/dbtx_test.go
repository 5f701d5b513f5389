package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS lists (id TEXT PRIMARY KEY, title TEXT NOT NULL);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM lists`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO lists(id, title) VALUES ('l1', 'Math')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO lists(id, title) VALUES ('l1', 'Math')`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO lists(id, title) VALUES ('l1', 'Math')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestWithTxResult(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	title, err := WithTxResult(ctx, db, func(ctx context.Context, tx DBTX) (string, error) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO lists(id, title) VALUES ('l1', 'Math')`); err != nil {
			return "", err
		}
		var got string
		err := tx.QueryRowContext(ctx, `SELECT title FROM lists WHERE id = 'l1'`).Scan(&got)
		return got, err
	})
	require.NoError(t, err)
	require.Equal(t, "Math", title)

	title, err = WithTxResult(ctx, db, func(ctx context.Context, tx DBTX) (string, error) {
		if _, err := tx.ExecContext(ctx, `INSERT INTO lists(id, title) VALUES ('l2', 'Bio')`); err != nil {
			return "", err
		}
		return "Bio", errors.New("boom")
	})
	require.Error(t, err)
	require.Empty(t, title)
	require.Equal(t, 1, countRows(t, db))
}

func TestBoolToInt(t *testing.T) {
	require.Equal(t, 1, BoolToInt(true))
	require.Equal(t, 0, BoolToInt(false))
}
