package repomanager

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/cards"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/lists"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/users"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories_ReturnSQLiteRepos(t *testing.T) {
	db := newDB(t)
	m := NewSQLiteRepositoryManager()

	require.IsType(t, &users.SQLiteRepository{}, m.Users(db))
	require.IsType(t, &lists.SQLiteRepository{}, m.Lists(db))
	require.IsType(t, &cards.SQLiteRepository{}, m.Cards(db))
	require.IsType(t, &outbox.SQLiteRepository{}, m.Outbox(db))
}

func TestFactories_AcceptTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	m := NewSQLiteRepositoryManager()
	require.NotNil(t, m.Lists(tx))
	require.NotNil(t, m.Outbox(tx))

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
