package repomanager

import (
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/cards"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/lists"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/users"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() RepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Lists(db dbx.DBTX) lists.Repository {
	return lists.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Cards(db dbx.DBTX) cards.Repository {
	return cards.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Outbox(db dbx.DBTX) outbox.Repository {
	return outbox.NewSQLiteRepository(db)
}
