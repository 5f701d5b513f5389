// Package repomanager vends repositories bound to a database handle or an
// open transaction, so services can compose several repositories in one
// dbx.WithTx call.
package repomanager

import (
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/cards"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/lists"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/outbox"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/users"
	"github.com/dmitrijs2005/studydeck/internal/dbx"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Lists(db dbx.DBTX) lists.Repository
	Cards(db dbx.DBTX) cards.Repository
	Outbox(db dbx.DBTX) outbox.Repository
}
