package models

import "time"

// EntityKind names a synchronized record type. The order of SyncOrder is the
// order entities are reconciled in: cards reference lists.
type EntityKind string

const (
	EntityList EntityKind = "list"
	EntityCard EntityKind = "card"
	EntityUser EntityKind = "user"
)

var SyncOrder = []EntityKind{EntityList, EntityCard, EntityUser}

// OutboxItem is a durable marker that a record has local changes the backend
// has not acknowledged yet.
type OutboxItem struct {
	ID            int64
	Entity        EntityKind
	EntityID      string
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}
