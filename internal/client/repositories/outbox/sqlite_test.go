package outbox

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	s := store.New(store.MemoryPath)
	t.Cleanup(func() { _ = s.Release() })
	db, err := s.Acquire(context.Background())
	require.NoError(t, err)
	return db
}

var t0 = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func TestEnqueue_OneMarkerPerRecord(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, models.EntityCard, "c1", t0))
	require.NoError(t, r.MarkFailed(ctx, models.EntityCard, "c1", t0.Add(time.Hour), "boom"))
	require.NoError(t, r.Enqueue(ctx, models.EntityCard, "c1", t0.Add(time.Minute)))
	require.NoError(t, r.Enqueue(ctx, models.EntityList, "c1", t0))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	card := all[0]
	assert.Equal(t, models.EntityCard, card.Entity)
	assert.Equal(t, "c1", card.EntityID)
	assert.Equal(t, 1, card.Attempts)
	assert.Equal(t, "boom", card.LastError)
	assert.True(t, card.NextAttemptAt.Equal(t0.Add(time.Minute)), "re-enqueue makes the marker due again")
	assert.True(t, card.CreatedAt.Equal(t0))
}

func TestDue_FiltersByEntityAndTime(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Enqueue(ctx, models.EntityCard, "c1", t0))
	require.NoError(t, r.Enqueue(ctx, models.EntityCard, "c2", t0))
	require.NoError(t, r.Enqueue(ctx, models.EntityList, "l1", t0))
	require.NoError(t, r.MarkFailed(ctx, models.EntityCard, "c2", t0.Add(10*time.Minute), "timeout"))

	due, err := r.Due(ctx, models.EntityCard, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "c1", due[0].EntityID)

	due, err = r.Due(ctx, models.EntityCard, t0.Add(10*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "c1", due[0].EntityID)
	assert.Equal(t, "c2", due[1].EntityID)

	require.NoError(t, r.Remove(ctx, models.EntityCard, "c1"))
	due, err = r.Due(ctx, models.EntityCard, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "c2", due[0].EntityID)
}

func TestEnqueueUnsynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`
INSERT INTO lists (id, user_id, title, created_at, updated_at, is_synced) VALUES
  ('l1', 'u1', 'a', '2026-04-01T11:00:00.000000000Z', '2026-04-01T11:00:00.000000000Z', 0),
  ('l2', 'u1', 'b', '2026-04-01T11:00:00.000000000Z', '2026-04-01T11:00:00.000000000Z', 1),
  ('l3', 'u1', 'c', '2026-04-01T11:00:00.000000000Z', '2026-04-01T11:00:00.000000000Z', 0);
`)
	require.NoError(t, err)
	require.NoError(t, r.Enqueue(ctx, models.EntityList, "l3", t0))

	n, err := r.EnqueueUnsynced(ctx, models.EntityList, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.EnqueueUnsynced(ctx, models.EntityList, t0)
	require.NoError(t, err)
	assert.Zero(t, n)

	due, err := r.Due(ctx, models.EntityList, t0)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "l3", due[0].EntityID)
	assert.Equal(t, "l1", due[1].EntityID)

	_, err = r.EnqueueUnsynced(ctx, models.EntityKind("deck"), t0)
	require.ErrorContains(t, err, `unknown entity "deck"`)
}

func TestDue_BackfilledMarkerIsDue(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO outbox (entity, entity_id, next_attempt_at, created_at) VALUES ('user', 'u1', '', ?)`,
		"2026-01-01T00:00:00.000000000Z")
	require.NoError(t, err)

	due, err := r.Due(context.Background(), models.EntityUser, t0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.True(t, due[0].NextAttemptAt.IsZero())
}

func TestDBErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO outbox`).WillReturnError(errors.New("locked"))
	require.ErrorContains(t, r.Enqueue(ctx, models.EntityCard, "c1", t0), "failed to enqueue card c1: locked")

	mock.ExpectExec(`DELETE FROM outbox`).WillReturnError(errors.New("locked"))
	require.ErrorContains(t, r.Remove(ctx, models.EntityCard, "c1"), "failed to remove outbox item")

	mock.ExpectQuery(`SELECT .* FROM outbox`).WillReturnError(errors.New("db down"))
	_, err = r.Due(ctx, models.EntityCard, t0)
	require.ErrorContains(t, err, "failed to select outbox: db down")

	require.NoError(t, mock.ExpectationsWereMet())
}
