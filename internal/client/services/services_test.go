package services

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClock advances one second on every reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	store *store.Store
	users *UserService
	lists *ListService
	cards *CardService
	logs  *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(store.MemoryPath)
	t.Cleanup(func() { _ = st.Release() })

	logs := &bytes.Buffer{}
	clock := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	seq := 0
	var seqMu sync.Mutex
	opts := []Option{
		WithLogger(logging.New(logging.Options{Level: "debug", Output: logs})),
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	}
	m := repomanager.NewSQLiteRepositoryManager()

	return &fixture{
		store: st,
		users: NewUserService(st, m, opts...),
		lists: NewListService(st, m, opts...),
		cards: NewCardService(st, m, opts...),
		logs:  logs,
	}
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	name := "User " + id
	u, err := f.users.UpsertCurrentUser(context.Background(), models.UserPatch{ID: id, Name: &name})
	require.NoError(t, err)
	return u
}

func (f *fixture) list(t *testing.T, userID, title string) *models.List {
	t.Helper()
	l, err := f.lists.Create(context.Background(), models.NewList{UserID: userID, Title: title})
	require.NoError(t, err)
	return l
}

func (f *fixture) card(t *testing.T, listID, userID, title string, offline bool) *models.Card {
	t.Helper()
	c, err := f.cards.Create(context.Background(), models.NewCard{ListID: listID, UserID: userID, Title: title, Offline: offline})
	require.NoError(t, err)
	return c
}

func (f *fixture) outbox(t *testing.T) []models.OutboxItem {
	t.Helper()
	db, err := f.store.Acquire(context.Background())
	require.NoError(t, err)
	items, err := repomanager.NewSQLiteRepositoryManager().Outbox(db).GetAll(context.Background())
	require.NoError(t, err)
	return items
}

func ptr[T any](v T) *T { return &v }
