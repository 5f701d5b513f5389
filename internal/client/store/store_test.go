package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/studydeck/internal/client/migrations"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "studydeck.db")
}

func columnExists(t *testing.T, db *sql.DB, table, column string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&n))
	return n == 1
}

func TestAcquire_ReusesHandle(t *testing.T) {
	s := New(tempPath(t))
	t.Cleanup(func() { _ = s.Release() })
	ctx := context.Background()

	db1, err := s.Acquire(ctx)
	require.NoError(t, err)
	db2, err := s.Acquire(ctx)
	require.NoError(t, err)
	require.Same(t, db1, db2)

	v, err := s.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, migrations.CurrentVersion, v)
}

func TestAcquire_ConcurrentCallersShareOneOpen(t *testing.T) {
	s := New(tempPath(t))
	t.Cleanup(func() { _ = s.Release() })

	const n = 8
	handles := make([]*sql.DB, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = s.Acquire(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Same(t, handles[0], handles[i])
	}
}

func TestRelease_IdempotentAndReopenKeepsData(t *testing.T) {
	path := tempPath(t)
	s := New(path)
	ctx := context.Background()

	require.NoError(t, s.Release(), "release before open is a no-op")

	db, err := s.Acquire(ctx)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (id, created_at, updated_at) VALUES ('u1', 'now', 'now')`)
	require.NoError(t, err)

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())

	db, err = s.Acquire(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Release() })

	var id string
	require.NoError(t, db.QueryRow(`SELECT id FROM users`).Scan(&id))
	require.Equal(t, "u1", id)
}

func TestAcquire_ReopensAfterExternalClose(t *testing.T) {
	s := New(tempPath(t))
	t.Cleanup(func() { _ = s.Release() })

	db, err := s.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := s.Acquire(context.Background())
	require.NoError(t, err)
	require.NotSame(t, db, db2)
	require.NoError(t, db2.Ping())
}

func TestAcquire_MemoryStoreIsNotSilentlyReplaced(t *testing.T) {
	s := New(MemoryPath)
	t.Cleanup(func() { _ = s.Release() })

	db, err := s.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = s.Acquire(context.Background())
	var soe *common.StoreOpenError
	require.ErrorAs(t, err, &soe)
	require.Equal(t, MemoryPath, soe.Path)
}

func TestMemoryStore(t *testing.T) {
	s := New(MemoryPath)
	t.Cleanup(func() { _ = s.Release() })

	db, err := s.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, columnExists(t, db, "cards", "content"))
	require.True(t, columnExists(t, db, "outbox", "next_attempt_at"))
}

func TestAcquire_MigratesOldStoreWithDefaults(t *testing.T) {
	path := tempPath(t)
	ctx := context.Background()

	old := New(path, WithTargetVersion(1))
	db, err := old.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, columnExists(t, db, "cards", "content"))

	_, err = db.Exec(`
INSERT INTO users (id, name, created_at, updated_at) VALUES ('u1', 'Ann', 't0', 't0');
INSERT INTO lists (id, user_id, title, created_at, updated_at) VALUES ('l1', 'u1', 'Math', 't0', 't0');
INSERT INTO cards (id, list_id, user_id, title, priority, likes, image_url, created_at, updated_at, is_synced)
  VALUES ('c1', 'l1', 'u1', 'Algebra', 'high', 7, '["a.png"]', 't0', 't1', 0);
`)
	require.NoError(t, err)
	require.NoError(t, old.Release())

	s := New(path)
	t.Cleanup(func() { _ = s.Release() })
	db, err = s.Acquire(ctx)
	require.NoError(t, err)

	v, err := s.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, migrations.CurrentVersion, v)

	var (
		title, priority, images, pdfs, content string
		likes, downloads, remoteCreated        int
	)
	err = db.QueryRow(`SELECT title, priority, image_url, likes, pdfs, downloads, content, remote_created FROM cards WHERE id = 'c1'`).
		Scan(&title, &priority, &images, &likes, &pdfs, &downloads, &content, &remoteCreated)
	require.NoError(t, err)

	assert.Equal(t, "Algebra", title)
	assert.Equal(t, "high", priority)
	assert.Equal(t, `["a.png"]`, images)
	assert.Equal(t, 7, likes)
	assert.Equal(t, "[]", pdfs)
	assert.Equal(t, 0, downloads)
	assert.Equal(t, "", content)
	assert.Equal(t, 1, remoteCreated)

	var entity, entityID string
	require.NoError(t, db.QueryRow(`SELECT entity, entity_id FROM outbox`).Scan(&entity, &entityID))
	assert.Equal(t, "card", entity)
	assert.Equal(t, "c1", entityID)

	_, err = os.Stat(path + ".premigrate")
	require.True(t, errors.Is(err, os.ErrNotExist), "snapshot must be removed after success")
}

func TestAcquire_FailedMigrationRestoresSnapshot(t *testing.T) {
	path := tempPath(t)
	ctx := context.Background()

	old := New(path, WithTargetVersion(1))
	_, err := old.Acquire(ctx)
	require.NoError(t, err)
	require.NoError(t, old.Release())

	orig := gooseUpTo
	gooseUpTo = func(ctx context.Context, db *sql.DB, dir string, version int64) error {
		if err := orig(ctx, db, dir, 2); err != nil {
			return err
		}
		return errors.New("step 3 exploded")
	}
	t.Cleanup(func() { gooseUpTo = orig })

	s := New(path)
	_, err = s.Acquire(ctx)
	require.Error(t, err)

	var soe *common.StoreOpenError
	require.ErrorAs(t, err, &soe)
	require.Equal(t, common.StoreMigrationFail, soe.Kind)
	require.False(t, soe.Retryable())
	require.Contains(t, err.Error(), "step 3 exploded")

	gooseUpTo = orig

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer raw.Close()
	require.False(t, columnExists(t, raw, "cards", "content"), "step 2 must be rolled back with the snapshot")
	require.True(t, columnExists(t, raw, "cards", "title"))

	_, err = os.Stat(path + ".premigrate")
	require.True(t, errors.Is(err, os.ErrNotExist))

	// A later open with working migrations succeeds.
	s2 := New(path)
	t.Cleanup(func() { _ = s2.Release() })
	v, err := s2.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, migrations.CurrentVersion, v)
}

func TestAcquire_NotADatabase(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("this is definitely not an sqlite file, just some text padding it out"), 0o600))

	s := New(path)
	_, err := s.Acquire(context.Background())
	require.Error(t, err)

	var soe *common.StoreOpenError
	require.ErrorAs(t, err, &soe)
	require.Equal(t, path, soe.Path)
	require.Contains(t, []common.StoreOpenErrorKind{common.StoreCorrupt, common.StoreOpenFailed, common.StoreMigrationFail}, soe.Kind)
	require.False(t, soe.Retryable())

	require.NoError(t, s.Release(), "failed open must not cache a handle")
}

func TestAcquire_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "studydeck.db")
	s := New(path)
	t.Cleanup(func() { _ = s.Release() })

	_, err := s.Acquire(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
