// Package store owns the single connection to the embedded SQLite database.
//
// A Store is created by the composition root and handed to every component
// that needs the database. The file is opened lazily on the first Acquire,
// migrated to the current schema, and the handle is reused until Release.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dmitrijs2005/studydeck/internal/client/migrations"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/filex"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryPath opens a private, non-persistent store.
const MemoryPath = ":memory:"

type Store struct {
	path   string
	target int64
	logger logging.Logger

	mu sync.Mutex
	db *sql.DB
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTargetVersion stops migrations at v instead of migrations.CurrentVersion.
func WithTargetVersion(v int64) Option {
	return func(s *Store) { s.target = v }
}

func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		target: migrations.CurrentVersion,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Acquire returns the open handle, opening and migrating the database first
// if needed. Concurrent callers wait for a single open. A failed open is not
// cached and is reported as *common.StoreOpenError. A file-backed store whose
// handle went bad is reopened; an in-memory one reports the failure instead.
func (s *Store) Acquire(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.PingContext(ctx)
		if err == nil {
			return s.db, nil
		}
		// Reopening an in-memory database would silently start over empty.
		if s.path == MemoryPath {
			return nil, s.openError(err, common.StoreOpenFailed)
		}
		_ = s.db.Close()
		s.db = nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	s.db = db
	return db, nil
}

// Release closes the handle for every holder. It is a no-op when nothing is open.
func (s *Store) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Version reports the schema version stamped in the database.
func (s *Store) Version(ctx context.Context) (int64, error) {
	db, err := s.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	return dbVersion(ctx, db)
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if s.path != MemoryPath {
		if _, err := filex.EnsureParentDir(s.path); err != nil {
			return nil, s.openError(err, common.StoreOpenFailed)
		}
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return nil, s.openError(err, common.StoreOpenFailed)
	}
	// SQLite runs one writer at a time; a single connection also keeps an
	// in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, s.openError(err, common.StoreOpenFailed)
	}

	db, err = s.migrate(ctx, db)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "store opened", "path", s.path, "version", s.target)
	return db, nil
}

func (s *Store) dsn() string {
	if s.path == MemoryPath {
		return MemoryPath
	}
	return "file:" + s.path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// migrate brings db up to s.target. For a file-backed store the file is
// snapshotted first and restored if any step fails, so the caller sees either
// the old version or the target version.
func (s *Store) migrate(ctx context.Context, db *sql.DB) (*sql.DB, error) {
	current, err := dbVersion(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, s.openError(err, common.StoreMigrationFail)
	}
	if current >= s.target {
		return db, nil
	}

	backup := ""
	if s.path != MemoryPath {
		backup = s.path + ".premigrate"
		_ = os.Remove(backup)
		if _, err := db.ExecContext(ctx, "VACUUM INTO '"+strings.ReplaceAll(backup, "'", "''")+"'"); err != nil {
			_ = db.Close()
			return nil, s.openError(fmt.Errorf("snapshot before migration: %w", err), common.StoreMigrationFail)
		}
	}

	s.logger.Info(ctx, "migrating store", "path", s.path, "from", current, "to", s.target)

	if err := upTo(ctx, db, s.target, s.logger); err != nil {
		_ = db.Close()
		if backup != "" {
			if rerr := restore(backup, s.path); rerr != nil {
				err = errors.Join(err, rerr)
			}
		}
		return nil, s.openError(err, common.StoreMigrationFail)
	}

	if backup != "" {
		_ = os.Remove(backup)
	}
	return db, nil
}

func restore(backup, path string) error {
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("restore snapshot: %w", err)
		}
	}
	if err := os.Rename(backup, path); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// openError wraps err, promoting the kind when SQLite reports a corrupt or
// locked file.
func (s *Store) openError(err error, kind common.StoreOpenErrorKind) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
			kind = common.StoreCorrupt
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			kind = common.StoreBusy
		}
	}
	return &common.StoreOpenError{Path: s.path, Kind: kind, Err: err}
}
