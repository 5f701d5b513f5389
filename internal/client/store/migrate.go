package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/studydeck/internal/client/migrations"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"github.com/pressly/goose/v3"
)

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// gooseUpTo is a seam for testing goose.UpToContext.
var gooseUpTo = func(ctx context.Context, db *sql.DB, dir string, version int64) error {
	return goose.UpToContext(ctx, db, dir, version)
}

func configureGoose(l logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(&gooseLogger{l: l})
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

func upTo(ctx context.Context, db *sql.DB, version int64, l logging.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := configureGoose(l); err != nil {
		return err
	}
	if err := gooseUpTo(ctx, db, ".", version); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func dbVersion(ctx context.Context, db *sql.DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := configureGoose(logging.Discard()); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// gooseLogger routes goose progress output into the application logger.
type gooseLogger struct {
	l logging.Logger
}

func (g *gooseLogger) Printf(format string, v ...any) {
	g.l.Debug(context.Background(), fmt.Sprintf(format, v...), "component", "migrations")
}

func (g *gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(context.Background(), fmt.Sprintf(format, v...), "component", "migrations")
}
