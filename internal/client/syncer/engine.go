// Package syncer reconciles the local store with the backend.
//
// A cycle walks lists, cards and users in that order. For each kind it first
// pushes the due outbox markers, then pulls the remote collection (users are
// push only). A failed push leaves the record unsynced and postpones its
// marker with capped exponential backoff; a failed pull abandons only that
// kind's pull. Engine is not safe for concurrent cycles; Scheduler serializes
// callers.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/client/auth"
	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/client/remote"
	"github.com/dmitrijs2005/studydeck/internal/client/repositories/repomanager"
	"github.com/dmitrijs2005/studydeck/internal/client/store"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/dmitrijs2005/studydeck/internal/logging"
	"github.com/dmitrijs2005/studydeck/internal/metrics"
	"github.com/sethvargo/go-retry"
)

const (
	DefaultBackoffBase = 5 * time.Second
	DefaultBackoffMax  = 10 * time.Minute
)

// TokenSource turns the local user id into a bearer credential.
type TokenSource interface {
	Token(userID string) (string, error)
}

type Engine struct {
	store       *store.Store
	repomanager repomanager.RepositoryManager
	api         remote.API
	tokens      TokenSource
	logger      logging.Logger
	metrics     *metrics.Sync
	now         func() time.Time
	backoffBase time.Duration
	backoffMax  time.Duration
}

type Option func(*Engine)

func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithMetrics(m *metrics.Sync) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithTokenSource(ts TokenSource) Option {
	return func(e *Engine) {
		if ts != nil {
			e.tokens = ts
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBackoff sets the retry delay after the first failed push and its cap.
// A zero base retries failed pushes on the very next cycle.
func WithBackoff(base, limit time.Duration) Option {
	return func(e *Engine) {
		e.backoffBase = base
		if limit > 0 {
			e.backoffMax = limit
		}
	}
}

func NewEngine(st *store.Store, m repomanager.RepositoryManager, api remote.API, opts ...Option) *Engine {
	e := &Engine{
		store:       st,
		repomanager: m,
		api:         api,
		tokens:      auth.NewTokenSource("", 0),
		logger:      logging.Discard(),
		now:         time.Now,
		backoffBase: DefaultBackoffBase,
		backoffMax:  DefaultBackoffMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Sync runs one cycle. It returns the first error that was not absorbed by
// per-record retry, after attempting all remaining work.
func (e *Engine) Sync(ctx context.Context) (report Report, err error) {
	start := e.now()
	report = newReport(start)
	defer func() {
		report.Duration = e.now().Sub(start)
		e.metrics.ObserveCycle(report.Duration)
	}()

	db, err := e.store.Acquire(ctx)
	if err != nil {
		return report, err
	}

	user, err := e.repomanager.Users(db).First(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return report, common.ErrUnauthenticated
	}
	if err != nil {
		return report, err
	}
	token, err := e.tokens.Token(user.ID)
	if err != nil {
		return report, fmt.Errorf("derive credential: %w", err)
	}
	ctx = remote.WithAccessToken(ctx, token)

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, kind := range models.SyncOrder {
		er := report.Entities[kind]
		keep(e.push(ctx, db, kind, er))
		if kind != models.EntityUser {
			if err := e.pull(ctx, db, kind, er); err != nil {
				er.PullErr = err
				keep(err)
			}
		}
		if err := ctx.Err(); err != nil {
			keep(err)
			break
		}
	}

	e.logger.Info(ctx, "sync finished",
		"pushed", report.Entity(models.EntityList).Pushed+report.Entity(models.EntityCard).Pushed+report.Entity(models.EntityUser).Pushed,
		"failed", report.Failed(),
		"err", firstErr)
	return report, firstErr
}

// Pending lists the outbox markers that are waiting for a push.
func (e *Engine) Pending(ctx context.Context) ([]models.OutboxItem, error) {
	db, err := e.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return e.repomanager.Outbox(db).GetAll(ctx)
}

// delay returns how long to wait after a push that failed attempts times before.
func (e *Engine) delay(attempts int) time.Duration {
	if e.backoffBase <= 0 {
		return 0
	}
	if attempts > 62 {
		attempts = 62
	}
	b := retry.WithCappedDuration(e.backoffMax, retry.NewExponential(e.backoffBase))
	var d time.Duration
	for i := 0; i <= attempts; i++ {
		d, _ = b.Next()
	}
	return d
}
