package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/studydeck/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Syncer runs one sync cycle.
type Syncer interface {
	Sync(ctx context.Context) (Report, error)
}

const cycleKey = "sync"

// Scheduler serializes sync cycles: concurrent triggers share the cycle that
// is already running instead of starting another one. The cycle runs under a
// context owned by the scheduler and is cancelled only once every waiting
// caller has gone.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   logging.Logger
	group    singleflight.Group

	mu       sync.Mutex
	waiters  int
	cycleCtx context.Context
	cancel   context.CancelFunc
}

func NewScheduler(s Syncer, interval time.Duration, logger logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{syncer: s, interval: interval, logger: logger}
}

// Trigger runs a cycle, or waits for the one in flight and returns its result.
// A caller whose ctx ends stops waiting without affecting the other callers.
func (s *Scheduler) Trigger(ctx context.Context) (Report, error) {
	cycleCtx := s.join(ctx)
	defer s.leave()

	ch := s.group.DoChan(cycleKey, func() (any, error) {
		return s.syncer.Sync(cycleCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.Debug(ctx, "joined running sync cycle")
		}
		r, _ := res.Val.(Report)
		return r, res.Err
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

func (s *Scheduler) join(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		s.cycleCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	s.waiters++
	return s.cycleCtx
}

// leave drops a waiter and cancels the cycle when none remain.
func (s *Scheduler) leave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.waiters--
	if s.waiters == 0 {
		s.cancel()
		s.cycleCtx, s.cancel = nil, nil
	}
}

// Run triggers a cycle at once and then every interval until ctx is done.
// With a non-positive interval it runs a single cycle and returns its error.
// Cycle errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		_, err := s.Trigger(ctx)
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.Trigger(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error(ctx, "sync cycle failed", "err", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sync scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
