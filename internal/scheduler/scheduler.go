// Package scheduler tears down queues once their time-to-live elapses.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/metrics"
)

// DefaultTTL is how long a queue lives past its start instant before it
// is deleted automatically.
const DefaultTTL = 5 * time.Hour

// Store is the slice of persistence the scheduler needs.
type Store interface {
	ListQueues(ctx context.Context) ([]domain.Queue, error)
	DeleteQueueCascade(ctx context.Context, queueID int64) (bool, error)
}

// OperatorNotifier tells the operator about automatic deletions.
type OperatorNotifier interface {
	Notify(ctx context.Context, memberID int64, text string)
}

// ExpiryScheduler keeps one pending timer per queue. Timers survive only
// in memory, so RescheduleAll must run at startup to re-derive them from
// storage; otherwise a restart silently cancels every pending expiration.
type ExpiryScheduler struct {
	store      Store
	clock      clock.Clock
	notifier   OperatorNotifier
	logger     *log.Logger
	ttl        time.Duration
	operatorID int64

	mu     sync.Mutex
	timers map[int64]*time.Timer
	closed bool
}

func New(store Store, clk clock.Clock, notifier OperatorNotifier, logger *log.Logger, operatorID int64, opts ...Option) *ExpiryScheduler {
	if logger == nil {
		logger = log.Default()
	}
	s := &ExpiryScheduler{
		store:      store,
		clock:      clk,
		notifier:   notifier,
		logger:     logger,
		ttl:        DefaultTTL,
		operatorID: operatorID,
		timers:     make(map[int64]*time.Timer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*ExpiryScheduler)

// WithTTL overrides the queue time-to-live.
func WithTTL(d time.Duration) Option {
	return func(s *ExpiryScheduler) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// Schedule registers the one-shot deletion timer for the queue. A timer
// already pending for the same queue is replaced. An already elapsed
// TTL fires immediately; the delay is never negative.
func (s *ExpiryScheduler) Schedule(q domain.Queue) {
	delay := q.ExpiresAt(s.ttl).Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.timers[q.ID]; ok {
		prev.Stop()
	}
	queueID, name := q.ID, q.Name
	s.timers[q.ID] = time.AfterFunc(delay, func() {
		s.fire(queueID, name)
	})
}

// Cancel drops the pending timer for a queue deleted by hand. Unknown
// ids are ignored.
func (s *ExpiryScheduler) Cancel(queueID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[queueID]; ok {
		t.Stop()
		delete(s.timers, queueID)
	}
}

// RescheduleAll re-derives timers for every queue found in storage. Run
// once at startup.
func (s *ExpiryScheduler) RescheduleAll(ctx context.Context) error {
	queues, err := s.store.ListQueues(ctx)
	if err != nil {
		return fmt.Errorf("list queues for rescheduling: %w", err)
	}
	for _, q := range queues {
		s.Schedule(q)
	}
	s.logger.Printf("expiry scheduler: %d queue timer(s) registered", len(queues))
	return nil
}

// Stop cancels every pending timer. Already-firing deletions finish on
// their own.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *ExpiryScheduler) fire(queueID int64, name string) {
	s.mu.Lock()
	delete(s.timers, queueID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.store.DeleteQueueCascade(ctx, queueID)
	if err != nil {
		s.logger.Printf("WARN: expire queue %d: %v", queueID, err)
		return
	}
	if !deleted {
		// Deleted by hand (or by an earlier firing) in the meantime.
		return
	}

	metrics.ExpirationsTotal.Inc()
	s.logger.Printf("queue %q (id %d) deleted automatically after TTL", name, queueID)
	if s.notifier != nil {
		s.notifier.Notify(ctx, s.operatorID,
			fmt.Sprintf("queue %q (id %d) was deleted automatically", name, queueID))
	}
}
