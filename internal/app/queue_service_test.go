package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/invite"
)

const testAdminID = 1

type recordingRegistrar struct {
	mu        sync.Mutex
	scheduled []int64
	cancelled []int64
}

func (r *recordingRegistrar) Schedule(q domain.Queue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, q.ID)
}

func (r *recordingRegistrar) Cancel(queueID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, queueID)
}

func newQueueFixture(t *testing.T, now time.Time, queues ...domain.Queue) (*QueueService, *fakeQueueRepo, *recordingRegistrar) {
	t.Helper()
	codec, err := invite.NewCodec([]byte("queue-test-secret"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	repo := newFakeQueueRepo(queues...)
	registrar := &recordingRegistrar{}
	svc := NewQueueService(repo, clock.NewFixed(now), codec, registrar, testAdminID)
	return svc, repo, registrar
}

func TestQueueService_CreateQueue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	startsAt := now.Add(2 * time.Hour)

	t.Run("creates and schedules expiry", func(t *testing.T) {
		t.Parallel()
		svc, _, registrar := newQueueFixture(t, now)

		queue, err := svc.CreateQueue(context.Background(), CreateQueueInput{
			Name:      "window 3",
			CreatorID: 500,
			Latitude:  57.159312,
			Longitude: 65.522508,
			StartsAt:  startsAt,
		})
		if err != nil {
			t.Fatalf("create queue: %v", err)
		}
		if queue.ID == 0 {
			t.Fatalf("expected assigned id")
		}
		if !queue.StartsAt.Equal(startsAt) {
			t.Fatalf("expected starts_at %v, got %v", startsAt, queue.StartsAt)
		}
		if len(registrar.scheduled) != 1 || registrar.scheduled[0] != queue.ID {
			t.Fatalf("expected expiry scheduled for queue %d, got %v", queue.ID, registrar.scheduled)
		}
	})

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now)

		if _, err := svc.CreateQueue(context.Background(), CreateQueueInput{CreatorID: 500, StartsAt: startsAt}); !errors.Is(err, domain.ErrQueueNameRequired) {
			t.Fatalf("expected ErrQueueNameRequired, got %v", err)
		}
	})

	t.Run("stores timestamps in UTC", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now)

		unlocked := time.Date(2025, 3, 1, 18, 0, 0, 0, time.FixedZone("", 5*3600))
		queue, err := svc.CreateQueue(context.Background(), CreateQueueInput{
			Name:          "window 3",
			CreatorID:     500,
			StartsAt:      startsAt.In(time.FixedZone("", 5*3600)),
			UnlockedAfter: &unlocked,
		})
		if err != nil {
			t.Fatalf("create queue: %v", err)
		}
		if queue.StartsAt.Location() != time.UTC {
			t.Fatalf("expected starts_at in UTC, got %v", queue.StartsAt.Location())
		}
		if queue.UnlockedAfter.Location() != time.UTC {
			t.Fatalf("expected unlocked_after in UTC, got %v", queue.UnlockedAfter.Location())
		}
		if !queue.UnlockedAfter.Equal(unlocked) {
			t.Fatalf("expected the same unlock instant, got %v", queue.UnlockedAfter)
		}
	})
}

func TestQueueService_DeleteQueue(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	queue := domain.Queue{ID: 3, Name: "window 3", CreatorID: 500, StartsAt: now}

	t.Run("creator deletes and cancels the timer", func(t *testing.T) {
		t.Parallel()
		svc, repo, registrar := newQueueFixture(t, now, queue)

		if err := svc.DeleteQueue(context.Background(), 3, 500); err != nil {
			t.Fatalf("delete queue: %v", err)
		}
		if q, _ := repo.GetQueue(context.Background(), 3); q != nil {
			t.Fatalf("expected queue removed")
		}
		if len(registrar.cancelled) != 1 || registrar.cancelled[0] != 3 {
			t.Fatalf("expected cancel for queue 3, got %v", registrar.cancelled)
		}
	})

	t.Run("administrator may delete any queue", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now, queue)

		if err := svc.DeleteQueue(context.Background(), 3, testAdminID); err != nil {
			t.Fatalf("admin delete: %v", err)
		}
	})

	t.Run("other members may not delete", func(t *testing.T) {
		t.Parallel()
		svc, repo, _ := newQueueFixture(t, now, queue)

		if err := svc.DeleteQueue(context.Background(), 3, 999); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if q, _ := repo.GetQueue(context.Background(), 3); q == nil {
			t.Fatalf("queue must survive a forbidden delete")
		}
	})

	t.Run("missing queue", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now)

		if err := svc.DeleteQueue(context.Background(), 42, 500); !errors.Is(err, domain.ErrQueueNotFound) {
			t.Fatalf("expected ErrQueueNotFound, got %v", err)
		}
	})
}

func TestQueueService_InviteToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	queue := domain.Queue{ID: 3, Name: "window 3", CreatorID: 500, StartsAt: now}

	t.Run("creator mints a decodable token", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now, queue)

		token, err := svc.InviteToken(context.Background(), 3, 500)
		if err != nil {
			t.Fatalf("invite token: %v", err)
		}
		if len(token) != invite.TokenLength {
			t.Fatalf("expected %d-char token, got %d", invite.TokenLength, len(token))
		}

		codec, err := invite.NewCodec([]byte("queue-test-secret"))
		if err != nil {
			t.Fatalf("new codec: %v", err)
		}
		qid, cid, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if qid != 3 || cid != 500 {
			t.Fatalf("expected (3, 500), got (%d, %d)", qid, cid)
		}
	})

	t.Run("non-creator is refused", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newQueueFixture(t, now, queue)

		if _, err := svc.InviteToken(context.Background(), 3, 999); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestQueueService_ListOpenQueues(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	started := domain.Queue{ID: 1, Name: "open", CreatorID: 500, StartsAt: now.Add(-time.Minute)}
	future := domain.Queue{ID: 2, Name: "later", CreatorID: 500, StartsAt: now.Add(time.Minute)}

	svc, _, _ := newQueueFixture(t, now, started, future)

	open, err := svc.ListOpenQueues(context.Background())
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 1 || open[0].ID != 1 {
		t.Fatalf("expected only the started queue, got %v", open)
	}
}
