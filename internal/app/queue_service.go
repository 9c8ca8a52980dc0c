package app

import (
	"context"
	"time"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/invite"
)

// QueueRepository is the persistence contract for queue lifecycle.
type QueueRepository interface {
	CreateQueue(ctx context.Context, q domain.Queue) (int64, error)
	GetQueue(ctx context.Context, queueID int64) (*domain.Queue, error)
	ListQueues(ctx context.Context) ([]domain.Queue, error)
	ListQueuesByMember(ctx context.Context, memberID int64) ([]domain.Queue, error)
	ListQueuesByGroup(ctx context.Context, groupID int64) ([]domain.Queue, error)
	DeleteQueueCascade(ctx context.Context, queueID int64) (bool, error)
}

// ExpiryRegistrar receives lifecycle events the expiry scheduler needs.
type ExpiryRegistrar interface {
	Schedule(q domain.Queue)
	Cancel(queueID int64)
}

// QueueService creates, exposes and tears down queues.
type QueueService struct {
	repo    QueueRepository
	clock   clock.Clock
	codec   *invite.Codec
	expiry  ExpiryRegistrar
	adminID int64
}

func NewQueueService(repo QueueRepository, clk clock.Clock, codec *invite.Codec, expiry ExpiryRegistrar, adminID int64) *QueueService {
	return &QueueService{
		repo:    repo,
		clock:   clk,
		codec:   codec,
		expiry:  expiry,
		adminID: adminID,
	}
}

type CreateQueueInput struct {
	Name          string
	CreatorID     int64
	Latitude      float64
	Longitude     float64
	StartsAt      time.Time
	UnlockedAfter *time.Time
	GroupID       *int64
}

// CreateQueue persists a new queue and registers its expiry timer.
func (s *QueueService) CreateQueue(ctx context.Context, in CreateQueueInput) (domain.Queue, error) {
	if in.Name == "" {
		return domain.Queue{}, domain.ErrQueueNameRequired
	}

	var unlockedAfter *time.Time
	if in.UnlockedAfter != nil {
		u := in.UnlockedAfter.UTC()
		unlockedAfter = &u
	}

	queue := domain.Queue{
		Name:          in.Name,
		CreatorID:     in.CreatorID,
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		StartsAt:      in.StartsAt.UTC(),
		UnlockedAfter: unlockedAfter,
		GroupID:       in.GroupID,
		CreatedAt:     s.clock.Now(),
	}

	id, err := s.repo.CreateQueue(ctx, queue)
	if err != nil {
		return domain.Queue{}, err
	}
	queue.ID = id

	if s.expiry != nil {
		s.expiry.Schedule(queue)
	}
	return queue, nil
}

// GetQueue returns the queue or domain.ErrQueueNotFound.
func (s *QueueService) GetQueue(ctx context.Context, queueID int64) (domain.Queue, error) {
	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return domain.Queue{}, err
	}
	if queue == nil {
		return domain.Queue{}, domain.ErrQueueNotFound
	}
	return *queue, nil
}

// ListQueues returns every queue visible to the actor: the administrator
// sees all of them, everyone else only the ones they belong to.
func (s *QueueService) ListQueues(ctx context.Context, actorID int64) ([]domain.Queue, error) {
	if actorID == s.adminID {
		return s.repo.ListQueues(ctx)
	}
	return s.repo.ListQueuesByMember(ctx, actorID)
}

// ListOpenQueues returns queues that have started and can be browsed for
// admission.
func (s *QueueService) ListOpenQueues(ctx context.Context) ([]domain.Queue, error) {
	queues, err := s.repo.ListQueues(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	open := queues[:0]
	for _, q := range queues {
		if !now.Before(q.StartsAt) {
			open = append(open, q)
		}
	}
	return open, nil
}

// ListGroupQueues returns the queues attached to a group.
func (s *QueueService) ListGroupQueues(ctx context.Context, groupID int64) ([]domain.Queue, error) {
	return s.repo.ListQueuesByGroup(ctx, groupID)
}

// DeleteQueue removes the queue and all its memberships. Only the
// creator or the administrator may delete; the pending expiry timer is
// cancelled.
func (s *QueueService) DeleteQueue(ctx context.Context, queueID, actorID int64) error {
	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return err
	}
	if queue == nil {
		return domain.ErrQueueNotFound
	}
	if queue.CreatorID != actorID && actorID != s.adminID {
		return domain.ErrForbidden
	}

	deleted, err := s.repo.DeleteQueueCascade(ctx, queueID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrQueueNotFound
	}
	if s.expiry != nil {
		s.expiry.Cancel(queueID)
	}
	return nil
}

// InviteToken mints the shareable token for the queue. Only the creator
// or the administrator may generate invitations.
func (s *QueueService) InviteToken(ctx context.Context, queueID, actorID int64) (string, error) {
	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return "", err
	}
	if queue == nil {
		return "", domain.ErrQueueNotFound
	}
	if queue.CreatorID != actorID && actorID != s.adminID {
		return "", domain.ErrForbidden
	}
	return s.codec.Encode(queue.ID, queue.CreatorID)
}
