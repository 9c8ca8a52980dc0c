package app

import (
	"context"
	"errors"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
	"github.com/vahe2002pog/tg-queue/internal/geo"
	"github.com/vahe2002pog/tg-queue/internal/invite"
)

// QueueReader is the slice of queue persistence admission needs.
type QueueReader interface {
	GetQueue(ctx context.Context, queueID int64) (*domain.Queue, error)
}

// Enroller records an accepted join. Implemented by OrderingService.
type Enroller interface {
	Join(ctx context.Context, queueID, memberID int64) (int, error)
	Rank(ctx context.Context, queueID, memberID int64) (int, error)
}

// AdmissionService decides whether a join request is accepted and
// delegates accepted joins to the ordering engine.
type AdmissionService struct {
	queues       QueueReader
	ordering     Enroller
	codec        *invite.Codec
	clock        clock.Clock
	radiusMeters float64
}

func NewAdmissionService(queues QueueReader, ordering Enroller, codec *invite.Codec, clk clock.Clock, opts ...AdmissionOption) *AdmissionService {
	svc := &AdmissionService{
		queues:       queues,
		ordering:     ordering,
		codec:        codec,
		clock:        clk,
		radiusMeters: geo.DefaultRadiusMeters,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type AdmissionOption func(*AdmissionService)

// WithRadius overrides the default admission radius.
func WithRadius(meters float64) AdmissionOption {
	return func(s *AdmissionService) {
		if meters > 0 {
			s.radiusMeters = meters
		}
	}
}

// JoinResult reports the outcome of an accepted join request.
type JoinResult struct {
	QueueID int64
	Rank    int
	// AlreadyJoined is set when the member was enrolled before this
	// request; duplicate joins are an expected race from repeated taps
	// and are reported as success, not an error.
	AlreadyJoined bool
}

// RequestJoin runs the admission checks in their load-bearing order:
// existence, duplicate membership, start time, time-of-day bypass, and
// only then the location check. A bypassed queue must never reject a
// legitimate joiner just because no location was supplied.
func (s *AdmissionService) RequestJoin(ctx context.Context, queueID, memberID int64, loc *geo.Point) (JoinResult, error) {
	queue, err := s.queues.GetQueue(ctx, queueID)
	if err != nil {
		return JoinResult{}, err
	}
	if queue == nil {
		return JoinResult{}, domain.ErrQueueNotFound
	}

	// A repeated tap from an enrolled member short-circuits every other
	// check and reports success.
	if rank, err := s.ordering.Rank(ctx, queueID, memberID); err == nil {
		return JoinResult{QueueID: queueID, Rank: rank, AlreadyJoined: true}, nil
	} else if !errors.Is(err, domain.ErrNotMember) {
		return JoinResult{}, err
	}

	now := s.clock.Now()
	if now.Before(queue.StartsAt) {
		return JoinResult{}, domain.ErrTooEarly
	}

	if !geo.BypassApplies(now, queue.UnlockedAfter) {
		if loc == nil {
			return JoinResult{}, domain.ErrLocationRequired
		}
		target := geo.Point{Latitude: queue.Latitude, Longitude: queue.Longitude}
		if !geo.Admits(*loc, target, s.radiusMeters) {
			return JoinResult{}, domain.ErrTooFar
		}
	}

	rank, err := s.ordering.Join(ctx, queueID, memberID)
	if errors.Is(err, domain.ErrAlreadyMember) {
		rank, err = s.ordering.Rank(ctx, queueID, memberID)
		if err != nil {
			return JoinResult{}, err
		}
		return JoinResult{QueueID: queueID, Rank: rank, AlreadyJoined: true}, nil
	}
	if err != nil {
		return JoinResult{}, err
	}
	return JoinResult{QueueID: queueID, Rank: rank}, nil
}

// ResolveInvite validates an invite token and then behaves exactly like
// RequestJoin. A structurally valid token whose creator id disagrees
// with the queue's stored creator is rejected; the cipher alone is not
// trusted to prove the binding.
func (s *AdmissionService) ResolveInvite(ctx context.Context, token string, memberID int64, loc *geo.Point) (JoinResult, error) {
	queueID, creatorID, err := s.codec.Decode(token)
	if err != nil {
		return JoinResult{}, err
	}

	queue, err := s.queues.GetQueue(ctx, queueID)
	if err != nil {
		return JoinResult{}, err
	}
	if queue == nil {
		return JoinResult{}, domain.ErrQueueNotFound
	}
	if queue.CreatorID != creatorID {
		return JoinResult{}, domain.ErrCreatorMismatch
	}

	return s.RequestJoin(ctx, queueID, memberID, loc)
}
