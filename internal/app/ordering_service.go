package app

import (
	"context"
	"fmt"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// MembershipRepository is the persistence contract for queue order.
type MembershipRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// LockQueue takes a row lock on the queue for the duration of the
	// surrounding transaction, serializing order mutations per queue.
	// Returns domain.ErrQueueNotFound for a missing queue.
	LockQueue(ctx context.Context, queueID int64) error
	GetMembership(ctx context.Context, queueID, memberID int64) (*domain.Membership, error)
	InsertMembership(ctx context.Context, m domain.Membership) error
	DeleteMembership(ctx context.Context, queueID, memberID int64) (bool, error)
	ListMembershipsOrdered(ctx context.Context, queueID int64) ([]domain.Membership, error)
	UpdateJoinKey(ctx context.Context, queueID, memberID, joinKey int64) error
}

// Notifier delivers a short text to a member. Delivery is fire-and-forget:
// failures are logged by the implementation and never surface here.
type Notifier interface {
	Notify(ctx context.Context, memberID int64, text string)
}

// UserNames resolves display names for notification texts.
type UserNames interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
}

// OrderingService owns the total order of members within a queue.
//
// Order is defined entirely by each membership's JoinKey: ranks are
// derived by sorting at query time, so leaves never renumber anybody and
// the only order mutation a member can perform is the adjacent-pair swap
// in CedeTurn.
type OrderingService struct {
	repo     MembershipRepository
	clock    clock.Clock
	notifier Notifier
	names    UserNames
}

func NewOrderingService(repo MembershipRepository, clk clock.Clock, notifier Notifier, names UserNames) *OrderingService {
	return &OrderingService{
		repo:     repo,
		clock:    clk,
		notifier: notifier,
		names:    names,
	}
}

// Join enrolls the member at the tail of the queue and returns the
// member's 0-based rank. Fails with domain.ErrAlreadyMember when a
// membership for the pair already exists.
func (s *OrderingService) Join(ctx context.Context, queueID, memberID int64) (int, error) {
	at := s.clock.Now()
	rank := 0

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockQueue(txCtx, queueID); err != nil {
			return err
		}
		members, err := s.repo.ListMembershipsOrdered(txCtx, queueID)
		if err != nil {
			return err
		}
		for _, m := range members {
			if m.MemberID == memberID {
				return domain.ErrAlreadyMember
			}
		}

		// Keys are "now" in nanoseconds, nudged past the current tail so
		// the order stays strict even if the wall clock stalls or runs
		// behind a key inherited from a cede-turn swap.
		joinKey := at.UnixNano()
		if n := len(members); n > 0 && members[n-1].JoinKey >= joinKey {
			joinKey = members[n-1].JoinKey + 1
		}

		if err := s.repo.InsertMembership(txCtx, domain.Membership{
			QueueID:  queueID,
			MemberID: memberID,
			JoinKey:  joinKey,
		}); err != nil {
			return err
		}
		rank = len(members)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rank, nil
}

// Leave removes the member's membership. Fails with domain.ErrNotMember
// when there is nothing to remove.
func (s *OrderingService) Leave(ctx context.Context, queueID, memberID int64) error {
	removed, err := s.repo.DeleteMembership(ctx, queueID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotMember
	}
	return nil
}

// CedeTurn swaps the caller with the member immediately behind them,
// moving the caller down exactly one rank. Returns the id of the member
// now ahead of the caller, who is also notified.
func (s *OrderingService) CedeTurn(ctx context.Context, queueID, memberID int64) (int64, error) {
	var aheadID int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockQueue(txCtx, queueID); err != nil {
			return err
		}
		members, err := s.repo.ListMembershipsOrdered(txCtx, queueID)
		if err != nil {
			return err
		}

		idx := -1
		for i, m := range members {
			if m.MemberID == memberID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return domain.ErrNotMember
		}
		if idx == len(members)-1 {
			return domain.ErrAlreadyLast
		}

		caller, next := members[idx], members[idx+1]
		if err := s.repo.UpdateJoinKey(txCtx, queueID, caller.MemberID, next.JoinKey); err != nil {
			return err
		}
		if err := s.repo.UpdateJoinKey(txCtx, queueID, next.MemberID, caller.JoinKey); err != nil {
			return err
		}
		aheadID = next.MemberID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.notifySwap(ctx, aheadID, memberID, queueID)
	return aheadID, nil
}

// Rank returns the member's 0-based position in the queue.
func (s *OrderingService) Rank(ctx context.Context, queueID, memberID int64) (int, error) {
	members, err := s.repo.ListMembershipsOrdered(ctx, queueID)
	if err != nil {
		return 0, err
	}
	for i, m := range members {
		if m.MemberID == memberID {
			return i, nil
		}
	}
	return 0, domain.ErrNotMember
}

// Members returns the queue's member ids in serving order.
func (s *OrderingService) Members(ctx context.Context, queueID int64) ([]int64, error) {
	members, err := s.repo.ListMembershipsOrdered(ctx, queueID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.MemberID)
	}
	return ids, nil
}

func (s *OrderingService) notifySwap(ctx context.Context, aheadID, cederID, queueID int64) {
	if s.notifier == nil {
		return
	}
	cederName := fmt.Sprintf("member %d", cederID)
	if s.names != nil {
		if u, err := s.names.GetUser(ctx, cederID); err == nil && u != nil {
			cederName = u.Name
		}
	}
	s.notifier.Notify(ctx, aheadID,
		fmt.Sprintf("%s ceded their turn: you are now ahead of them in queue %d", cederName, queueID))
}
