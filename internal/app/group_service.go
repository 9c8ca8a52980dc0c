package app

import (
	"context"

	"github.com/vahe2002pog/tg-queue/internal/clock"
	"github.com/vahe2002pog/tg-queue/internal/domain"
)

// GroupRepository is the persistence contract for member groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, g domain.Group) (int64, error)
	GetGroup(ctx context.Context, groupID int64) (*domain.Group, error)
	ListGroups(ctx context.Context) ([]domain.Group, error)
	ListGroupsByMember(ctx context.Context, memberID int64) ([]domain.Group, error)
	DeleteGroupCascade(ctx context.Context, groupID int64) (bool, error)
	AddGroupMember(ctx context.Context, gm domain.GroupMember) error
	RemoveGroupMember(ctx context.Context, groupID, memberID int64) (bool, error)
	ListGroupMembers(ctx context.Context, groupID int64) ([]int64, error)
}

// GroupService manages the member groups queues can be attached to.
type GroupService struct {
	repo    GroupRepository
	clock   clock.Clock
	adminID int64
}

func NewGroupService(repo GroupRepository, clk clock.Clock, adminID int64) *GroupService {
	return &GroupService{
		repo:    repo,
		clock:   clk,
		adminID: adminID,
	}
}

func (s *GroupService) CreateGroup(ctx context.Context, name string, creatorID int64) (domain.Group, error) {
	if name == "" {
		return domain.Group{}, domain.ErrGroupNameRequired
	}

	group := domain.Group{
		Name:      name,
		CreatorID: creatorID,
		CreatedAt: s.clock.Now(),
	}
	id, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return domain.Group{}, err
	}
	group.ID = id
	return group, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID int64) (domain.Group, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}
	if group == nil {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	return *group, nil
}

func (s *GroupService) ListGroups(ctx context.Context, actorID int64) ([]domain.Group, error) {
	if actorID == s.adminID {
		return s.repo.ListGroups(ctx)
	}
	return s.repo.ListGroupsByMember(ctx, actorID)
}

// JoinGroup enrolls the member. Joining twice is a no-op success, same
// as repeated queue joins.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, memberID int64) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	err = s.repo.AddGroupMember(ctx, domain.GroupMember{
		GroupID:  groupID,
		MemberID: memberID,
		JoinedAt: s.clock.Now(),
	})
	if err == domain.ErrAlreadyMember {
		return nil
	}
	return err
}

func (s *GroupService) LeaveGroup(ctx context.Context, groupID, memberID int64) error {
	removed, err := s.repo.RemoveGroupMember(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrNotMember
	}
	return nil
}

func (s *GroupService) ListGroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}
	return s.repo.ListGroupMembers(ctx, groupID)
}

// DeleteGroup removes the group and its memberships. Queues created for
// the group stay, detached.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID, actorID int64) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	if group.CreatorID != actorID && actorID != s.adminID {
		return domain.ErrForbidden
	}

	deleted, err := s.repo.DeleteGroupCascade(ctx, groupID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrGroupNotFound
	}
	return nil
}
