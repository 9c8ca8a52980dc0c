package app

import (
	"context"
	"sort"
	"sync"

	"github.com/vahe2002pog/tg-queue/internal/domain"
)

type fakeMembershipRepo struct {
	mu          sync.Mutex
	queues      map[int64]bool
	memberships []domain.Membership
}

func newFakeMembershipRepo(queueIDs ...int64) *fakeMembershipRepo {
	queues := make(map[int64]bool, len(queueIDs))
	for _, id := range queueIDs {
		queues[id] = true
	}
	return &fakeMembershipRepo{queues: queues}
}

func (f *fakeMembershipRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeMembershipRepo) LockQueue(ctx context.Context, queueID int64) error {
	if !f.queues[queueID] {
		return domain.ErrQueueNotFound
	}
	return nil
}

func (f *fakeMembershipRepo) GetMembership(ctx context.Context, queueID, memberID int64) (*domain.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.memberships {
		if m.QueueID == queueID && m.MemberID == memberID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMembershipRepo) InsertMembership(ctx context.Context, m domain.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.memberships {
		if existing.QueueID == m.QueueID && existing.MemberID == m.MemberID {
			return domain.ErrAlreadyMember
		}
	}
	f.memberships = append(f.memberships, m)
	return nil
}

func (f *fakeMembershipRepo) DeleteMembership(ctx context.Context, queueID, memberID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.memberships {
		if m.QueueID == queueID && m.MemberID == memberID {
			f.memberships = append(f.memberships[:i], f.memberships[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembershipRepo) ListMembershipsOrdered(ctx context.Context, queueID int64) ([]domain.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Membership
	for _, m := range f.memberships {
		if m.QueueID == queueID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinKey < out[j].JoinKey })
	return out, nil
}

func (f *fakeMembershipRepo) UpdateJoinKey(ctx context.Context, queueID, memberID, joinKey int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.memberships {
		if m.QueueID == queueID && m.MemberID == memberID {
			f.memberships[i].JoinKey = joinKey
			return nil
		}
	}
	return domain.ErrNotMember
}

type fakeQueueRepo struct {
	mu     sync.Mutex
	nextID int64
	queues map[int64]domain.Queue
}

func newFakeQueueRepo(queues ...domain.Queue) *fakeQueueRepo {
	f := &fakeQueueRepo{
		nextID: 1,
		queues: make(map[int64]domain.Queue),
	}
	for _, q := range queues {
		f.queues[q.ID] = q
		if q.ID >= f.nextID {
			f.nextID = q.ID + 1
		}
	}
	return f
}

func (f *fakeQueueRepo) CreateQueue(ctx context.Context, q domain.Queue) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = f.nextID
	f.nextID++
	f.queues[q.ID] = q
	return q.ID, nil
}

func (f *fakeQueueRepo) GetQueue(ctx context.Context, queueID int64) (*domain.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queues[queueID]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (f *fakeQueueRepo) ListQueues(ctx context.Context) ([]domain.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Queue, 0, len(f.queues))
	for _, q := range f.queues {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQueueRepo) ListQueuesByMember(ctx context.Context, memberID int64) ([]domain.Queue, error) {
	return f.ListQueues(ctx)
}

func (f *fakeQueueRepo) ListQueuesByGroup(ctx context.Context, groupID int64) ([]domain.Queue, error) {
	all, _ := f.ListQueues(ctx)
	var out []domain.Queue
	for _, q := range all {
		if q.GroupID != nil && *q.GroupID == groupID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQueueRepo) DeleteQueueCascade(ctx context.Context, queueID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.queues[queueID]; !ok {
		return false, nil
	}
	delete(f.queues, queueID)
	return true, nil
}

type stubNotifier struct {
	mu    sync.Mutex
	sent  []int64
	texts []string
}

func (n *stubNotifier) Notify(ctx context.Context, memberID int64, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, memberID)
	n.texts = append(n.texts, text)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]domain.User
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[int64]domain.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) UpsertUser(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

type fakeGroupRepo struct {
	mu      sync.Mutex
	nextID  int64
	groups  map[int64]domain.Group
	members []domain.GroupMember
}

func newFakeGroupRepo(groups ...domain.Group) *fakeGroupRepo {
	f := &fakeGroupRepo{
		nextID: 1,
		groups: make(map[int64]domain.Group),
	}
	for _, g := range groups {
		f.groups[g.ID] = g
		if g.ID >= f.nextID {
			f.nextID = g.ID + 1
		}
	}
	return f
}

func (f *fakeGroupRepo) CreateGroup(ctx context.Context, g domain.Group) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.nextID
	f.nextID++
	f.groups[g.ID] = g
	return g.ID, nil
}

func (f *fakeGroupRepo) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[groupID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGroupRepo) ListGroups(ctx context.Context) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Group, 0, len(f.groups))
	for _, g := range f.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGroupRepo) ListGroupsByMember(ctx context.Context, memberID int64) ([]domain.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Group
	for _, gm := range f.members {
		if gm.MemberID == memberID {
			if g, ok := f.groups[gm.GroupID]; ok {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) DeleteGroupCascade(ctx context.Context, groupID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[groupID]; !ok {
		return false, nil
	}
	delete(f.groups, groupID)
	kept := f.members[:0]
	for _, gm := range f.members {
		if gm.GroupID != groupID {
			kept = append(kept, gm)
		}
	}
	f.members = kept
	return true, nil
}

func (f *fakeGroupRepo) AddGroupMember(ctx context.Context, gm domain.GroupMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.GroupID == gm.GroupID && existing.MemberID == gm.MemberID {
			return domain.ErrAlreadyMember
		}
	}
	f.members = append(f.members, gm)
	return nil
}

func (f *fakeGroupRepo) RemoveGroupMember(ctx context.Context, groupID, memberID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, gm := range f.members {
		if gm.GroupID == groupID && gm.MemberID == memberID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroupRepo) ListGroupMembers(ctx context.Context, groupID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int64
	for _, gm := range f.members {
		if gm.GroupID == groupID {
			out = append(out, gm.MemberID)
		}
	}
	return out, nil
}
