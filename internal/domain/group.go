package domain

import "time"

// Group is a collection of members that queues can be created for.
type Group struct {
	ID        int64
	Name      string
	CreatorID int64
	CreatedAt time.Time
}

// GroupMember records a member's enrollment in a group.
type GroupMember struct {
	GroupID  int64
	MemberID int64
	JoinedAt time.Time
}
