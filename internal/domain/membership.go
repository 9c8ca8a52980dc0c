package domain

// Membership is a member's enrollment in a queue.
//
// JoinKey is the membership's order key: memberships sorted ascending by
// JoinKey form the serving order, rank 0 being up next. Keys are assigned
// at nanosecond resolution so they are strictly ordered; ranks are always
// derived from the sort, never stored, so removing a membership never
// renumbers the others.
type Membership struct {
	QueueID  int64
	MemberID int64
	JoinKey  int64
}
